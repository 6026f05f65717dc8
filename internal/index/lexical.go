package index

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveindex "github.com/blevesearch/bleve_index_api"

	"github.com/lucasfrag/ollama4truth/internal/corpus"
)

// LexicalIndex scores articles with BM25 over a bleve in-memory index.
// Documents are keyed by article ordinal so scores line up with the
// corpus slice.
type LexicalIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	count  int
	closed bool
}

// lexicalDocument is the indexed document shape.
type lexicalDocument struct {
	Content string `json:"content"`
}

func createIndexMapping() (*mapping.IndexMappingImpl, error) {
	indexMapping := bleve.NewIndexMapping()

	err := indexMapping.AddCustomAnalyzer(PortugueseAnalyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": PortugueseTokenizerName,
	})
	if err != nil {
		return nil, fmt.Errorf("adding custom analyzer: %w", err)
	}
	indexMapping.DefaultAnalyzer = PortugueseAnalyzerName
	indexMapping.ScoringModel = bleveindex.BM25Scoring

	return indexMapping, nil
}

// BuildLexicalIndex indexes the full text of every article.
func BuildLexicalIndex(articles []corpus.Article) (*LexicalIndex, error) {
	indexMapping, err := createIndexMapping()
	if err != nil {
		return nil, fmt.Errorf("creating index mapping: %w", err)
	}

	idx, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("creating lexical index: %w", err)
	}

	batch := idx.NewBatch()
	for i, a := range articles {
		doc := lexicalDocument{Content: a.FullText()}
		if err := batch.Index(strconv.Itoa(i), doc); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("indexing article %d: %w", i, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("executing index batch: %w", err)
	}

	return &LexicalIndex{index: idx, count: len(articles)}, nil
}

// Scores returns one BM25 score per article, in corpus order. Articles
// with no term overlap score zero. An empty query yields all zeros.
func (l *LexicalIndex) Scores(ctx context.Context, query string) ([]float64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return nil, fmt.Errorf("lexical index is closed")
	}

	scores := make([]float64, l.count)
	if strings.TrimSpace(query) == "" {
		return scores, nil
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetField("content")

	req := bleve.NewSearchRequest(matchQuery)
	req.Size = l.count

	result, err := l.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("lexical search failed: %w", err)
	}

	for _, hit := range result.Hits {
		ord, err := strconv.Atoi(hit.ID)
		if err != nil || ord < 0 || ord >= l.count {
			continue
		}
		scores[ord] = hit.Score
	}

	return scores, nil
}

// DocCount returns the number of indexed articles.
func (l *LexicalIndex) DocCount() int {
	return l.count
}

// Close releases the underlying bleve index.
func (l *LexicalIndex) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.index.Close()
}
