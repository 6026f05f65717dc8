package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/lucasfrag/ollama4truth/internal/corpus"
	"github.com/lucasfrag/ollama4truth/internal/embed"
)

// Strategy selects how articles are encoded for the semantic index.
type Strategy string

const (
	// StrategyChunkPool splits each article into fixed-size chunks,
	// embeds them separately, and max-pools chunk similarities per
	// article at query time.
	StrategyChunkPool Strategy = "chunk_pool"

	// StrategyTitleLabel embeds title, subtitle and classification only.
	StrategyTitleLabel Strategy = "title_label"

	// StrategyTruncate embeds the first TruncateSize runes of the full
	// text.
	StrategyTruncate Strategy = "truncate"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyChunkPool, StrategyTitleLabel, StrategyTruncate:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown embedding strategy %q", s)
	}
}

const (
	// ChunkSize is the chunk length in runes for chunk_pool encoding.
	ChunkSize = 500

	// TruncateSize is the prefix length in runes for truncate encoding.
	TruncateSize = 512
)

// ChunkRange marks an article's chunk rows [Start, End) in the embedding
// matrix.
type ChunkRange struct {
	Start int
	End   int
}

// SemanticIndex holds per-chunk (or per-article) embeddings and scores
// queries by cosine similarity.
type SemanticIndex struct {
	strategy Strategy
	vectors  [][]float32

	// ranges is nil for non-pooled strategies, where vectors has one row
	// per article.
	ranges []ChunkRange

	articleCount int
}

// ChunkText splits text into ChunkSize-rune pieces. Empty text still
// yields one empty chunk so every article owns at least one matrix row.
func ChunkText(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return []string{""}
	}

	chunks := make([]string, 0, (len(runes)+ChunkSize-1)/ChunkSize)
	for i := 0; i < len(runes); i += ChunkSize {
		end := min(i+ChunkSize, len(runes))
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}

// encodingTexts returns the texts to embed for the given strategy, plus
// chunk ranges for chunk_pool.
func encodingTexts(articles []corpus.Article, strategy Strategy) ([]string, []ChunkRange) {
	switch strategy {
	case StrategyChunkPool:
		var texts []string
		ranges := make([]ChunkRange, 0, len(articles))
		for _, a := range articles {
			chunks := ChunkText(a.FullText())
			start := len(texts)
			texts = append(texts, chunks...)
			ranges = append(ranges, ChunkRange{Start: start, End: len(texts)})
		}
		return texts, ranges

	case StrategyTitleLabel:
		texts := make([]string, len(articles))
		for i, a := range articles {
			parts := []string{a.Title}
			if a.Subtitle != "" {
				parts = append(parts, a.Subtitle)
			}
			if a.Label != "" {
				parts = append(parts, a.Label)
			}
			texts[i] = strings.Join(parts, " — ")
		}
		return texts, nil

	default: // StrategyTruncate
		texts := make([]string, len(articles))
		for i, a := range articles {
			runes := []rune(a.FullText())
			if len(runes) > TruncateSize {
				runes = runes[:TruncateSize]
			}
			texts[i] = string(runes)
		}
		return texts, nil
	}
}

// BuildSemanticIndex encodes all articles with the embedder. Vectors are
// L2-normalized so dot products are cosine similarities.
func BuildSemanticIndex(ctx context.Context, articles []corpus.Article, embedder embed.Embedder, strategy Strategy) (*SemanticIndex, error) {
	texts, ranges := encodingTexts(articles, strategy)

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("encoding %d texts: %w", len(texts), err)
	}
	for i, v := range vectors {
		vectors[i] = embed.Normalize(v)
	}

	return &SemanticIndex{
		strategy:     strategy,
		vectors:      vectors,
		ranges:       ranges,
		articleCount: len(articles),
	}, nil
}

// Scores returns one cosine-similarity score per article, in corpus
// order. For chunk_pool the score is the max over the article's chunks.
func (s *SemanticIndex) Scores(queryVec []float32) []float64 {
	queryVec = embed.Normalize(queryVec)

	if s.ranges == nil {
		scores := make([]float64, len(s.vectors))
		for i, v := range s.vectors {
			scores[i] = embed.Dot(v, queryVec)
		}
		return scores
	}

	chunkSims := make([]float64, len(s.vectors))
	for i, v := range s.vectors {
		chunkSims[i] = embed.Dot(v, queryVec)
	}

	scores := make([]float64, len(s.ranges))
	for i, r := range s.ranges {
		best := chunkSims[r.Start]
		for j := r.Start + 1; j < r.End; j++ {
			if chunkSims[j] > best {
				best = chunkSims[j]
			}
		}
		scores[i] = best
	}
	return scores
}

// Strategy returns the encoding strategy.
func (s *SemanticIndex) Strategy() Strategy {
	return s.strategy
}

// ArticleCount returns the number of encoded articles.
func (s *SemanticIndex) ArticleCount() int {
	return s.articleCount
}

// VectorCount returns the number of embedding rows.
func (s *SemanticIndex) VectorCount() int {
	return len(s.vectors)
}
