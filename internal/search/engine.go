package search

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/lucasfrag/ollama4truth/internal/embed"
	"github.com/lucasfrag/ollama4truth/internal/index"
)

// Engine answers retrieval queries against one corpus snapshot. Both
// indexes are kept so the method can be switched per query.
type Engine struct {
	idx      *index.Index
	embedder embed.Embedder

	defaultMethod Method
	defaultWeight float64
}

// NewEngine creates a query engine over a built index. The embedder is
// used for query vectors only; article vectors live in the index.
func NewEngine(idx *index.Index, embedder embed.Embedder, defaultMethod Method, defaultWeight float64) *Engine {
	if defaultMethod == "" {
		defaultMethod = MethodLexical
	}
	return &Engine{
		idx:           idx,
		embedder:      embedder,
		defaultMethod: defaultMethod,
		defaultWeight: defaultWeight,
	}
}

// Retrieve returns the top-k articles for a query, sorted by score
// descending with ties broken by corpus order. Articles scoring zero or
// below are never returned.
func (e *Engine) Retrieve(ctx context.Context, query string, opts Options) ([]Result, error) {
	method := opts.Method
	if method == "" {
		method = e.defaultMethod
	}
	k := opts.K
	if k <= 0 {
		k = DefaultK
	}

	var scores []float64
	var err error
	switch method {
	case MethodLexical:
		scores, err = e.lexicalScores(ctx, query)
	case MethodSemantic:
		scores, err = e.semanticScores(ctx, query)
	case MethodHybrid:
		scores, err = e.hybridScores(ctx, query, opts)
	default:
		return nil, fmt.Errorf("unknown retrieval method %q", method)
	}
	if err != nil {
		return nil, err
	}
	if scores == nil {
		return []Result{}, nil
	}

	results := e.topK(scores, k)
	slog.Debug("query_retrieved",
		"method", method,
		"query_len", len(query),
		"results", len(results))
	return results, nil
}

// lexicalScores returns nil when the query has no usable tokens, which
// the caller turns into an empty result set.
func (e *Engine) lexicalScores(ctx context.Context, query string) ([]float64, error) {
	if len(index.Tokenize(query)) == 0 {
		return nil, nil
	}
	return e.idx.Lexical.Scores(ctx, query)
}

func (e *Engine) semanticScores(ctx context.Context, query string) ([]float64, error) {
	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return e.idx.Semantic.Scores(queryVec), nil
}

// hybridScores blends normalized lexical with semantic scores. A query
// with no lexical tokens degrades to pure semantic scoring.
func (e *Engine) hybridScores(ctx context.Context, query string, opts Options) ([]float64, error) {
	weight := e.defaultWeight
	if opts.BM25Weight != nil {
		weight = *opts.BM25Weight
	}

	lexical, err := e.lexicalScores(ctx, query)
	if err != nil {
		return nil, err
	}
	if lexical == nil {
		return e.semanticScores(ctx, query)
	}

	semantic, err := e.semanticScores(ctx, query)
	if err != nil {
		return nil, err
	}

	return Fuse(NormalizeLexical(lexical), semantic, weight), nil
}

// topK selects the k best-scoring articles. Sorting is stable so tied
// scores keep corpus order, and non-positive scores are dropped.
func (e *Engine) topK(scores []float64, k int) []Result {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	results := make([]Result, 0, k)
	for _, ord := range order {
		if len(results) >= k {
			break
		}
		if scores[ord] <= 0 {
			break
		}
		results = append(results, e.formatResult(ord, scores[ord]))
	}
	return results
}

func (e *Engine) formatResult(ord int, score float64) Result {
	a := e.idx.Articles[ord]
	return Result{
		Title:   a.Title,
		Link:    a.URL,
		Snippet: a.Snippet(SnippetLength),
		Score:   math.Round(score*10000) / 10000,
		Source:  a.Source,
		Label:   a.Label,
	}
}
