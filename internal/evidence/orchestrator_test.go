package evidence

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasfrag/ollama4truth/internal/corpus"
	o4terrors "github.com/lucasfrag/ollama4truth/internal/errors"
	"github.com/lucasfrag/ollama4truth/internal/index"
	"github.com/lucasfrag/ollama4truth/internal/search"
	"github.com/lucasfrag/ollama4truth/internal/websearch"
)

// keywordEmbedder marks which vocabulary words a text mentions.
type keywordEmbedder struct {
	vocab []string
}

func (k *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	lower := corpus.StripAccents(strings.ToLower(text))
	vec := make([]float32, len(k.vocab))
	for i, w := range k.vocab {
		if strings.Contains(lower, w) {
			vec[i] = 1
		}
	}
	return vec, nil
}

func (k *keywordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := k.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (k *keywordEmbedder) Dimensions() int                  { return len(k.vocab) }
func (k *keywordEmbedder) ModelName() string                { return "keyword-test" }
func (k *keywordEmbedder) Available(_ context.Context) bool { return true }
func (k *keywordEmbedder) Close() error                     { return nil }

// stubWeb counts calls and serves scripted results or an error.
type stubWeb struct {
	calls   atomic.Int64
	results []websearch.Result
	err     error
}

func (s *stubWeb) Search(_ context.Context, _ string) ([]websearch.Result, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func newTestOrchestrator(t *testing.T, web WebSearcher) *Orchestrator {
	t.Helper()

	articles := []corpus.Article{
		{
			URL:    "https://lupa.example/vacina",
			Title:  "É falso que vacina causa autismo",
			Text:   "Estudos mostram que vacina não causa autismo.",
			Label:  "falso",
			Source: "lupa",
		},
		{
			URL:    "https://g1.example/urna",
			Title:  "Urna eletrônica é segura",
			Text:   "Auditoria não encontrou fraude na urna.",
			Label:  "verdadeiro",
			Source: "g1",
		},
	}

	embedder := &keywordEmbedder{vocab: []string{"vacina", "autismo", "urna", "fraude"}}
	idx, err := index.Build(context.Background(), articles, embedder, index.Options{
		Strategy: index.StrategyChunkPool,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	engine := search.NewEngine(idx, embedder, search.MethodLexical, search.DefaultBM25Weight)
	agg := search.NewAggregator(engine, 2)

	return NewOrchestrator(agg, web, Options{
		MinCorpusResults: 2,
		WebTimeout:       time.Second,
		WebPacing:        time.Millisecond,
		Search:           search.Options{Method: search.MethodLexical},
	})
}

func TestGather_CorpusModeDedupsAcrossQuestions(t *testing.T) {
	o := newTestOrchestrator(t, nil)

	bundle, err := o.Gather(context.Background(), "vacina causa autismo",
		[]string{"vacina causa autismo?", "vacina provoca autismo?"}, ModeCorpus)
	require.NoError(t, err)

	assert.Equal(t, "corpus", bundle.Mode)
	require.Len(t, bundle.Evidences, 2)

	// Both questions hit the same article; only the first keeps it.
	assert.Len(t, bundle.Evidences[0].Results, 1)
	assert.Empty(t, bundle.Evidences[1].Results)
	assert.Equal(t, 1, bundle.TotalResults())
}

func TestGather_HybridSufficientCorpusSkipsWeb(t *testing.T) {
	web := &stubWeb{results: []websearch.Result{{Title: "W", Link: "https://w", Snippet: "s"}}}
	o := newTestOrchestrator(t, web)

	bundle, err := o.Gather(context.Background(), "claim",
		[]string{"vacina autismo", "urna fraude"}, ModeHybrid)
	require.NoError(t, err)

	assert.Equal(t, TagHybridCorpusOnly, bundle.Mode)
	assert.GreaterOrEqual(t, bundle.TotalResults(), 2)
	assert.Equal(t, int64(0), web.calls.Load())
}

func TestGather_HybridInsufficientCorpusFallsBackOnce(t *testing.T) {
	web := &stubWeb{results: []websearch.Result{{Title: "Checagem", Link: "https://w/1", Snippet: "trecho"}}}
	o := newTestOrchestrator(t, web)

	questions := []string{"assunto desconhecido", "outro tema inexistente"}
	bundle, err := o.Gather(context.Background(), "claim obscura", questions, ModeHybrid)
	require.NoError(t, err)

	assert.Equal(t, TagHybridWebFallback, bundle.Mode)
	// One web call per question, single fallback round.
	assert.Equal(t, int64(len(questions)), web.calls.Load())

	// Web groups come back with web-shaped results.
	require.Len(t, bundle.Evidences, 2)
	for _, qr := range bundle.Evidences {
		require.Len(t, qr.Results, 1)
		assert.Equal(t, "web", qr.Results[0].Source)
		assert.Empty(t, qr.Results[0].Label)
	}
}

func TestGather_HybridKeepsNonEmptyCorpusGroupsFirst(t *testing.T) {
	web := &stubWeb{results: []websearch.Result{{Title: "W", Link: "https://w", Snippet: "s"}}}
	o := newTestOrchestrator(t, web)

	// One corpus hit (below the threshold of 2) plus web fallback.
	bundle, err := o.Gather(context.Background(), "claim",
		[]string{"vacina autismo", "tema inexistente"}, ModeHybrid)
	require.NoError(t, err)

	require.Equal(t, TagHybridWebFallback, bundle.Mode)
	require.GreaterOrEqual(t, len(bundle.Evidences), 3)
	assert.Equal(t, "lupa", bundle.Evidences[0].Results[0].Source)
	assert.Equal(t, "web", bundle.Evidences[len(bundle.Evidences)-1].Results[0].Source)
}

func TestGather_WebFailureDegradesToEmpty(t *testing.T) {
	web := &stubWeb{err: errors.New("quota exceeded")}
	o := newTestOrchestrator(t, web)

	bundle, err := o.Gather(context.Background(), "claim", []string{"pergunta"}, ModeWeb)
	require.NoError(t, err)

	assert.Equal(t, "web", bundle.Mode)
	require.Len(t, bundle.Evidences, 1)
	assert.Empty(t, bundle.Evidences[0].Results)
}

func TestGather_WebModeWithoutSearcherFails(t *testing.T) {
	o := newTestOrchestrator(t, nil)

	_, err := o.Gather(context.Background(), "claim", []string{"pergunta"}, ModeWeb)
	require.Error(t, err)
	assert.True(t, o4terrors.IsCode(err, o4terrors.ErrCodeMissingCredentials))
}

func TestGather_HybridWithoutSearcherStillDegrades(t *testing.T) {
	o := newTestOrchestrator(t, nil)

	bundle, err := o.Gather(context.Background(), "claim",
		[]string{"tema inexistente"}, ModeHybrid)
	require.NoError(t, err)

	assert.Equal(t, TagHybridWebFallback, bundle.Mode)
	assert.Equal(t, 0, bundle.TotalResults())
}

func TestGather_TopMergesAcrossQuestions(t *testing.T) {
	o := newTestOrchestrator(t, nil)

	bundle, err := o.Gather(context.Background(), "claim",
		[]string{"vacina causa autismo", "urna fraude", "vacina autismo"}, ModeCorpus)
	require.NoError(t, err)

	// Two distinct articles across three questions, each link once.
	require.Len(t, bundle.Top, 2)
	seen := map[string]bool{}
	for _, r := range bundle.Top {
		assert.False(t, seen[r.Link])
		seen[r.Link] = true
	}
	for i := 1; i < len(bundle.Top); i++ {
		assert.GreaterOrEqual(t, bundle.Top[i-1].Score, bundle.Top[i].Score)
	}
}

func TestGather_TopCappedByTotalK(t *testing.T) {
	articles := []corpus.Article{
		{URL: "https://a/1", Title: "vacina um", Text: "vacina", Label: "falso", Source: "lupa"},
		{URL: "https://a/2", Title: "vacina dois", Text: "vacina", Label: "falso", Source: "lupa"},
		{URL: "https://a/3", Title: "vacina tres", Text: "vacina", Label: "falso", Source: "lupa"},
	}
	embedder := &keywordEmbedder{vocab: []string{"vacina"}}
	idx, err := index.Build(context.Background(), articles, embedder, index.Options{
		Strategy: index.StrategyChunkPool,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	engine := search.NewEngine(idx, embedder, search.MethodLexical, search.DefaultBM25Weight)
	o := NewOrchestrator(search.NewAggregator(engine, 2), nil, Options{
		TotalK: 2,
		Search: search.Options{Method: search.MethodLexical},
	})

	bundle, err := o.Gather(context.Background(), "claim", []string{"vacina"}, ModeCorpus)
	require.NoError(t, err)
	assert.Len(t, bundle.Top, 2)
}

func TestParseMode(t *testing.T) {
	for _, valid := range []string{"corpus", "web", "hybrid"} {
		m, err := ParseMode(valid)
		require.NoError(t, err)
		assert.Equal(t, Mode(valid), m)
	}

	_, err := ParseMode("internet")
	assert.Error(t, err)
}
