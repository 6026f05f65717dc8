package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasfrag/ollama4truth/internal/index"
)

func TestParseMethod(t *testing.T) {
	for _, valid := range []string{"lexical", "semantic", "hybrid"} {
		m, err := ParseMethod(valid)
		require.NoError(t, err)
		assert.Equal(t, Method(valid), m)
	}

	_, err := ParseMethod("fuzzy")
	assert.Error(t, err)
}

func TestEngine_LexicalRetrieval(t *testing.T) {
	engine := newTestEngine(t)

	results, err := engine.Retrieve(context.Background(), "vacina causa autismo", Options{Method: MethodLexical})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, "https://lupa.example/vacina", results[0].Link)
	assert.Equal(t, "lupa", results[0].Source)
	assert.Equal(t, "falso", results[0].Label)
	assert.Greater(t, results[0].Score, 0.0)
}

func TestEngine_SemanticRetrieval(t *testing.T) {
	engine := newTestEngine(t)

	results, err := engine.Retrieve(context.Background(), "fraude na urna", Options{Method: MethodSemantic})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "https://g1.example/urna", results[0].Link)
}

func TestEngine_HybridRanksTopicalMatchFirst(t *testing.T) {
	engine := newTestEngine(t)

	results, err := engine.Retrieve(context.Background(), "terra plana", Options{Method: MethodHybrid})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "https://aosfatos.example/terra", results[0].Link)
}

func TestEngine_ResultsSortedDescendingAndPositive(t *testing.T) {
	engine := newTestEngine(t)

	for _, method := range []Method{MethodLexical, MethodSemantic, MethodHybrid} {
		results, err := engine.Retrieve(context.Background(), "vacina urna terra", Options{Method: method})
		require.NoError(t, err)

		for i := 1; i < len(results); i++ {
			assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
		}
		for _, r := range results {
			assert.Greater(t, r.Score, 0.0)
		}
	}
}

func TestEngine_KCapsResults(t *testing.T) {
	engine := newTestEngine(t)

	results, err := engine.Retrieve(context.Background(), "vacina urna terra", Options{Method: MethodHybrid, K: 1})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestEngine_EmptyQueryLexicalReturnsNothing(t *testing.T) {
	engine := newTestEngine(t)

	results, err := engine.Retrieve(context.Background(), "e a o", Options{Method: MethodLexical})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestEngine_HybridFallsBackToSemanticWithoutTokens(t *testing.T) {
	engine := newTestEngine(t)

	hybrid, err := engine.Retrieve(context.Background(), "!!!", Options{Method: MethodHybrid})
	require.NoError(t, err)
	semantic, err := engine.Retrieve(context.Background(), "!!!", Options{Method: MethodSemantic})
	require.NoError(t, err)

	assert.Equal(t, semantic, hybrid)
}

func TestEngine_HybridWeightExtremes(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	query := "vacina causa autismo"

	one := 1.0
	pureLex, err := engine.Retrieve(ctx, query, Options{Method: MethodHybrid, BM25Weight: &one})
	require.NoError(t, err)

	zero := 0.0
	pureSem, err := engine.Retrieve(ctx, query, Options{Method: MethodHybrid, BM25Weight: &zero})
	require.NoError(t, err)

	semantic, err := engine.Retrieve(ctx, query, Options{Method: MethodSemantic})
	require.NoError(t, err)

	// Weight 0 is exactly semantic scoring; weight 1 ranks like lexical
	// but with normalized scores.
	assert.Equal(t, semantic, pureSem)
	require.NotEmpty(t, pureLex)
	assert.Equal(t, "https://lupa.example/vacina", pureLex[0].Link)
	assert.InDelta(t, 1.0, pureLex[0].Score, 1e-9)
}

func TestEngine_SnippetIsTextPrefix(t *testing.T) {
	engine := newTestEngine(t)

	results, err := engine.Retrieve(context.Background(), "vacina", Options{Method: MethodLexical, K: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Estudos mostram que vacina não causa autismo.", results[0].Snippet)
}

func TestNewEngine_EmptyMethodDefaultsToLexical(t *testing.T) {
	embedder := &wordEmbedder{vocab: []string{"vacina", "autismo", "urna", "fraude", "terra", "plana"}}
	idx, err := index.Build(context.Background(), testCorpus(), embedder, index.Options{
		Strategy: index.StrategyChunkPool,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	engine := NewEngine(idx, embedder, "", DefaultBM25Weight)

	got, err := engine.Retrieve(context.Background(), "vacina causa autismo", Options{})
	require.NoError(t, err)
	want, err := engine.Retrieve(context.Background(), "vacina causa autismo", Options{Method: MethodLexical})
	require.NoError(t, err)

	require.NotEmpty(t, got)
	assert.Equal(t, want, got)
}
