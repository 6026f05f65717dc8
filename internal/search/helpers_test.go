package search

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lucasfrag/ollama4truth/internal/corpus"
	"github.com/lucasfrag/ollama4truth/internal/embed"
	"github.com/lucasfrag/ollama4truth/internal/index"
)

// wordEmbedder is a deterministic bag-of-words embedder for tests.
type wordEmbedder struct {
	vocab []string
}

func (w *wordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	lower := corpus.StripAccents(strings.ToLower(text))
	vec := make([]float32, len(w.vocab))
	for i, word := range w.vocab {
		if strings.Contains(lower, word) {
			vec[i] = 1
		}
	}
	return vec, nil
}

func (w *wordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := w.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (w *wordEmbedder) Dimensions() int                  { return len(w.vocab) }
func (w *wordEmbedder) ModelName() string                { return "word-test" }
func (w *wordEmbedder) Available(_ context.Context) bool { return true }
func (w *wordEmbedder) Close() error                     { return nil }

var _ embed.Embedder = (*wordEmbedder)(nil)

func testCorpus() []corpus.Article {
	return []corpus.Article{
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
			Text:   "Auditoria não encontrou fraude na urna eletrônica.",
			Label:  "verdadeiro",
			Source: "g1",
		},
		{
			URL:    "https://aosfatos.example/terra",
			Title:  "Terra não é plana",
			Text:   "Imagens de satélite comprovam que a Terra é redonda.",
			Label:  "falso",
			Source: "aosfatos",
		},
	}
}

// newTestEngine builds an engine over the fixed corpus with a word
// embedder that recognizes each article's topic.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	embedder := &wordEmbedder{vocab: []string{"vacina", "autismo", "urna", "fraude", "terra", "plana"}}
	idx, err := index.Build(context.Background(), testCorpus(), embedder, index.Options{
		Strategy: index.StrategyChunkPool,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	return NewEngine(idx, embedder, MethodHybrid, DefaultBM25Weight)
}
