package index

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/lucasfrag/ollama4truth/internal/corpus"
	"github.com/lucasfrag/ollama4truth/internal/embed"
)

// vocabEmbedder is a deterministic bag-of-words embedder over a fixed
// vocabulary. Texts sharing words get high cosine similarity, which makes
// semantic assertions readable.
type vocabEmbedder struct {
	vocab []string
	calls atomic.Int64
}

func newVocabEmbedder(vocab ...string) *vocabEmbedder {
	return &vocabEmbedder{vocab: vocab}
}

func (v *vocabEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v.calls.Add(1)
	tokens := Tokenize(text)
	vec := make([]float32, len(v.vocab))
	for i, word := range v.vocab {
		for _, tok := range tokens {
			if strings.Contains(tok, word) || strings.Contains(word, tok) {
				vec[i]++
			}
		}
	}
	return vec, nil
}

func (v *vocabEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := v.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (v *vocabEmbedder) Dimensions() int                  { return len(v.vocab) }
func (v *vocabEmbedder) ModelName() string                { return "vocab-test" }
func (v *vocabEmbedder) Available(_ context.Context) bool { return true }
func (v *vocabEmbedder) Close() error                     { return nil }

var _ embed.Embedder = (*vocabEmbedder)(nil)

// testArticles is a small corpus with distinct topics.
func testArticles() []corpus.Article {
	return []corpus.Article{
		{
			URL:    "https://lupa.example/vacina-autismo",
			Title:  "É falso que vacina causa autismo",
			Text:   "Estudos científicos mostram que vacina não causa autismo. A desinformação sobre vacina circula há décadas.",
			Label:  "falso",
			Source: "lupa",
		},
		{
			URL:    "https://g1.example/urna-fraude",
			Title:  "Urna eletrônica não foi fraudada",
			Text:   "A urna eletrônica passou por auditoria e nenhuma fraude foi encontrada na eleição.",
			Label:  "falso",
			Source: "g1",
		},
		{
			URL:    "https://aosfatos.example/terra-plana",
			Title:  "Terra não é plana",
			Text:   "A Terra é redonda. Imagens de satélite comprovam o formato do planeta.",
			Label:  "falso",
			Source: "aosfatos",
		},
	}
}
