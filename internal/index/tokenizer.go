// Package index builds the lexical and semantic retrieval indexes over
// the fact-checking corpus.
package index

import (
	"regexp"
	"strings"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/registry"

	"github.com/lucasfrag/ollama4truth/internal/corpus"
)

// tokenRegex matches lowercase alphanumeric runs after normalization.
var tokenRegex = regexp.MustCompile(`[a-z0-9]+`)

// Tokenize normalizes Portuguese text for lexical matching: lowercase,
// strip accents, split on non-alphanumeric runs, and drop tokens shorter
// than 2 characters. "Vacinação" and "vacinacao" produce the same tokens.
func Tokenize(text string) []string {
	normalized := corpus.StripAccents(strings.ToLower(text))
	words := tokenRegex.FindAllString(normalized, -1)

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) >= 2 {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

const (
	// PortugueseTokenizerName names the custom tokenizer in the bleve
	// registry.
	PortugueseTokenizerName = "pt_news_tokenizer"

	// PortugueseAnalyzerName names the custom analyzer built on it.
	PortugueseAnalyzerName = "pt_news_analyzer"
)

func init() {
	_ = registry.RegisterTokenizer(PortugueseTokenizerName, portugueseTokenizerConstructor)
}

func portugueseTokenizerConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.Tokenizer, error) {
	return &portugueseTokenizer{}, nil
}

// portugueseTokenizer implements analysis.Tokenizer over Tokenize.
type portugueseTokenizer struct{}

// Tokenize implements analysis.Tokenizer.
func (t *portugueseTokenizer) Tokenize(input []byte) analysis.TokenStream {
	text := string(input)
	tokens := Tokenize(text)

	result := make(analysis.TokenStream, 0, len(tokens))
	pos := 1
	offset := 0

	for _, token := range tokens {
		// Offsets are approximate: accent stripping can shift byte
		// positions, and scoring only depends on terms and positions.
		start := strings.Index(strings.ToLower(text[offset:]), token)
		if start == -1 {
			start = offset
		} else {
			start += offset
		}
		end := start + len(token)

		result = append(result, &analysis.Token{
			Term:     []byte(token),
			Start:    start,
			End:      end,
			Position: pos,
			Type:     analysis.AlphaNumeric,
		})
		pos++
		if end <= len(text) {
			offset = end
		}
	}

	return result
}
