// Package search runs retrieval queries against the corpus indexes and
// aggregates results across multiple queries.
package search

import (
	o4terrors "github.com/lucasfrag/ollama4truth/internal/errors"
)

// Method selects how a query is scored.
type Method string

const (
	// MethodLexical scores with BM25 only.
	MethodLexical Method = "lexical"

	// MethodSemantic scores with embedding cosine similarity only.
	MethodSemantic Method = "semantic"

	// MethodHybrid fuses normalized lexical scores with semantic scores.
	MethodHybrid Method = "hybrid"
)

// ParseMethod validates a method name.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodLexical, MethodSemantic, MethodHybrid:
		return Method(s), nil
	default:
		return "", o4terrors.Newf(o4terrors.ErrCodeUnknownMethod,
			"unknown retrieval method %q (want lexical, semantic, or hybrid)", s)
	}
}

// Default retrieval parameters.
const (
	// DefaultK is the per-query result count.
	DefaultK = 5

	// DefaultTotalK caps the flat merged ranking across a claim's
	// questions.
	DefaultTotalK = 10

	// DefaultBM25Weight is the lexical weight in hybrid fusion.
	DefaultBM25Weight = 0.5

	// SnippetLength is the snippet prefix length in runes.
	SnippetLength = 300
)

// Result is one retrieved evidence item. Web fallback results reuse the
// same shape with Source "web" and no label.
type Result struct {
	Title   string  `json:"title"`
	Link    string  `json:"link"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
	Source  string  `json:"source"`
	Label   string  `json:"label,omitempty"`
}

// Options tunes a single retrieval call.
type Options struct {
	// K caps the result count. Zero means DefaultK.
	K int

	// Method overrides the engine's default method when non-empty.
	Method Method

	// BM25Weight overrides the hybrid lexical weight when non-nil.
	BM25Weight *float64
}

// QuestionResults pairs a query with its retrieved evidence.
type QuestionResults struct {
	Question string   `json:"question"`
	Results  []Result `json:"results"`
}
