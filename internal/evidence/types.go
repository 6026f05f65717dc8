// Package evidence orchestrates evidence gathering across the local
// corpus and the web.
package evidence

import (
	"context"
	"time"

	o4terrors "github.com/lucasfrag/ollama4truth/internal/errors"
	"github.com/lucasfrag/ollama4truth/internal/search"
	"github.com/lucasfrag/ollama4truth/internal/websearch"
)

// Mode selects where evidence comes from.
type Mode string

const (
	// ModeCorpus searches only the local fact-checking corpus.
	ModeCorpus Mode = "corpus"

	// ModeWeb searches only Google Custom Search.
	ModeWeb Mode = "web"

	// ModeHybrid searches the corpus first and falls back to the web
	// when the corpus yields too little.
	ModeHybrid Mode = "hybrid"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCorpus, ModeWeb, ModeHybrid:
		return Mode(s), nil
	default:
		return "", o4terrors.Newf(o4terrors.ErrCodeUnknownMode,
			"unknown evidence mode %q (want corpus, web, or hybrid)", s)
	}
}

// Mode tags recorded on hybrid bundles, so consumers can tell whether
// the fallback fired.
const (
	TagHybridCorpusOnly  = "hybrid (corpus only)"
	TagHybridWebFallback = "hybrid (corpus + web fallback)"
)

// Bundle is all evidence gathered for one claim.
type Bundle struct {
	Claim     string                   `json:"claim"`
	Timestamp time.Time                `json:"timestamp"`
	Mode      string                   `json:"mode"`
	Evidences []search.QuestionResults `json:"evidences"`

	// Top is the flat ranking across all questions: deduplicated by
	// link keeping the max score, sorted descending, capped at the
	// configured total.
	Top []search.Result `json:"top_results"`
}

// TotalResults counts evidence items in the bundle.
func (b *Bundle) TotalResults() int {
	return search.TotalResults(b.Evidences)
}

// WebSearcher is the web search dependency of the orchestrator.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]websearch.Result, error)
}
