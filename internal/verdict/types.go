// Package verdict classifies claims from gathered evidence.
package verdict

import (
	"time"

	o4terrors "github.com/lucasfrag/ollama4truth/internal/errors"
)

// Classification values follow the FEVER-style taxonomy used by
// fact-checking benchmarks.
const (
	ClassSupported   = "Supported"
	ClassRefuted     = "Refuted"
	ClassNotEnough   = "Not Enough Evidence"
	ClassConflicting = "Conflicting Evidence/Cherry-picking"

	// ClassUnverified marks model output that could not be interpreted.
	ClassUnverified = "unverified"
)

// Strategy selects how the verdict is produced.
type Strategy string

const (
	// StrategyLabelVote aggregates the fact-check labels of retrieved
	// corpus articles by majority.
	StrategyLabelVote Strategy = "label_vote"

	// StrategyLLM asks the generation model to weigh the evidence.
	StrategyLLM Strategy = "llm_verdict"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyLabelVote, StrategyLLM:
		return Strategy(s), nil
	default:
		return "", o4terrors.Newf(o4terrors.ErrCodeConfigInvalid,
			"unknown verdict strategy %q (want label_vote or llm_verdict)", s)
	}
}

// Verdict is the classification of one claim.
type Verdict struct {
	Claim          string         `json:"claim"`
	Classification string         `json:"classification"`
	Justification  string         `json:"justification"`
	Confidence     float64        `json:"confidence"`
	Strategy       Strategy       `json:"strategy"`
	LabelBreakdown map[string]int `json:"label_breakdown,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}
