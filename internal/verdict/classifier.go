package verdict

import (
	"context"
	"log/slog"

	"github.com/lucasfrag/ollama4truth/internal/llm"
	"github.com/lucasfrag/ollama4truth/internal/search"
)

// Classifier dispatches between verdict strategies.
type Classifier struct {
	provider llm.Provider
}

// NewClassifier wraps an LLM provider for strategies that need one.
func NewClassifier(provider llm.Provider) *Classifier {
	return &Classifier{provider: provider}
}

// Classify produces a verdict with the requested strategy. label_vote
// needs article labels; pure web evidence silently falls back to the
// LLM strategy, matching how mixed-mode evidence behaves.
func (c *Classifier) Classify(ctx context.Context, claim string, evidences []search.QuestionResults, strategy Strategy) (*Verdict, error) {
	if strategy == StrategyLabelVote {
		if HasLabels(evidences) {
			return LabelVote(claim, evidences), nil
		}
		slog.Warn("label_vote_without_labels",
			"claim_len", len(claim),
			"fallback", StrategyLLM)
	}
	return LLMVerdict(ctx, c.provider, claim, evidences)
}
