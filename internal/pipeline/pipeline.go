// Package pipeline runs the full claim analysis: question generation,
// evidence gathering, and verdict classification.
package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lucasfrag/ollama4truth/internal/evidence"
	"github.com/lucasfrag/ollama4truth/internal/history"
	"github.com/lucasfrag/ollama4truth/internal/questions"
	"github.com/lucasfrag/ollama4truth/internal/verdict"
)

// Analysis is the complete result for one claim.
type Analysis struct {
	ID        string                 `json:"id"`
	Claim     string                 `json:"claim"`
	Mode      string                 `json:"mode"`
	Strategy  verdict.Strategy       `json:"strategy"`
	Questions *questions.QuestionSet `json:"questions"`
	Evidence  *evidence.Bundle       `json:"evidence"`
	Verdict   *verdict.Verdict       `json:"verdict"`
	Duration  time.Duration          `json:"duration"`
}

// Hooks receive intermediate results as each stage completes, for
// streaming consumers. Any hook may be nil.
type Hooks struct {
	OnQuestions func(*questions.QuestionSet)
	OnEvidence  func(*evidence.Bundle)
	OnVerdict   func(*verdict.Verdict)
}

// Pipeline wires the analysis stages together.
type Pipeline struct {
	generator    *questions.Generator
	orchestrator *evidence.Orchestrator
	classifier   *verdict.Classifier

	// store is optional; a nil store disables persistence.
	store *history.Store
}

// New assembles a pipeline. Pass a nil store to skip history.
func New(generator *questions.Generator, orchestrator *evidence.Orchestrator, classifier *verdict.Classifier, store *history.Store) *Pipeline {
	return &Pipeline{
		generator:    generator,
		orchestrator: orchestrator,
		classifier:   classifier,
		store:        store,
	}
}

// Analyze runs all stages for a claim. Stage hooks fire in order; the
// finished analysis is persisted to history when a store is configured.
func (p *Pipeline) Analyze(ctx context.Context, claim string, mode evidence.Mode, strategy verdict.Strategy, hooks *Hooks) (*Analysis, error) {
	start := time.Now()
	if hooks == nil {
		hooks = &Hooks{}
	}

	slog.Info("analysis_started",
		"claim_len", len(claim),
		"mode", mode,
		"strategy", strategy)

	qs, err := p.generator.Generate(ctx, claim)
	if err != nil {
		return nil, err
	}
	if hooks.OnQuestions != nil {
		hooks.OnQuestions(qs)
	}

	bundle, err := p.orchestrator.Gather(ctx, claim, qs.Questions, mode)
	if err != nil {
		return nil, err
	}
	if hooks.OnEvidence != nil {
		hooks.OnEvidence(bundle)
	}

	v, err := p.classifier.Classify(ctx, claim, bundle.Evidences, strategy)
	if err != nil {
		return nil, err
	}
	if hooks.OnVerdict != nil {
		hooks.OnVerdict(v)
	}

	analysis := &Analysis{
		ID:        uuid.NewString(),
		Claim:     claim,
		Mode:      bundle.Mode,
		Strategy:  v.Strategy,
		Questions: qs,
		Evidence:  bundle,
		Verdict:   v,
		Duration:  time.Since(start),
	}

	p.persist(ctx, analysis)

	slog.Info("analysis_finished",
		"id", analysis.ID,
		"classification", v.Classification,
		"evidence_results", bundle.TotalResults(),
		"duration", analysis.Duration)
	return analysis, nil
}

// persist logs a warning on failure instead of failing the analysis.
func (p *Pipeline) persist(ctx context.Context, a *Analysis) {
	if p.store == nil {
		return
	}

	payload, err := json.Marshal(a)
	if err != nil {
		slog.Warn("history_payload_encode_failed", "error", err)
		return
	}

	if _, err := p.store.Append(ctx, history.Entry{
		ID:             a.ID,
		Claim:          a.Claim,
		Mode:           a.Mode,
		Strategy:       string(a.Strategy),
		Classification: a.Verdict.Classification,
		Confidence:     a.Verdict.Confidence,
		Payload:        payload,
	}); err != nil {
		slog.Warn("history_append_failed", "id", a.ID, "error", err)
	}
}
