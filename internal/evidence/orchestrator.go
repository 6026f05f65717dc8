package evidence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	o4terrors "github.com/lucasfrag/ollama4truth/internal/errors"
	"github.com/lucasfrag/ollama4truth/internal/search"
)

// Defaults for web fallback behavior.
const (
	// DefaultMinCorpusResults is the hybrid threshold: fewer total
	// corpus results than this triggers the web fallback.
	DefaultMinCorpusResults = 2

	// DefaultWebTimeout bounds each web search call.
	DefaultWebTimeout = 10 * time.Second

	// DefaultWebPacing is the minimum interval between web calls, to
	// stay inside search API quotas.
	DefaultWebPacing = 1500 * time.Millisecond
)

// Options configures an Orchestrator.
type Options struct {
	MinCorpusResults int
	WebTimeout       time.Duration
	WebPacing        time.Duration

	// TotalK caps the bundle's flat merged ranking.
	TotalK int

	// Search tunes corpus retrieval (method, k, weight).
	Search search.Options
}

// Orchestrator gathers evidence for claims in the configured mode. The
// web searcher may be nil: the hybrid fallback then degrades to empty
// web results, while web mode fails with a configuration error.
type Orchestrator struct {
	aggregator *search.Aggregator
	web        WebSearcher
	limiter    *rate.Limiter
	opts       Options
}

// NewOrchestrator wires the corpus aggregator and optional web searcher.
func NewOrchestrator(aggregator *search.Aggregator, web WebSearcher, opts Options) *Orchestrator {
	if opts.MinCorpusResults <= 0 {
		opts.MinCorpusResults = DefaultMinCorpusResults
	}
	if opts.WebTimeout <= 0 {
		opts.WebTimeout = DefaultWebTimeout
	}
	if opts.WebPacing <= 0 {
		opts.WebPacing = DefaultWebPacing
	}
	if opts.TotalK <= 0 {
		opts.TotalK = search.DefaultTotalK
	}

	return &Orchestrator{
		aggregator: aggregator,
		web:        web,
		limiter:    rate.NewLimiter(rate.Every(opts.WebPacing), 1),
		opts:       opts,
	}
}

// Gather collects evidence for a claim's questions in the given mode.
// The bundle's flat top ranking is filled in regardless of mode. Web
// mode requires a configured searcher; hybrid only degrades.
func (o *Orchestrator) Gather(ctx context.Context, claim string, questions []string, mode Mode) (*Bundle, error) {
	var bundle *Bundle
	var err error

	switch mode {
	case ModeCorpus:
		bundle, err = o.gatherCorpus(ctx, claim, questions)
	case ModeWeb:
		if o.web == nil {
			return nil, o4terrors.New(o4terrors.ErrCodeMissingCredentials,
				"evidence mode web requires Google search credentials")
		}
		bundle, err = o.gatherWeb(ctx, claim, questions)
	case ModeHybrid:
		bundle, err = o.gatherHybrid(ctx, claim, questions)
	default:
		return nil, fmt.Errorf("unknown evidence mode %q", mode)
	}
	if err != nil {
		return nil, err
	}

	bundle.Top = search.Aggregate(bundle.Evidences, o.opts.TotalK)
	return bundle, nil
}

// gatherCorpus retrieves per-question corpus evidence, deduplicated
// across questions so an article appears under the first question that
// found it.
func (o *Orchestrator) gatherCorpus(ctx context.Context, claim string, questions []string) (*Bundle, error) {
	perQuestion, err := o.aggregator.Gather(ctx, questions, o.opts.Search)
	if err != nil {
		return nil, err
	}
	deduped := search.DedupAcrossQuestions(perQuestion)

	slog.Info("corpus_evidence_gathered",
		"questions", len(questions),
		"results", search.TotalResults(deduped))

	return &Bundle{
		Claim:     claim,
		Timestamp: time.Now().UTC(),
		Mode:      string(ModeCorpus),
		Evidences: deduped,
	}, nil
}

// gatherWeb queries the web for every question sequentially, paced by
// the rate limiter. A failed search logs a warning and contributes an
// empty result group instead of failing the claim.
func (o *Orchestrator) gatherWeb(ctx context.Context, claim string, questions []string) (*Bundle, error) {
	evidences := make([]search.QuestionResults, 0, len(questions))
	for _, q := range questions {
		results := o.searchWebOnce(ctx, q)
		evidences = append(evidences, search.QuestionResults{Question: q, Results: results})
	}

	slog.Info("web_evidence_gathered",
		"questions", len(questions),
		"results", search.TotalResults(evidences))

	return &Bundle{
		Claim:     claim,
		Timestamp: time.Now().UTC(),
		Mode:      string(ModeWeb),
		Evidences: evidences,
	}, nil
}

func (o *Orchestrator) searchWebOnce(ctx context.Context, query string) []search.Result {
	if o.web == nil {
		return []search.Result{}
	}

	if err := o.limiter.Wait(ctx); err != nil {
		slog.Warn("web_search_pacing_interrupted", "error", err)
		return []search.Result{}
	}

	callCtx, cancel := context.WithTimeout(ctx, o.opts.WebTimeout)
	defer cancel()

	hits, err := o.web.Search(callCtx, query)
	if err != nil {
		slog.Warn("web_search_failed",
			"query", query,
			"error", err)
		return []search.Result{}
	}

	results := make([]search.Result, len(hits))
	for i, h := range hits {
		results[i] = search.Result{
			Title:   h.Title,
			Link:    h.Link,
			Snippet: h.Snippet,
			Source:  "web",
		}
	}
	return results
}

// gatherHybrid tries the corpus first. When the corpus supplies at
// least MinCorpusResults items across all questions, no web call is
// made. Otherwise the web is queried once for the claim's questions and
// the results are appended after the non-empty corpus groups.
func (o *Orchestrator) gatherHybrid(ctx context.Context, claim string, questions []string) (*Bundle, error) {
	corpusBundle, err := o.gatherCorpus(ctx, claim, questions)
	if err != nil {
		return nil, err
	}

	total := corpusBundle.TotalResults()
	if total >= o.opts.MinCorpusResults {
		slog.Info("hybrid_corpus_sufficient",
			"results", total,
			"threshold", o.opts.MinCorpusResults)
		corpusBundle.Mode = TagHybridCorpusOnly
		return corpusBundle, nil
	}

	slog.Info("hybrid_web_fallback",
		"corpus_results", total,
		"threshold", o.opts.MinCorpusResults)

	webBundle, err := o.gatherWeb(ctx, claim, questions)
	if err != nil {
		return nil, err
	}

	merged := make([]search.QuestionResults, 0, len(corpusBundle.Evidences)+len(webBundle.Evidences))
	for _, qr := range corpusBundle.Evidences {
		if len(qr.Results) > 0 {
			merged = append(merged, qr)
		}
	}
	merged = append(merged, webBundle.Evidences...)

	return &Bundle{
		Claim:     claim,
		Timestamp: time.Now().UTC(),
		Mode:      TagHybridWebFallback,
		Evidences: merged,
	}, nil
}
