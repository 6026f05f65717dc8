package search

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// DefaultParallelism bounds concurrent queries in a multi-query batch.
const DefaultParallelism = 4

// Aggregator runs a batch of queries and merges their results.
type Aggregator struct {
	engine      *Engine
	parallelism int
}

// NewAggregator wraps an engine for multi-query retrieval.
func NewAggregator(engine *Engine, parallelism int) *Aggregator {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	return &Aggregator{engine: engine, parallelism: parallelism}
}

// Gather retrieves evidence for every query concurrently. The output
// keeps query order regardless of completion order, one QuestionResults
// per input query.
func (a *Aggregator) Gather(ctx context.Context, queries []string, opts Options) ([]QuestionResults, error) {
	out := make([]QuestionResults, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.parallelism)

	for i, q := range queries {
		g.Go(func() error {
			results, err := a.engine.Retrieve(gctx, q, opts)
			if err != nil {
				return err
			}
			out[i] = QuestionResults{Question: q, Results: results}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Aggregate flattens per-question results into one deduplicated list.
// Duplicate links keep their highest-scoring copy, the merged list is
// sorted by score descending, and at most totalK items are returned.
// Running the same query twice therefore changes nothing.
func Aggregate(perQuestion []QuestionResults, totalK int) []Result {
	best := make(map[string]Result)
	order := make([]string, 0)

	for _, qr := range perQuestion {
		for _, r := range qr.Results {
			existing, seen := best[r.Link]
			if !seen {
				best[r.Link] = r
				order = append(order, r.Link)
			} else if r.Score > existing.Score {
				best[r.Link] = r
			}
		}
	}

	merged := make([]Result, 0, len(order))
	for _, link := range order {
		merged = append(merged, best[link])
	}
	sort.SliceStable(merged, func(a, b int) bool {
		return merged[a].Score > merged[b].Score
	})

	if totalK > 0 && len(merged) > totalK {
		merged = merged[:totalK]
	}
	return merged
}

// DedupAcrossQuestions drops results whose link already appeared under an
// earlier question, preserving question order and grouping.
func DedupAcrossQuestions(perQuestion []QuestionResults) []QuestionResults {
	seen := make(map[string]struct{})
	out := make([]QuestionResults, 0, len(perQuestion))

	for _, qr := range perQuestion {
		unique := make([]Result, 0, len(qr.Results))
		for _, r := range qr.Results {
			if _, dup := seen[r.Link]; dup {
				continue
			}
			seen[r.Link] = struct{}{}
			unique = append(unique, r)
		}
		out = append(out, QuestionResults{Question: qr.Question, Results: unique})
	}
	return out
}

// TotalResults counts evidence items across questions.
func TotalResults(perQuestion []QuestionResults) int {
	total := 0
	for _, qr := range perQuestion {
		total += len(qr.Results)
	}
	return total
}
