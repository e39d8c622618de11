package triage

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// AnalyzeBatch runs the single-case pipeline over notes with at most
// workers concurrent in-flight requests (workers <= 0 means serial).
// The returned slice always has len(notes) entries in input order,
// regardless of completion order; a failure on one item becomes that
// item's fallback result and never affects its neighbours.
func (e *Engine) AnalyzeBatch(ctx context.Context, notes []string, workers int) []*Result {
	timed := e.analyzeBatch(ctx, notes, workers)
	results := make([]*Result, len(timed))
	for i, tr := range timed {
		results[i] = tr.result
	}
	return results
}

// timedResult pairs a batch item's result with its wall time, so the
// service can carry per-item durations into record metadata.
type timedResult struct {
	result  *Result
	seconds float64
}

func (e *Engine) analyzeBatch(ctx context.Context, notes []string, workers int) []timedResult {
	if workers <= 0 {
		workers = 1
	}

	if e.hooks.OnBatch != nil {
		e.hooks.OnBatch(len(notes))
	}

	results := make([]timedResult, len(notes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, note := range notes {
		g.Go(func() error {
			start := time.Now()
			r := e.Analyze(ctx, note)
			results[i] = timedResult{result: r, seconds: time.Since(start).Seconds()}
			return nil
		})
	}

	// Analyze never fails, so Wait only synchronizes.
	_ = g.Wait()

	return results
}
