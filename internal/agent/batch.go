package agent

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/lead-agent/internal/types"
)

// DefaultBatchConcurrency bounds how many leads are qualified at once.
const DefaultBatchConcurrency = 4

// BatchItem pairs one input with its outcome. Err is set when the
// pipeline failed outright for that lead; a degraded-but-stored fallback
// is reported through Result, not Err.
type BatchItem struct {
	Input  *types.LeadInput
	Result *Result
	Err    error
}

// QualifyAll runs the qualification pipeline over a batch of leads with
// bounded concurrency. Per-lead failures are collected rather than
// aborting the batch; the returned error is only non-nil when the
// context is cancelled. Items are returned in input order.
func (q *Qualifier) QualifyAll(ctx context.Context, inputs []*types.LeadInput, concurrency int) ([]BatchItem, error) {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	items := make([]BatchItem, len(inputs))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, input := range inputs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			result, err := q.Qualify(gCtx, input)
			mu.Lock()
			items[i] = BatchItem{Input: input, Result: result, Err: err}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return items, err
	}
	return items, nil
}
