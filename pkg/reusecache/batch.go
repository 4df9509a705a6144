package reusecache

import (
	"context"
	"fmt"
	"sync"

	"github.com/gitrdm/reusecache/internal/querypool"
	"go.uber.org/zap"
)

// BatchQuery is one input word of a batch. Its answer lands in the result
// slot with the same index, so a BatchRunner reports results in request
// order even though they complete out of order.
type BatchQuery[I comparable] struct {
	Word Word[I]
}

// BatchResult is one answered entry of a batch, in the same order as the
// BatchQuery slice the batch was submitted with.
type BatchResult[O comparable] struct {
	Output Word[O]
	Err    error
}

// BatchRunner dispatches many queries against a ReuseOracle concurrently,
// bounding fan-out with a querypool.WorkerPool. Individual dispatches still
// serialize at the ReuseTree (§5); the pool only bounds how many driver
// calls are outstanding at once.
type BatchRunner[S any, I comparable, O comparable] struct {
	oracle *ReuseOracle[S, I, O]
	pool   *querypool.WorkerPool
	logger *zap.Logger
}

// NewBatchRunner wires oracle to a worker pool sized maxConcurrency (0 or
// negative defaults to the number of CPU cores). logger may be nil.
func NewBatchRunner[S any, I comparable, O comparable](oracle *ReuseOracle[S, I, O], maxConcurrency int, logger *zap.Logger) (*BatchRunner[S, I, O], error) {
	if oracle == nil {
		return nil, NewInvalidArgumentError("NewBatchRunner", "oracle must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchRunner[S, I, O]{
		oracle: oracle,
		pool:   querypool.NewWorkerPool(maxConcurrency),
		logger: logger,
	}, nil
}

// Run dispatches every query in queries concurrently and returns their
// results in the same order. Run blocks until all queries have either
// completed or ctx is cancelled; a cancelled context aborts dispatch of any
// queries not yet submitted to the pool, and their result slot carries the
// context error.
func (b *BatchRunner[S, I, O]) Run(ctx context.Context, queries []BatchQuery[I]) []BatchResult[O] {
	results := make([]BatchResult[O], len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		i, q := i, q
		wg.Add(1)
		id := fmt.Sprintf("batch-query-%d", i)
		description := fmt.Sprintf("answer query of length %d", q.Word.Len())
		err := b.pool.Submit(ctx, id, description, func() {
			defer wg.Done()
			out, err := b.oracle.Answer(ctx, q.Word)
			results[i] = BatchResult[O]{Output: out, Err: err}
		})
		if err != nil {
			results[i] = BatchResult[O]{Err: err}
			wg.Done()
		}
	}

	wg.Wait()
	return results
}

// Stats returns the underlying pool's execution statistics.
func (b *BatchRunner[S, I, O]) Stats() *querypool.ExecutionStats {
	return b.pool.GetStats()
}

// Close shuts down the runner's worker pool. A BatchRunner must not be used
// after Close.
func (b *BatchRunner[S, I, O]) Close() {
	b.pool.Shutdown()
}
