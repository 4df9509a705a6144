package reusecache

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReuseOracle is the caller-facing entry point: it answers membership
// queries by consulting a ReuseTree for cached output and reusable system
// states before ever touching the driver, and records whatever the driver
// reports back. See §4.5.
type ReuseOracle[S any, I comparable, O comparable] struct {
	tree   *ReuseTree[S, I, O]
	driver ReuseCapableOracle[S, I, O]
	logger *zap.Logger
}

// NewReuseOracle wires tree to driver. Both must be non-nil. logger may be
// nil, in which case a no-op logger is used.
func NewReuseOracle[S any, I comparable, O comparable](tree *ReuseTree[S, I, O], driver ReuseCapableOracle[S, I, O], logger *zap.Logger) (*ReuseOracle[S, I, O], error) {
	if tree == nil {
		return nil, NewInvalidArgumentError("NewReuseOracle", "tree must not be nil")
	}
	if driver == nil {
		return nil, NewInvalidArgumentError("NewReuseOracle", "driver must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReuseOracle[S, I, O]{tree: tree, driver: driver, logger: logger}, nil
}

// Answer resolves query, preferring an exact cache hit, then a reusable
// suffix continuation from the deepest cached system state, and falling
// back to a fresh full run of the driver. Every path it takes is recorded
// into the tree before Answer returns, so subsequent identical or
// overlapping queries benefit.
func (o *ReuseOracle[S, I, O]) Answer(ctx context.Context, query Word[I]) (Word[O], error) {
	traceID := uuid.New()
	log := o.logger.With(zap.String("trace_id", traceID.String()))

	if out, hit := o.tree.GetOutput(query); hit {
		log.Debug("exact cache hit", zap.Int("length", query.Len()))
		return out, nil
	}

	if nr, found := o.tree.FetchSystemState(query); found {
		suffix := query.Suffix(nr.PrefixLength)
		log.Debug("resuming from cached system state",
			zap.Int("node", nr.Node.ID()),
			zap.Int("prefix_length", nr.PrefixLength),
			zap.Int("suffix_length", suffix.Len()),
		)

		result, err := o.driver.ContinueQuery(ctx, suffix, nr.State)
		if err != nil {
			// The driver never consumed the state we detached; give it back
			// so a later query can still reuse it.
			o.tree.ReinstallSystemState(nr.Node, nr.State)
			return Word[O]{}, err
		}

		if !result.OldInvalidated {
			o.tree.ReinstallSystemState(nr.Node, nr.State)
		}

		if err := o.tree.InsertFrom(suffix, nr.Node, result); err != nil {
			return Word[O]{}, err
		}

		prefixOut, _ := o.tree.GetOutput(query)
		return prefixOut, nil
	}

	log.Debug("no cache hit, running full query", zap.Int("length", query.Len()))
	result, err := o.driver.ProcessQuery(ctx, query)
	if err != nil {
		return Word[O]{}, err
	}
	if err := o.tree.Insert(query, result); err != nil {
		return Word[O]{}, err
	}
	return result.Output, nil
}
