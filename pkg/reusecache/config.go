package reusecache

import "go.uber.org/zap"

// ReuseTreeConfig holds the configuration a ReuseTree is constructed with.
// It mirrors the option table of §6: an alphabet (required, supplied
// separately to NewReuseTree), the invariant-input and failure-output sets,
// the invalidate-on-fetch flag, the system-state disposer, and a logger.
type ReuseTreeConfig[S any, I comparable, O comparable] struct {
	InvariantInputs        map[I]struct{}
	FailureOutputs         map[O]struct{}
	InvalidateSystemStates bool
	SystemStateHandler     func(S)
	Logger                 *zap.Logger
}

// DefaultReuseTreeConfig returns the configuration a ReuseTree is built with
// when no options are supplied: empty invariant-input and failure-output
// sets, invalidate-on-fetch enabled, a no-op disposer, and a no-op logger.
func DefaultReuseTreeConfig[S any, I comparable, O comparable]() *ReuseTreeConfig[S, I, O] {
	return &ReuseTreeConfig[S, I, O]{
		InvariantInputs:        make(map[I]struct{}),
		FailureOutputs:         make(map[O]struct{}),
		InvalidateSystemStates: true,
		SystemStateHandler:     func(S) {},
		Logger:                 zap.NewNop(),
	}
}

// ReuseTreeOption configures a ReuseTreeConfig. Options are applied in order
// by NewReuseTree.
type ReuseTreeOption[S any, I comparable, O comparable] func(*ReuseTreeConfig[S, I, O])

// WithInvariantInputs declares the set of inputs whose transitions pump
// (self-loop) regardless of output.
func WithInvariantInputs[S any, I comparable, O comparable](inputs ...I) ReuseTreeOption[S, I, O] {
	return func(c *ReuseTreeConfig[S, I, O]) {
		for _, in := range inputs {
			c.InvariantInputs[in] = struct{}{}
		}
	}
}

// WithFailureOutputs declares the set of outputs whose triggering transitions
// pump (self-loop) regardless of input.
func WithFailureOutputs[S any, I comparable, O comparable](outputs ...O) ReuseTreeOption[S, I, O] {
	return func(c *ReuseTreeConfig[S, I, O]) {
		for _, out := range outputs {
			c.FailureOutputs[out] = struct{}{}
		}
	}
}

// WithoutStateInvalidation disables state detachment on fetch: fetchSystemState
// performs a read rather than a move-out. Use only for SUL drivers with
// genuinely non-destructive resumability (see §9's ownership design note).
func WithoutStateInvalidation[S any, I comparable, O comparable]() ReuseTreeOption[S, I, O] {
	return func(c *ReuseTreeConfig[S, I, O]) {
		c.InvalidateSystemStates = false
	}
}

// WithSystemStateHandler installs the disposer invoked by DisposeSystemStates
// for every system state it detaches.
func WithSystemStateHandler[S any, I comparable, O comparable](handler func(S)) ReuseTreeOption[S, I, O] {
	return func(c *ReuseTreeConfig[S, I, O]) {
		if handler != nil {
			c.SystemStateHandler = handler
		}
	}
}

// WithLogger installs a structured logger. A nil logger is ignored (the
// default zap.NewNop() logger remains in effect).
func WithLogger[S any, I comparable, O comparable](logger *zap.Logger) ReuseTreeOption[S, I, O] {
	return func(c *ReuseTreeConfig[S, I, O]) {
		if logger != nil {
			c.Logger = logger
		}
	}
}
