package reusecache

import "go.uber.org/zap"

// SymbolOracle is the delegate a SymbolQueryCache drives: a streaming,
// symbol-at-a-time oracle that can be reset to its initial configuration.
// Unlike ReuseCapableOracle, there is no batch processQuery/continueQuery
// split — the delegate is always addressed one symbol at a time, and the
// cache itself is responsible for replaying history after a miss.
type SymbolOracle[I comparable, O comparable] interface {
	// Query steps the delegate by one symbol and returns its output.
	Query(in I) O
	// Reset returns the delegate to its initial configuration.
	Reset()
}

// SymbolQueryCache caches an independently constructed Mealy automaton for
// the symbol-at-a-time oracle style described in §4.6. It holds no system
// states — only transition memoization — and is unrelated to ReuseTree.
//
// A SymbolQueryCache is single-threaded by contract: exactly one walker
// drives exactly one cache. Concurrent use requires external serialization
// by the caller.
type SymbolQueryCache[I comparable, O comparable] struct {
	delegate  SymbolOracle[I, O]
	automaton *mealyAutomaton[I, O]

	currentState      int
	currentTrace      []I
	currentTraceValid bool

	// delegateTouched records whether the delegate has ever actually been
	// driven (queried, or replayed into) since construction. It is never
	// cleared by Reset, only set once true by replayToCurrentState or a
	// live Query call — it distinguishes a truly fresh delegate (which is
	// already correctly positioned and needs no Reset) from one that has
	// been driven away from its initial configuration at some point in the
	// past, even if the current trace happens to be empty again.
	delegateTouched bool

	logger *zap.Logger
}

// NewSymbolQueryCache wires a SymbolQueryCache to delegate. delegate must
// not be nil. logger may be nil, in which case a no-op logger is used.
func NewSymbolQueryCache[I comparable, O comparable](delegate SymbolOracle[I, O], logger *zap.Logger) (*SymbolQueryCache[I, O], error) {
	if delegate == nil {
		return nil, NewInvalidArgumentError("NewSymbolQueryCache", "delegate must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &SymbolQueryCache[I, O]{
		delegate:  delegate,
		automaton: newMealyAutomaton[I, O](),
		logger:    logger,
	}
	c.Reset()
	return c, nil
}

// Reset returns the cache's walk pointer to the automaton's initial state
// and discards the pending replay trace. It does not touch the delegate:
// the delegate is only ever reset lazily, the first time a live call or a
// post-miss replay actually needs it repositioned (see replayToCurrentState).
func (c *SymbolQueryCache[I, O]) Reset() {
	c.currentState = c.automaton.initial
	c.currentTrace = nil
	c.currentTraceValid = true
}

// Query answers in, preferring a cached transition from the current walk
// state, falling back to the delegate (and, on a cache miss following
// prior cache hits, replaying the accumulated trace first so the delegate's
// position matches the cache's currentState). See §4.6's walk discipline.
func (c *SymbolQueryCache[I, O]) Query(in I) O {
	if c.currentTraceValid {
		if t, ok := c.automaton.transition(c.currentState, in); ok {
			c.currentState = t.to
			c.currentTrace = append(c.currentTrace, in)
			return t.out
		}
		if len(c.currentTrace) > 0 || c.delegateTouched {
			c.replayToCurrentState()
		} else {
			// Genuinely the delegate's first-ever interaction: it starts in
			// its own initial configuration already, so there is nothing to
			// replay and no reset is needed.
			c.currentTraceValid = false
		}
	}

	c.delegateTouched = true
	out := c.delegate.Query(in)

	if t, ok := c.automaton.transition(c.currentState, in); ok {
		// Two paths converged onto the same cache state; the delegate must
		// agree with what was already observed from here.
		if t.out != out {
			c.logger.Warn("symbol cache observed conflicting output on converged state",
				zap.Int("state", c.currentState),
			)
		}
		c.currentState = t.to
		return out
	}

	next := c.automaton.addState()
	c.automaton.addTransition(c.currentState, in, next, out)
	c.currentState = next
	return out
}

// replayToCurrentState re-establishes delegate/cache agreement after a
// cache miss: the delegate is reset and stepped through every symbol the
// cache already answered from memory, so its internal position matches
// currentState before the live call that triggered the miss is issued.
func (c *SymbolQueryCache[I, O]) replayToCurrentState() {
	c.currentTraceValid = false
	c.delegate.Reset()
	c.delegateTouched = true
	for _, in := range c.currentTrace {
		c.delegate.Query(in)
	}
	c.logger.Debug("symbol cache replayed trace after miss", zap.Int("trace_length", len(c.currentTrace)))
}
