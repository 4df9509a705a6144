package demosul

import (
	"context"
	"strings"

	"github.com/gitrdm/reusecache/pkg/reusecache"
)

// counterState is the opaque system-state handle for the demo SUL: just the
// current counter value, since the SUL's future behavior is a pure function
// of it.
type counterState int

// CounterSUL is a tiny synthetic System Under Learning: a read/write
// register that accepts "inc", "dec", and "read" inputs, wrapping at a
// configurable modulus, with a "reset" input that is model-invariant (a
// no-op on the externally observable counter value) and an "overflow"
// failure output emitted, with the counter left unchanged, whenever an
// increment would wrap.
type CounterSUL struct {
	modulus int
	calls   int
}

// NewCounterSUL builds a CounterSUL with the given modulus. A modulus of 0
// or less falls back to 16.
func NewCounterSUL(modulus int) *CounterSUL {
	if modulus <= 0 {
		modulus = 16
	}
	return &CounterSUL{modulus: modulus}
}

// CallCount returns the number of full SUL interactions (ProcessQuery or
// ContinueQuery calls) this SUL has served, for reporting cache
// effectiveness.
func (s *CounterSUL) CallCount() int {
	return s.calls
}

func (s *CounterSUL) run(start int, w reusecache.Word[string]) (reusecache.Word[string], int) {
	out := make([]string, w.Len())
	value := start
	for i := 0; i < w.Len(); i++ {
		switch w.At(i) {
		case "inc":
			next := (value + 1) % s.modulus
			if next < value || value == s.modulus-1 {
				out[i] = "overflow"
			} else {
				out[i] = "ok"
				value = next
			}
		case "dec":
			value = (value - 1 + s.modulus) % s.modulus
			out[i] = "ok"
		case "read":
			out[i] = strings.Repeat("1", value%10+1) // crude distinct-ish marker
		case "reset":
			out[i] = "ok"
		default:
			out[i] = "unknown"
		}
	}
	return reusecache.NewWord(out), value
}

// ProcessQuery implements reusecache.ReuseCapableOracle.
func (s *CounterSUL) ProcessQuery(_ context.Context, w reusecache.Word[string]) (reusecache.QueryResult[counterState, string], error) {
	s.calls++
	out, value := s.run(0, w)
	return reusecache.QueryResult[counterState, string]{Output: out, NewState: counterState(value)}, nil
}

// ContinueQuery implements reusecache.ReuseCapableOracle.
func (s *CounterSUL) ContinueQuery(_ context.Context, w reusecache.Word[string], state counterState) (reusecache.QueryResult[counterState, string], error) {
	s.calls++
	out, value := s.run(int(state), w)
	return reusecache.QueryResult[counterState, string]{Output: out, NewState: counterState(value), OldInvalidated: true}, nil
}
