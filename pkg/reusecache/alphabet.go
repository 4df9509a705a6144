// Package reusecache provides a prefix-sharing cache tree for automata-learning
// membership-query oracles, together with a companion symbol-at-a-time cache
// for streaming oracle styles.
package reusecache

import "fmt"

// Alphabet is a finite ordered set of input symbols. It provides the bijection
// between a symbol and a contiguous integer index in [0, Size()), which every
// ReuseNode uses to index its outgoing-edge array in O(1).
type Alphabet[I comparable] struct {
	symbols []I
	index   map[I]int
}

// NewAlphabet builds an Alphabet from an ordered, duplicate-free list of
// symbols. The order given fixes the index assignment.
func NewAlphabet[I comparable](symbols []I) (*Alphabet[I], error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("reusecache: alphabet must contain at least one symbol")
	}
	index := make(map[I]int, len(symbols))
	for i, s := range symbols {
		if _, dup := index[s]; dup {
			return nil, fmt.Errorf("reusecache: duplicate alphabet symbol %v at index %d", s, i)
		}
		index[s] = i
	}
	cp := make([]I, len(symbols))
	copy(cp, symbols)
	return &Alphabet[I]{symbols: cp, index: index}, nil
}

// Size returns the number of symbols in the alphabet.
func (a *Alphabet[I]) Size() int {
	return len(a.symbols)
}

// IndexOf returns the contiguous index of sym and true, or (0, false) if sym
// is not a member of the alphabet.
func (a *Alphabet[I]) IndexOf(sym I) (int, bool) {
	idx, ok := a.index[sym]
	return idx, ok
}

// Symbol returns the symbol at the given index. Panics if idx is out of range;
// callers only ever pass indices obtained from IndexOf or from iterating
// [0, Size()).
func (a *Alphabet[I]) Symbol(idx int) I {
	return a.symbols[idx]
}

// Symbols returns a copy of the alphabet's symbols in index order.
func (a *Alphabet[I]) Symbols() []I {
	cp := make([]I, len(a.symbols))
	copy(cp, a.symbols)
	return cp
}
