package reusecache

// mealyTransition is one labeled edge of an incrementally built Mealy
// automaton: consuming in at state from produces out and moves to state to.
type mealyTransition[I comparable, O comparable] struct {
	to  int
	out O
}

// mealyAutomaton is a growable Mealy machine indexed by contiguous state
// ids, built incrementally by SymbolQueryCache as it observes transitions.
// It never merges states on its own — convergence of two prefixes onto the
// same state is never inferred, only ever explicitly constructed by a
// caller holding a state id (see §4.6).
type mealyAutomaton[I comparable, O comparable] struct {
	states  []map[I]mealyTransition[I, O]
	initial int
}

// newMealyAutomaton builds an automaton with a single initial state and no
// transitions.
func newMealyAutomaton[I comparable, O comparable]() *mealyAutomaton[I, O] {
	return &mealyAutomaton[I, O]{
		states:  []map[I]mealyTransition[I, O]{make(map[I]mealyTransition[I, O])},
		initial: 0,
	}
}

// transition returns the transition from state on in, if cached.
func (m *mealyAutomaton[I, O]) transition(state int, in I) (mealyTransition[I, O], bool) {
	t, ok := m.states[state][in]
	return t, ok
}

// addState allocates a fresh state and returns its id.
func (m *mealyAutomaton[I, O]) addState() int {
	m.states = append(m.states, make(map[I]mealyTransition[I, O]))
	return len(m.states) - 1
}

// addTransition records state --in/out--> to. Overwriting an existing
// transition for the same (state, in) is the caller's responsibility to
// avoid; SymbolQueryCache only calls this once it has verified no
// conflicting transition is present.
func (m *mealyAutomaton[I, O]) addTransition(state int, in I, to int, out O) {
	m.states[state][in] = mealyTransition[I, O]{to: to, out: out}
}
