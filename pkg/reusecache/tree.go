package reusecache

import (
	"sync"

	"go.uber.org/zap"
)

// NodeResult is returned by FetchSystemState: the deepest node along the
// query that carried a system state, the state itself (possibly already
// detached from the tree — see InvalidateSystemStates), and the length of
// the matched prefix.
type NodeResult[S any, I comparable, O comparable] struct {
	Node         *ReuseNode[S, I, O]
	State        S
	PrefixLength int
}

// ReuseTree is a root-anchored prefix-sharing cache tree over an Alphabet[I],
// augmented with reusable system states and pumped (self-loop) transitions
// for invariant inputs and failure outputs. See SPEC_FULL.md §§3-4 for the
// data model and algorithms this type implements.
//
// ReuseTree serializes all public operations behind a single mutex (§5):
// callers may invoke methods from multiple goroutines, but only one
// operation proceeds at a time. The expensive SUL interaction a learning
// algorithm performs between FetchSystemState and InsertFrom happens outside
// this lock — see ReuseOracle.
type ReuseTree[S any, I comparable, O comparable] struct {
	mu sync.Mutex

	alphabet *Alphabet[I]

	invariantInputs map[I]struct{}
	failureOutputs  map[O]struct{}

	invalidateSystemStates bool
	systemStateHandler     func(S)
	logger                 *zap.Logger

	root      *ReuseNode[S, I, O]
	nodeCount int
}

// NewReuseTree constructs a ReuseTree over the given alphabet, applying the
// supplied options in order. alphabet must not be nil.
func NewReuseTree[S any, I comparable, O comparable](alphabet *Alphabet[I], opts ...ReuseTreeOption[S, I, O]) (*ReuseTree[S, I, O], error) {
	if alphabet == nil {
		return nil, NewInvalidArgumentError("NewReuseTree", "alphabet must not be nil")
	}
	cfg := DefaultReuseTreeConfig[S, I, O]()
	for _, opt := range opts {
		opt(cfg)
	}

	t := &ReuseTree[S, I, O]{
		alphabet:               alphabet,
		invariantInputs:        cfg.InvariantInputs,
		failureOutputs:         cfg.FailureOutputs,
		invalidateSystemStates: cfg.InvalidateSystemStates,
		systemStateHandler:     cfg.SystemStateHandler,
		logger:                 cfg.Logger,
	}
	t.root = newReuseNode[S, I, O](0, alphabet.Size())
	t.nodeCount = 1
	return t, nil
}

// Root returns the tree's root node.
func (t *ReuseTree[S, I, O]) Root() *ReuseNode[S, I, O] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.root
}

// NodeCount returns the number of nodes allocated since construction or the
// last ClearTree, including the root.
func (t *ReuseTree[S, I, O]) NodeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nodeCount
}

// AddInvariantInputSymbol declares in as pumping (self-loop) for future
// inserts only. Existing edges, reflexive or not, are never reclassified —
// see SPEC_FULL.md §9's resolution of this Open Question.
func (t *ReuseTree[S, I, O]) AddInvariantInputSymbol(in I) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.invariantInputs[in] = struct{}{}
}

// AddFailureOutputSymbol declares out as pumping (self-loop) for future
// inserts only. Existing edges are never reclassified.
func (t *ReuseTree[S, I, O]) AddFailureOutputSymbol(out O) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failureOutputs[out] = struct{}{}
}

// GetOutput walks the tree from root along query and returns the
// concatenated outputs of the traversed edges, or (zero, false) if the walk
// falls off the tree before consuming the whole query. It is side-effect
// free and runs in O(query.Len()).
func (t *ReuseTree[S, I, O]) GetOutput(query Word[I]) (Word[O], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]O, 0, query.Len())
	n := t.root
	for i := 0; i < query.Len(); i++ {
		idx, ok := t.alphabet.IndexOf(query.At(i))
		if !ok {
			return Word[O]{}, false
		}
		edge := n.EdgeAt(idx)
		if edge == nil {
			return Word[O]{}, false
		}
		out = append(out, edge.Output)
		n = edge.Target
	}
	return NewWord(out), true
}

// FetchSystemState walks the tree from root along query as far as edges
// exist, tracking the deepest visited node carrying a system state. If none
// is found, returns (zero, false). Otherwise, when InvalidateSystemStates is
// enabled, the returned state is detached from its node (ownership transfers
// to the caller); when disabled, the state is merely read and remains
// attached.
func (t *ReuseTree[S, I, O]) FetchSystemState(query Word[I]) (NodeResult[S, I, O], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.root
	var deepest *ReuseNode[S, I, O]
	deepestDepth := -1
	if _, ok := n.systemState(); ok {
		deepest = n
		deepestDepth = 0
	}

	for i := 0; i < query.Len(); i++ {
		idx, ok := t.alphabet.IndexOf(query.At(i))
		if !ok {
			break
		}
		edge := n.EdgeAt(idx)
		if edge == nil {
			break
		}
		n = edge.Target
		if _, ok := n.systemState(); ok {
			deepest = n
			deepestDepth = i + 1
		}
	}

	if deepest == nil {
		return NodeResult[S, I, O]{}, false
	}

	var state S
	if t.invalidateSystemStates {
		s, _ := deepest.clearSystemState()
		state = s
	} else {
		s, _ := deepest.systemState()
		state = s
	}

	t.logger.Debug("fetched reusable system state",
		zap.Int("node", deepest.ID()),
		zap.Int("prefix_length", deepestDepth),
		zap.Bool("invalidated", t.invalidateSystemStates),
	)

	return NodeResult[S, I, O]{Node: deepest, State: state, PrefixLength: deepestDepth}, true
}

// ReinstallSystemState re-attaches state to node iff the node currently
// holds no state. This resolves the oldInvalidated Open Question from
// SPEC_FULL.md §9/§4.5: a driver reporting OldInvalidated == false is
// signalling it did not consume the state fetchSystemState had already
// detached, so the caller reinstalls it. If another insert has since
// attached a newer state to the same node, this call is a silent no-op —
// the caller remains responsible for disposing of the state it holds.
func (t *ReuseTree[S, I, O]) ReinstallSystemState(node *ReuseNode[S, I, O], state S) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if node == nil || node.HasSystemState() {
		return
	}
	node.setSystemState(state)
}

// Insert inserts query/result starting at the root, failing with a
// NonDeterministicBehaviorError at the first position whose observed output
// conflicts with a previously cached edge. See §4.3.
func (t *ReuseTree[S, I, O]) Insert(query Word[I], result QueryResult[S, O]) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.insertLocked(query, result, t.root)
}

// InsertFrom inserts suffix/result starting at fromNode rather than root,
// for the suffix-continuation path of ReuseOracle.Answer. |suffix| must
// equal |result.Output|. fromNode must not be nil.
func (t *ReuseTree[S, I, O]) InsertFrom(suffix Word[I], fromNode *ReuseNode[S, I, O], result QueryResult[S, O]) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if fromNode == nil {
		return NewInvalidArgumentError("InsertFrom", "fromNode must not be nil")
	}
	return t.insertLocked(suffix, result, fromNode)
}

// insertLocked implements the shared traversal routine of §4.3. Caller must
// hold t.mu.
func (t *ReuseTree[S, I, O]) insertLocked(query Word[I], result QueryResult[S, O], start *ReuseNode[S, I, O]) error {
	if query.Len() != result.Output.Len() {
		return NewInvalidArgumentError("Insert", "query length and output length must match")
	}
	for i := 0; i < query.Len(); i++ {
		if _, ok := t.alphabet.IndexOf(query.At(i)); !ok {
			return NewInvalidArgumentError("Insert", "input symbol not in alphabet")
		}
	}

	n := start
	for i := 0; i < query.Len(); i++ {
		in := query.At(i)
		out := result.Output.At(i)

		idx, _ := t.alphabet.IndexOf(in)

		if existing := n.EdgeAt(idx); existing != nil {
			if existing.Output == out {
				n = existing.Target
				continue
			}
			t.logger.Warn("non-deterministic behavior detected",
				zap.Int("node", n.ID()),
				zap.Int("position", i),
			)
			return NewNonDeterministicBehaviorError(n.ID(), i, existing.Output, out)
		}

		var target *ReuseNode[S, I, O]
		pumped := false
		if _, isFailure := t.failureOutputs[out]; isFailure {
			target = n
			pumped = true
		} else if _, isInvariant := t.invariantInputs[in]; isInvariant {
			target = n
			pumped = true
		} else {
			target = newReuseNode[S, I, O](t.nodeCount, t.alphabet.Size())
			t.nodeCount++
		}

		edge := &ReuseEdge[S, I, O]{Source: n, Target: target, Input: in, Output: out}
		n.edges[idx] = edge
		if pumped {
			t.logger.Debug("pumped transition inserted",
				zap.Int("node", n.ID()),
				zap.Int("position", i),
			)
		}
		n = target
	}

	n.setSystemState(result.NewState)
	return nil
}

// DisposeSystemStates walks the tree depth-first from root, invoking the
// system-state handler for every node carrying a non-absent state and then
// clearing it. Reflexive edges are never followed during the walk, so
// pumped self-loops do not cause revisits or infinite recursion.
func (t *ReuseTree[S, I, O]) DisposeSystemStates() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disposeFrom(t.root, make(map[int]struct{}))
	t.logger.Debug("system states disposed")
}

func (t *ReuseTree[S, I, O]) disposeFrom(n *ReuseNode[S, I, O], visited map[int]struct{}) {
	if _, seen := visited[n.id]; seen {
		return
	}
	visited[n.id] = struct{}{}

	if s, ok := n.clearSystemState(); ok {
		t.systemStateHandler(s)
	}

	for _, edge := range n.edges {
		if edge == nil || edge.Reflexive() {
			continue
		}
		t.disposeFrom(edge.Target, visited)
	}
}

// ClearTree replaces root with a fresh empty node, resets the node counter,
// and empties the invariant-input and failure-output sets. The system-state
// handler is NOT invoked — this is a structural reset, not a disposal sweep,
// and the caller is responsible for any states it still holds references to.
func (t *ReuseTree[S, I, O]) ClearTree() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.root = newReuseNode[S, I, O](0, t.alphabet.Size())
	t.nodeCount = 1
	t.invariantInputs = make(map[I]struct{})
	t.failureOutputs = make(map[O]struct{})

	t.logger.Debug("tree cleared")
}
