package reusecache

// ReuseNode is a node in a ReuseTree. Each node carries a monotonically
// assigned id (stable within a tree generation, reset only by clearTree),
// an alphabet-size array of outgoing edges indexed by input-symbol index,
// and at most one optional system state.
//
// The edges array is monotonically populated: once a slot holds an edge it is
// only ever replaced by an edge carrying an equal output (a no-op), never by
// a conflicting one — conflicts are rejected by ReuseTree.insert before any
// write happens.
type ReuseNode[S any, I comparable, O comparable] struct {
	id    int
	edges []*ReuseEdge[S, I, O]

	hasState bool
	state    S
}

// newReuseNode allocates a node with a pre-sized edge array for the given
// alphabet size. It is unexported: nodes are only created by a ReuseTree.
func newReuseNode[S any, I comparable, O comparable](id, alphabetSize int) *ReuseNode[S, I, O] {
	return &ReuseNode[S, I, O]{
		id:    id,
		edges: make([]*ReuseEdge[S, I, O], alphabetSize),
	}
}

// ID returns the node's identifier. Ids are assigned by the owning tree's
// monotonic counter and are not stable across a clearTree call, nor are they
// meaningful across trees.
func (n *ReuseNode[S, I, O]) ID() int {
	return n.id
}

// EdgeAt returns the outgoing edge stored at the given alphabet index, or nil
// if no edge has been inserted for that input symbol yet.
func (n *ReuseNode[S, I, O]) EdgeAt(index int) *ReuseEdge[S, I, O] {
	return n.edges[index]
}

// HasSystemState reports whether the node currently carries a non-absent
// system state.
func (n *ReuseNode[S, I, O]) HasSystemState() bool {
	return n.hasState
}

// systemState returns the node's state and whether one is present. It does
// not mutate the node; callers that intend to take ownership must clear the
// slot explicitly via clearSystemState.
func (n *ReuseNode[S, I, O]) systemState() (S, bool) {
	if !n.hasState {
		var zero S
		return zero, false
	}
	return n.state, true
}

// setSystemState attaches s to the node, replacing and silently discarding
// whatever state (if any) was previously attached. Disposal of the replaced
// state is the caller's responsibility per the insert contract (§4.3): it has
// just been consumed by the driver that produced the new one.
func (n *ReuseNode[S, I, O]) setSystemState(s S) {
	n.state = s
	n.hasState = true
}

// clearSystemState detaches and returns the node's state, leaving the node
// stateless. Returns (zero, false) if the node had no state.
func (n *ReuseNode[S, I, O]) clearSystemState() (S, bool) {
	if !n.hasState {
		var zero S
		return zero, false
	}
	s := n.state
	var zero S
	n.state = zero
	n.hasState = false
	return s, true
}
