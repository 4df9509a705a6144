package reusecache

import "fmt"

// InvalidArgumentError reports a programmer error at the tree boundary: a
// nil/absent required parameter, or a query/output length mismatch. It is
// fatal to the call that raised it; no partial mutation occurs because the
// tree validates arguments before writing anything.
type InvalidArgumentError struct {
	Operation string
	Message   string
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("reusecache: invalid argument in %s: %s", e.Operation, e.Message)
}

// NewInvalidArgumentError creates an InvalidArgumentError for the named
// operation with the given message.
func NewInvalidArgumentError(operation, message string) *InvalidArgumentError {
	return &InvalidArgumentError{Operation: operation, Message: message}
}

// NonDeterministicBehaviorError reports a domain-level contradiction: insert
// observed an output incompatible with a previously cached observation at the
// same (node, input) pair. It carries enough detail for the caller to log or
// abort the learning experiment, as determinism is an axiom of the learning
// setting.
type NonDeterministicBehaviorError struct {
	// Position is the index within the inserted sequence at which the
	// conflict was detected.
	Position int
	// CachedOutput is the output already stored on the conflicting edge.
	CachedOutput any
	// ObservedOutput is the output the caller attempted to insert.
	ObservedOutput any
	// NodeID is the id of the node at which the conflict occurred.
	NodeID int
}

// Error implements the error interface.
func (e *NonDeterministicBehaviorError) Error() string {
	return fmt.Sprintf(
		"reusecache: non-deterministic behavior at node %d position %d: cached output %v, observed output %v",
		e.NodeID, e.Position, e.CachedOutput, e.ObservedOutput,
	)
}

// NewNonDeterministicBehaviorError creates a NonDeterministicBehaviorError.
func NewNonDeterministicBehaviorError(nodeID, position int, cached, observed any) *NonDeterministicBehaviorError {
	return &NonDeterministicBehaviorError{
		Position:       position,
		CachedOutput:   cached,
		ObservedOutput: observed,
		NodeID:         nodeID,
	}
}
