package reusecache

import "context"

// QueryResult is the shape returned by both insert entry points' callers —
// a full SUL run and a resumed continuation alike. S is the opaque
// system-state handle type, O the output symbol type.
type QueryResult[S any, O comparable] struct {
	// Output is the output word observed for the processed input. Its
	// length must equal the length of the corresponding input word.
	Output Word[O]
	// NewState captures the SUL's configuration after processing, to be
	// attached to the terminal node of the inserted word.
	NewState S
	// OldInvalidated reports whether a resumed state (continueQuery only)
	// was consumed by the driver. See §4.5/§9: when false, the caller must
	// reinstall the state it had already detached via fetchSystemState.
	OldInvalidated bool
}

// ReuseCapableOracle is the external SUL driver a ReuseOracle dispatches to.
// Implementations talk to the System Under Learning; the reuse cache never
// calls into the SUL directly.
type ReuseCapableOracle[S any, I comparable, O comparable] interface {
	// ProcessQuery resets the SUL, steps it through w, and returns the
	// observed output together with the resulting system state.
	ProcessQuery(ctx context.Context, w Word[I]) (QueryResult[S, O], error)

	// ContinueQuery resumes the SUL from state (consuming it — calling
	// ContinueQuery twice with the same state is undefined) and steps it
	// through w, returning the observed output and the resulting state.
	ContinueQuery(ctx context.Context, w Word[I], state S) (QueryResult[S, O], error)
}
