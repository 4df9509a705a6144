package reusecache

import (
	"context"
	"testing"
)

// recordingDriver is a test double for ReuseCapableOracle that serves a
// scripted output function and counts how many times each method is called,
// so tests can assert on cache-hit behavior without a real SUL.
type recordingDriver struct {
	processCalls  int
	continueCalls int
	outputFor     func(Word[string]) string
	failNext      error
}

func (d *recordingDriver) ProcessQuery(_ context.Context, w Word[string]) (QueryResult[int, string], error) {
	d.processCalls++
	if d.failNext != nil {
		err := d.failNext
		d.failNext = nil
		return QueryResult[int, string]{}, err
	}
	out := make([]string, w.Len())
	for i := 0; i < w.Len(); i++ {
		out[i] = d.outputFor(w)
	}
	return QueryResult[int, string]{Output: NewWord(out), NewState: w.Len()}, nil
}

func (d *recordingDriver) ContinueQuery(_ context.Context, w Word[string], state int) (QueryResult[int, string], error) {
	d.continueCalls++
	if d.failNext != nil {
		err := d.failNext
		d.failNext = nil
		return QueryResult[int, string]{}, err
	}
	out := make([]string, w.Len())
	for i := 0; i < w.Len(); i++ {
		out[i] = d.outputFor(w)
	}
	return QueryResult[int, string]{Output: NewWord(out), NewState: state + w.Len(), OldInvalidated: true}, nil
}

func newOracleFixture(t *testing.T) (*ReuseOracle[int, string, string], *recordingDriver) {
	t.Helper()
	a, err := NewAlphabet([]string{"a", "b"})
	if err != nil {
		t.Fatalf("NewAlphabet: %v", err)
	}
	tr, err := NewReuseTree[int, string, string](a)
	if err != nil {
		t.Fatalf("NewReuseTree: %v", err)
	}
	driver := &recordingDriver{outputFor: func(Word[string]) string { return "x" }}
	oracle, err := NewReuseOracle[int, string, string](tr, driver, nil)
	if err != nil {
		t.Fatalf("NewReuseOracle: %v", err)
	}
	return oracle, driver
}

func TestAnswerFullRunOnFirstQuery(t *testing.T) {
	oracle, driver := newOracleFixture(t)

	out, err := oracle.Answer(context.Background(), NewWord([]string{"a", "b"}))
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if out.Len() != 2 {
		t.Fatalf("unexpected output length: %d", out.Len())
	}
	if driver.processCalls != 1 || driver.continueCalls != 0 {
		t.Fatalf("expected one full run, got process=%d continue=%d", driver.processCalls, driver.continueCalls)
	}
}

func TestAnswerCacheHitAvoidsDriver(t *testing.T) {
	oracle, driver := newOracleFixture(t)
	ctx := context.Background()

	if _, err := oracle.Answer(ctx, NewWord([]string{"a", "b"})); err != nil {
		t.Fatalf("first Answer: %v", err)
	}
	if _, err := oracle.Answer(ctx, NewWord([]string{"a", "b"})); err != nil {
		t.Fatalf("second Answer: %v", err)
	}
	if driver.processCalls != 1 {
		t.Fatalf("expected driver called exactly once across both answers, got %d", driver.processCalls)
	}
}

func TestAnswerReusesSystemStateForExtension(t *testing.T) {
	oracle, driver := newOracleFixture(t)
	ctx := context.Background()

	if _, err := oracle.Answer(ctx, NewWord([]string{"a"})); err != nil {
		t.Fatalf("first Answer: %v", err)
	}
	if _, err := oracle.Answer(ctx, NewWord([]string{"a", "b"})); err != nil {
		t.Fatalf("second Answer: %v", err)
	}

	if driver.processCalls != 1 {
		t.Fatalf("expected exactly one full run, got %d", driver.processCalls)
	}
	if driver.continueCalls != 1 {
		t.Fatalf("expected exactly one continuation, got %d", driver.continueCalls)
	}
}

func TestAnswerReinstallsStateWhenDriverFails(t *testing.T) {
	oracle, driver := newOracleFixture(t)
	ctx := context.Background()

	if _, err := oracle.Answer(ctx, NewWord([]string{"a"})); err != nil {
		t.Fatalf("first Answer: %v", err)
	}

	boom := NewInvalidArgumentError("test", "simulated failure")
	driver.failNext = boom
	if _, err := oracle.Answer(ctx, NewWord([]string{"a", "b"})); err == nil {
		t.Fatal("expected error from driver to propagate")
	}

	// The state fetched for the failed continuation must have been
	// reinstalled, so a subsequent query can still reuse it.
	out, err := oracle.Answer(ctx, NewWord([]string{"a", "b"}))
	if err != nil {
		t.Fatalf("retry Answer: %v", err)
	}
	if out.Len() != 2 {
		t.Fatalf("unexpected output length on retry: %d", out.Len())
	}
	if driver.continueCalls != 2 {
		t.Fatalf("expected two continuation attempts (one failed, one retried), got %d", driver.continueCalls)
	}
}
