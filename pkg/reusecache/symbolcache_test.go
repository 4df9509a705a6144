package reusecache

import "testing"

// scriptedSymbolOracle is a SymbolOracle test double that records every
// call it receives (including resets, recorded as the sentinel symbol "R")
// so tests can assert on exactly what the cache forwarded to it.
type scriptedSymbolOracle struct {
	calls   []string
	outputs map[string]string
	pos     int
	history []string
}

func newScriptedSymbolOracle(outputs map[string]string) *scriptedSymbolOracle {
	return &scriptedSymbolOracle{outputs: outputs}
}

func (o *scriptedSymbolOracle) Query(in string) string {
	o.calls = append(o.calls, in)
	o.history = append(o.history, in)
	return o.outputs[in]
}

func (o *scriptedSymbolOracle) Reset() {
	o.calls = append(o.calls, "R")
	o.history = nil
}

func TestSymbolQueryCacheCachesAndReplaysOnMiss(t *testing.T) {
	delegate := newScriptedSymbolOracle(map[string]string{"a": "0", "b": "0", "c": "0"})
	cache, err := NewSymbolQueryCache[string, string](delegate, nil)
	if err != nil {
		t.Fatalf("NewSymbolQueryCache: %v", err)
	}

	if out := cache.Query("a"); out != "0" {
		t.Fatalf("unexpected output for a: %q", out)
	}
	if out := cache.Query("b"); out != "0" {
		t.Fatalf("unexpected output for b: %q", out)
	}

	cache.Reset()

	if out := cache.Query("a"); out != "0" {
		t.Fatalf("unexpected cached output for a: %q", out)
	}

	if out := cache.Query("c"); out != "0" {
		t.Fatalf("unexpected output for c: %q", out)
	}

	// "a" and "b" are the delegate's first-ever interactions (empty trace,
	// untouched delegate), so neither triggers a reset: the delegate is
	// already correctly positioned. cache.Reset() is pure bookkeeping and
	// never touches the delegate. The cached "a" after Reset is a pure hit.
	// Only "c" misses against a non-empty trace, forcing a real reset+replay.
	want := []string{"a", "b", "R", "a", "c"}
	if len(delegate.calls) != len(want) {
		t.Fatalf("call sequence length mismatch: got %v want %v", delegate.calls, want)
	}
	for i := range want {
		if delegate.calls[i] != want[i] {
			t.Fatalf("call %d: got %q want %q (full: %v)", i, delegate.calls[i], want[i], delegate.calls)
		}
	}
}

func TestSymbolQueryCacheOutputsMatchFreshDelegateRegardlessOfCacheState(t *testing.T) {
	outputs := map[string]string{"a": "0", "b": "1", "c": "0"}
	delegate := newScriptedSymbolOracle(outputs)
	cache, err := NewSymbolQueryCache[string, string](delegate, nil)
	if err != nil {
		t.Fatalf("NewSymbolQueryCache: %v", err)
	}

	seq := []string{"a", "b", "a", "c", "b"}
	var got []string
	for _, in := range seq {
		got = append(got, cache.Query(in))
	}

	fresh := newScriptedSymbolOracle(outputs)
	fresh.Reset()
	var want []string
	for _, in := range seq {
		want = append(want, fresh.Query(in))
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: cache produced %q, fresh delegate produced %q", i, got[i], want[i])
		}
	}
}
