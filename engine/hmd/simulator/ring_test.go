package simulator

import "testing"

func TestRingCycles(t *testing.T) {
	r := newRing(3)
	if _, ok := r.latest(); ok {
		t.Fatal("latest before the first commit must report false")
	}

	for i, want := range []int{0, 1, 2, 0, 1} {
		if got := r.current(); got != want {
			t.Fatalf("step %d: current = %d, want %d", i, got, want)
		}
		if got := r.commit(); got != want {
			t.Fatalf("step %d: commit = %d, want %d", i, got, want)
		}
		if got, ok := r.latest(); !ok || got != want {
			t.Fatalf("step %d: latest = %d, %v, want %d, true", i, got, ok, want)
		}
	}
}
