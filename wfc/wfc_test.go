package wfc

import (
	"errors"
	"testing"

	"github.com/pixelloom/wfc/pattern"
	"github.com/pixelloom/wfc/raster"
	"github.com/pixelloom/wfc/wfcerr"
)

func mustRaster(t *testing.T, w, h, c int, pix []byte) *raster.Raster {
	t.Helper()
	r, err := raster.New(w, h, c)
	if err != nil {
		t.Fatalf("raster.New: %v", err)
	}
	copy(r.Pix, pix)
	return r
}

// A single input pixel leaves exactly one pattern, so every cell starts
// already collapsed and Run must do no work at all.
func TestSolverSinglePatternDegenerate(t *testing.T) {
	in := mustRaster(t, 1, 1, 1, []byte{42})
	s, err := New(8, 8, in, 3, 3, pattern.Options{Expand: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.PatternCount() != 1 {
		t.Fatalf("PatternCount() = %d, want 1", s.PatternCount())
	}
	if s.CollapsedCount() != 64 {
		t.Fatalf("CollapsedCount() = %d, want 64 before Run", s.CollapsedCount())
	}

	status, err := s.Run(-1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if status != StateCompleted {
		t.Fatalf("status = %v, want completed", status)
	}
	if s.CollapsedCount() != 64 {
		t.Errorf("CollapsedCount() = %d, want 64", s.CollapsedCount())
	}

	out := s.OutputRaster()
	for _, b := range out.Pix {
		if b != 42 {
			t.Errorf("output pixel = %d, want 42", b)
		}
	}
}

// Two 2x1 tiles harvested from [0, 1, 0] compile to a strict bipartite
// alternation rule: pattern 0 must be followed by pattern 1 and vice versa.
// A path graph is always 2-colorable, so this must complete without a
// contradiction regardless of pick order.
func newAlternatingSolver(t *testing.T, outW, outH int) *Solver {
	t.Helper()
	in := mustRaster(t, 3, 1, 1, []byte{0, 1, 0})
	s, err := New(outW, outH, in, 2, 1, pattern.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.PatternCount() != 2 {
		t.Fatalf("PatternCount() = %d, want 2", s.PatternCount())
	}
	return s
}

func TestSolverAlternationCompletesAndRespectsAdjacency(t *testing.T) {
	s := newAlternatingSolver(t, 6, 1)
	s.InitWithSeed(7)

	status, err := s.Run(-1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if status != StateCompleted {
		t.Fatalf("status = %v, want completed", status)
	}
	if s.CollapsedCount() != 6 {
		t.Errorf("CollapsedCount() = %d, want 6", s.CollapsedCount())
	}

	for x := 0; x < 5; x++ {
		a, ok := s.PatternAt(x)
		if !ok {
			t.Fatalf("cell %d is not a singleton after completion", x)
		}
		b, ok := s.PatternAt(x + 1)
		if !ok {
			t.Fatalf("cell %d is not a singleton after completion", x+1)
		}
		if !s.Allowed(raster.Right, a, b) {
			t.Errorf("cells %d=%d, %d=%d violate the compiled adjacency rule", x, a, x+1, b)
		}
	}
}

func TestSolverDeterministicUnderFixedSeed(t *testing.T) {
	s1 := newAlternatingSolver(t, 9, 1)
	s1.InitWithSeed(1234)
	if _, err := s1.Run(-1); err != nil {
		t.Fatalf("Run: %v", err)
	}

	s2 := newAlternatingSolver(t, 9, 1)
	s2.InitWithSeed(1234)
	if _, err := s2.Run(-1); err != nil {
		t.Fatalf("Run: %v", err)
	}

	out1, out2 := s1.OutputRaster(), s2.OutputRaster()
	if !raster.Equal(out1, out2) {
		t.Errorf("two runs with the same seed produced different output")
	}
}

// Re-seeding mid-lifecycle must reproduce the exact same run as a fresh
// solver built from scratch with the same seed.
func TestSolverReinitReproducesFirstRun(t *testing.T) {
	s := newAlternatingSolver(t, 9, 1)
	s.InitWithSeed(99)
	if _, err := s.Run(-1); err != nil {
		t.Fatalf("Run: %v", err)
	}
	first := s.OutputRaster()

	s.InitWithSeed(99)
	if s.State() != StateReady {
		t.Fatalf("State() = %v after InitWithSeed, want ready", s.State())
	}
	if _, err := s.Run(-1); err != nil {
		t.Fatalf("Run: %v", err)
	}
	second := s.OutputRaster()

	if !raster.Equal(first, second) {
		t.Errorf("re-seeding with the same seed did not reproduce the first run")
	}
}

// Three 1x1 patterns always overlap trivially (the intersecting rectangle
// is empty in every direction), so propagation never removes a candidate.
// Each full step therefore advances CollapsedCount by exactly one, making
// the budget boundary exact and leaving the rest of the grid undecided.
func TestSolverBudgetExceeded(t *testing.T) {
	in := mustRaster(t, 3, 1, 1, []byte{0, 100, 200})
	s, err := New(8, 8, in, 1, 1, pattern.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.InitWithSeed(5)

	status, err := s.Run(10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if status != StateBudgetExceeded {
		t.Fatalf("status = %v, want budget_exceeded", status)
	}
	if s.CollapsedCount() != 10 {
		t.Errorf("CollapsedCount() = %d, want 10", s.CollapsedCount())
	}
	if s.UndecidedCount() != 54 {
		t.Errorf("UndecidedCount() = %d, want 54", s.UndecidedCount())
	}

	status, err = s.Run(-1)
	if err != nil {
		t.Fatalf("Run to completion: %v", err)
	}
	if status != StateCompleted {
		t.Fatalf("status = %v, want completed", status)
	}
	if s.CollapsedCount() != 64 || s.UndecidedCount() != 0 {
		t.Errorf("solver did not reach full collapse: collapsed=%d undecided=%d", s.CollapsedCount(), s.UndecidedCount())
	}
}

// The three 2x1 tiles harvested from the strictly increasing row
// [0, 1, 2, 3] compile to transitions
// 0->1 and 1->2 only: pattern 0 has no valid predecessor and pattern 2 has
// no valid successor. No length-5 walk exists in that graph, so any
// 5-wide row is unsatisfiable and the solver must contradict regardless of
// pick order.
func newUnsatisfiableSolver(t *testing.T) *Solver {
	t.Helper()
	in := mustRaster(t, 4, 1, 1, []byte{0, 1, 2, 3})
	s, err := New(5, 1, in, 2, 1, pattern.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.PatternCount() != 3 {
		t.Fatalf("PatternCount() = %d, want 3", s.PatternCount())
	}
	return s
}

func TestSolverContradiction(t *testing.T) {
	for _, seed := range []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10} {
		s := newUnsatisfiableSolver(t)
		s.InitWithSeed(seed)

		status, err := s.Run(-1)
		if !errors.Is(err, wfcerr.ErrContradiction) {
			t.Fatalf("seed %d: err = %v, want wfcerr.ErrContradiction", seed, err)
		}
		if status != StateContradicted {
			t.Fatalf("seed %d: status = %v, want contradicted", seed, status)
		}

		if _, err := s.Run(-1); err == nil {
			t.Fatalf("seed %d: Run after contradiction without Init should fail", seed)
		}

		s.InitWithSeed(seed + 1000)
		if s.State() != StateReady {
			t.Fatalf("seed %d: State() = %v after InitWithSeed, want ready", seed, s.State())
		}
	}
}

// CollapsedCount must equal the number of singleton cells at every
// checkpoint: immediately after construction, mid-run under a budget, and
// at completion.
func TestSolverCollapsedCountInvariant(t *testing.T) {
	check := func(t *testing.T, s *Solver) {
		t.Helper()
		w, h := s.Dimensions()
		singletons := 0
		for i := 0; i < w*h; i++ {
			if _, ok := s.PatternAt(i); ok {
				singletons++
			}
		}
		if singletons != s.CollapsedCount() {
			t.Errorf("CollapsedCount() = %d, but %d cells are singletons", s.CollapsedCount(), singletons)
		}
	}

	in := mustRaster(t, 3, 1, 1, []byte{0, 100, 200})
	s, err := New(6, 6, in, 1, 1, pattern.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.InitWithSeed(3)
	check(t, s)

	if _, err := s.Run(8); err != nil {
		t.Fatalf("Run: %v", err)
	}
	check(t, s)

	if _, err := s.Run(-1); err != nil {
		t.Fatalf("Run: %v", err)
	}
	check(t, s)
}
