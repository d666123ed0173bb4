package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/schrodsim/internal/dynamo"
	"github.com/san-kum/schrodsim/internal/eigen"
	"github.com/san-kum/schrodsim/internal/potential"
	"github.com/san-kum/schrodsim/internal/shooting"
	"github.com/san-kum/schrodsim/internal/store"
)

func testResult() *store.Result {
	x := []float64{0, 0.25, 0.5, 0.75, 1}
	return &store.Result{
		Shape:     "square_well",
		Scheme:    shooting.Verlet,
		Grid:      potential.Grid{XMin: 0, XMax: 1, Step: 0.25},
		X:         x,
		Potential: []float64{0, 0, 0, 0, 0},
		Sweep:     eigen.Sweep{EMin: 1, EMax: 50, EStep: 1},
		Options:   eigen.DefaultOptions(),
		Elapsed:   1500 * time.Microsecond,
		Solutions: []eigen.Solution{
			{Energy: 4.9348, Wavefunction: []float64{0, 0.1, 0.14, 0.1, 1e-7}, Positions: x, BoundaryResidual: 1e-7, Iterations: 6, Converged: true},
			{Energy: 19.739, Wavefunction: []float64{0, 0.07, 1e-9, -0.07, -3e-7}, Positions: x, BoundaryResidual: -3e-7, Iterations: 9, Converged: false},
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Shape != "square_well" || meta.Scheme != "verlet" {
		t.Errorf("unexpected metadata %s/%s", meta.Shape, meta.Scheme)
	}
	if len(meta.States) != 2 || meta.States[1].Converged {
		t.Errorf("unexpected states %+v", meta.States)
	}
	if meta.ElapsedMs != 1.5 {
		t.Errorf("elapsed = %v ms", meta.ElapsedMs)
	}
}

func TestStoreLoadResultRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	want := testResult()
	runID, err := st.Save(want)
	if err != nil {
		t.Fatal(err)
	}

	got, err := st.LoadResult(runID)
	if err != nil {
		t.Fatalf("load result failed: %v", err)
	}
	if got.Scheme != shooting.Verlet || got.Grid != want.Grid || got.Sweep != want.Sweep {
		t.Errorf("header mismatch: %+v", got)
	}
	if len(got.X) != len(want.X) {
		t.Fatalf("x has %d points, want %d", len(got.X), len(want.X))
	}
	for i := range want.Solutions {
		g, w := got.Solutions[i], want.Solutions[i]
		if g.Energy != w.Energy || g.Iterations != w.Iterations || g.Converged != w.Converged {
			t.Errorf("state %d: got %+v", i, g)
		}
		for j := range w.Wavefunction {
			if g.Wavefunction[j] != w.Wavefunction[j] {
				t.Errorf("state %d sample %d: %g != %g", i, j, g.Wavefunction[j], w.Wavefunction[j])
			}
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	for i := 0; i < 2; i++ {
		if _, err := st.Save(testResult()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "potential.csv", "states.csv"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestStoreSaveNil(t *testing.T) {
	if _, err := New(t.TempDir()).Save(nil); err == nil {
		t.Fatal("expected error saving nil result")
	}
}

func TestStoreLoadResultRejectsTruncatedStates(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(testResult())
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(st.Dir(runID), statesFile)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	truncated := strings.Join(lines[:len(lines)-2], "\n") + "\n"
	if err := os.WriteFile(path, []byte(truncated), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := st.LoadResult(runID); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}
