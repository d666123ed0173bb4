package automation

import (
	"bytes"
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/schrodsim/internal/eigen"
	"github.com/san-kum/schrodsim/internal/experiment"
	"github.com/san-kum/schrodsim/internal/potential"
	"github.com/san-kum/schrodsim/internal/shooting"
	"github.com/san-kum/schrodsim/internal/storage"
	"github.com/san-kum/schrodsim/internal/store"
)

const scenarioYAML = `name: wells
description: two quick runs
steps:
  - name: box
    potential: Square Well
    search:
      e_min: 0.01
      e_max: 1
      e_step: 0.01
    save: true
  - name: box-euler
    potential: square
    scheme: euler
    search:
      e_min: 0.01
      e_max: 0.5
      e_step: 0.01
`

func newRunner(t *testing.T, out io.Writer) *Runner {
	st := storage.New(t.TempDir())
	return &Runner{Out: out, Storage: st, Runner: experiment.NewRunner(store.New(), nil)}
}

func TestLoadAndRunScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(scenarioYAML), 0644); err != nil {
		t.Fatal(err)
	}
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(sc.Steps) != 2 {
		t.Fatalf("got %d steps", len(sc.Steps))
	}

	var out bytes.Buffer
	r := newRunner(t, &out)
	results, err := r.RunScenario(context.Background(), sc)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if len(results[0].Result.Solutions) != 4 || results[0].RunID == "" {
		t.Errorf("first step: %d states, run %q", len(results[0].Result.Solutions), results[0].RunID)
	}
	if results[1].Result.Scheme != shooting.Euler || results[1].RunID != "" {
		t.Errorf("second step: scheme %s, run %q", results[1].Result.Scheme, results[1].RunID)
	}
	if !strings.Contains(out.String(), "Running step 2/2: box-euler") {
		t.Errorf("missing progress output:\n%s", out.String())
	}

	runs, err := r.Storage.List()
	if err != nil || len(runs) != 1 {
		t.Errorf("saved runs = %d, %v", len(runs), err)
	}
}

func TestLoadScenarioEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("name: nothing\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScenario(path); err == nil {
		t.Fatal("expected error for scenario without steps")
	}
}

func TestStepConfig(t *testing.T) {
	cfg, err := ScenarioStep{Potential: "kp", Preset: "bands"}.Config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Potential != "kronig_penney" || cfg.Search.EMax != 60 {
		t.Errorf("unexpected config %+v", cfg)
	}

	if _, err := (ScenarioStep{Potential: "square_well", Preset: "missing"}).Config(); err == nil {
		t.Error("expected error for unknown preset")
	}
	if _, err := (ScenarioStep{Scheme: "bogus"}).Config(); err == nil {
		t.Error("expected validation error")
	}
}

func TestRunSweepWidth(t *testing.T) {
	r := newRunner(t, nil)
	sweep := &ParameterSweep{
		Request: experiment.Request{
			Shape:   potential.NewSquareWell(),
			Scheme:  shooting.RK4,
			Grid:    potential.Grid{XMin: 0, XMax: 5, Step: 0.01},
			Sweep:   eigen.Sweep{EMin: 0.01, EMax: 0.5, EStep: 0.01},
			Options: eigen.DefaultOptions(),
		},
		ParamName: "x_max",
		ParamMin:  5,
		ParamMax:  10,
		NumSteps:  2,
	}
	results, err := r.RunSweep(context.Background(), sweep)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || len(results[0].Energies) == 0 || len(results[1].Energies) == 0 {
		t.Fatalf("unexpected results %+v", results)
	}
	// doubling the width quarters the ground state energy
	ratio := results[0].Energies[0] / results[1].Energies[0]
	if math.Abs(ratio-4) > 0.05 {
		t.Errorf("E(L=5)/E(L=10) = %g, want 4", ratio)
	}
}

func TestRunSweepErrors(t *testing.T) {
	r := newRunner(t, nil)
	if _, err := r.RunSweep(context.Background(), &ParameterSweep{ParamName: "mass", NumSteps: 3}); err == nil {
		t.Error("expected error for unknown parameter")
	}
	if _, err := r.RunSweep(context.Background(), &ParameterSweep{ParamName: "x_max", NumSteps: 1}); err == nil {
		t.Error("expected error for a single step")
	}
}

func TestRunSweepWithoutOutput(t *testing.T) {
	r := &Runner{Runner: experiment.NewRunner(store.New(), nil)}
	results, err := r.RunSweep(context.Background(), &ParameterSweep{
		Request: experiment.Request{
			Shape:   potential.NewSquareWell(),
			Scheme:  shooting.RK4,
			Grid:    potential.Grid{XMin: 0, XMax: 5, Step: 0.05},
			Sweep:   eigen.Sweep{EMin: 0.1, EMax: 0.3, EStep: 0.05},
			Options: eigen.DefaultOptions(),
		},
		ParamName: "x_step",
		ParamMin:  0.05,
		ParamMax:  0.02,
		NumSteps:  2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
}
