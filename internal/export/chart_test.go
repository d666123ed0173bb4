package export

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/schrodsim/internal/eigen"
	"github.com/san-kum/schrodsim/internal/experiment"
	"github.com/san-kum/schrodsim/internal/potential"
	"github.com/san-kum/schrodsim/internal/shooting"
	"github.com/san-kum/schrodsim/internal/store"
)

func solved(t *testing.T) *store.Result {
	t.Helper()
	req := experiment.Request{
		Shape:   potential.NewSquareWell(),
		Scheme:  shooting.RK4,
		Grid:    potential.Grid{XMin: 0, XMax: 10, Step: 0.01},
		Sweep:   eigen.Sweep{EMin: 0.01, EMax: 1, EStep: 0.01},
		Options: eigen.DefaultOptions(),
	}
	r, err := experiment.New(req, nil).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestSaveLevelChart(t *testing.T) {
	r := solved(t)
	p, err := LevelChart(r, ChartOptions{})
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	for _, name := range []string{"levels.png", "levels.svg"} {
		path := filepath.Join(dir, name)
		if err := Save(p, path, 0, 0); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Errorf("%s not written", name)
		}
	}
}

func TestLevelChartStateSelection(t *testing.T) {
	r := solved(t)
	if _, err := LevelChart(r, ChartOptions{States: []int{0, 2}}); err != nil {
		t.Fatal(err)
	}
	if _, err := LevelChart(r, ChartOptions{States: []int{9}}); !errors.Is(err, store.ErrNoSuchState) {
		t.Errorf("expected ErrNoSuchState, got %v", err)
	}
	if _, err := LevelChart(nil, ChartOptions{}); !errors.Is(err, store.ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestScanChart(t *testing.T) {
	r := solved(t)
	p, err := ScanChart(r)
	if err != nil {
		t.Fatal(err)
	}
	if err := Save(p, filepath.Join(t.TempDir(), "scan.svg"), 0, 0); err != nil {
		t.Fatal(err)
	}

	r.Scan = nil
	if _, err := ScanChart(r); err == nil {
		t.Error("expected error without sweep data")
	}
}

func TestSaveRejectsUnknownFormat(t *testing.T) {
	p, err := LevelChart(solved(t), ChartOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if err := Save(p, filepath.Join(t.TempDir(), "chart.bmp"), 0, 0); err == nil {
		t.Fatal("expected error for .bmp")
	}
}

func TestLevelAmplitude(t *testing.T) {
	tests := []struct {
		energies []float64
		want     float64
	}{
		{[]float64{1, 4, 9}, 1.2},
		{[]float64{5}, 2},
		{nil, 1},
	}
	for _, tt := range tests {
		if got := levelAmplitude(tt.energies); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("levelAmplitude(%v) = %g, want %g", tt.energies, got, tt.want)
		}
	}
}

func TestXYsStride(t *testing.T) {
	n := 3*MaxPlotPoints + 7
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
		y[i] = float64(i)
	}
	pts := xys(x, y, 100)
	if len(pts) > MaxPlotPoints+MaxPlotPoints/100 {
		t.Errorf("got %d points", len(pts))
	}
	if pts[len(pts)-1].X != float64(n-1) {
		t.Error("last sample dropped")
	}
	if pts[len(pts)-1].Y != 100 {
		t.Error("ceiling not applied")
	}
}
