// Package export renders results as PNG, SVG or PDF charts with gonum/plot.
package export

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/schrodsim/internal/analysis"
	"github.com/san-kum/schrodsim/internal/store"
)

const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

// MaxPlotPoints bounds the samples drawn per line; denser grids are strided.
const MaxPlotPoints = 4000

var formats = map[string]bool{".png": true, ".svg": true, ".pdf": true, ".eps": true, ".jpg": true, ".jpeg": true, ".tif": true, ".tiff": true}

type ChartOptions struct {
	// States lists eigenstate indexes to draw; nil draws all.
	States []int
	// Ceiling clips V(x); zero derives it from the sweep range.
	Ceiling float64
}

// LevelChart draws V(x) with each normalized ψ offset by its energy.
func LevelChart(r *store.Result, opts ChartOptions) (*plot.Plot, error) {
	if r == nil {
		return nil, store.ErrEmpty
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (%s)", r.Shape, r.Scheme)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "E, V(x)"
	p.Add(plotter.NewGrid())

	ceiling := opts.Ceiling
	if ceiling == 0 {
		ceiling = r.Sweep.EMax * 1.2
		for _, e := range r.Energies() {
			ceiling = math.Max(ceiling, e*1.2)
		}
	}
	pot, err := plotter.NewLine(xys(r.X, r.Potential, ceiling))
	if err != nil {
		return nil, err
	}
	pot.Color = plotutil.Color(0)
	pot.Width = vg.Points(2)
	p.Add(pot)
	p.Legend.Add("V(x)", pot)

	states := opts.States
	if states == nil {
		states = make([]int, len(r.Solutions))
		for i := range states {
			states[i] = i
		}
	}

	amp := levelAmplitude(r.Energies())
	for k, i := range states {
		if i < 0 || i >= len(r.Solutions) {
			return nil, fmt.Errorf("%w: %d of %d", store.ErrNoSuchState, i, len(r.Solutions))
		}
		sol := r.Solutions[i]
		psi, err := analysis.Normalize(r.X, sol.Wavefunction)
		if err != nil {
			return nil, fmt.Errorf("state %d: %w", i, err)
		}
		peak := 0.0
		for _, v := range psi {
			peak = math.Max(peak, math.Abs(v))
		}
		shifted := make([]float64, len(psi))
		for j, v := range psi {
			shifted[j] = sol.Energy + amp*v/peak
		}

		line, err := plotter.NewLine(xys(r.X, shifted, math.Inf(1)))
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(k + 1)
		p.Add(line)
		p.Legend.Add("E = "+sol.Label(), line)
	}
	return p, nil
}

// ScanChart plots sign(ψ)·log10(1+|ψ(xmax)|) over the coarse sweep.
func ScanChart(r *store.Result) (*plot.Plot, error) {
	if r == nil {
		return nil, store.ErrEmpty
	}
	if len(r.Scan) == 0 {
		return nil, fmt.Errorf("result has no sweep data")
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("boundary value scan: %s (%s)", r.Shape, r.Scheme)
	p.X.Label.Text = "E"
	p.Y.Label.Text = "sign·log10(1+|ψ(xmax)|)"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, 0, len(r.Scan))
	for _, s := range r.Scan {
		if math.IsNaN(s.Boundary) || math.IsInf(s.Boundary, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: s.Energy, Y: math.Copysign(math.Log10(1+math.Abs(s.Boundary)), s.Boundary)})
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	p.Add(line)

	if len(r.Solutions) > 0 {
		roots := make(plotter.XYs, len(r.Solutions))
		for i, s := range r.Solutions {
			roots[i] = plotter.XY{X: s.Energy}
		}
		sc, err := plotter.NewScatter(roots)
		if err != nil {
			return nil, err
		}
		sc.Color = plotutil.Color(1)
		p.Add(sc)
		p.Legend.Add("eigenvalues", sc)
	}
	return p, nil
}

// Save writes p in the format implied by the file extension.
func Save(p *plot.Plot, path string, width, height vg.Length) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !formats[ext] {
		return fmt.Errorf("unsupported chart format %q", ext)
	}
	if width == 0 {
		width = DefaultWidth
	}
	if height == 0 {
		height = DefaultHeight
	}
	return p.Save(width, height, path)
}

// levelAmplitude keeps neighbouring wavefunctions from overlapping.
func levelAmplitude(energies []float64) float64 {
	gap := math.Inf(1)
	for i := 1; i < len(energies); i++ {
		gap = math.Min(gap, math.Abs(energies[i]-energies[i-1]))
	}
	if math.IsInf(gap, 1) || gap == 0 {
		if len(energies) == 1 && energies[0] != 0 {
			return math.Abs(energies[0]) * 0.4
		}
		return 1
	}
	return gap * 0.4
}

func xys(x, y []float64, ceiling float64) plotter.XYs {
	stride := max(1, len(x)/MaxPlotPoints)
	pts := make(plotter.XYs, 0, len(x)/stride+1)
	for i := 0; i < len(x); i += stride {
		pts = append(pts, plotter.XY{X: x[i], Y: math.Min(y[i], ceiling)})
	}
	if last := len(x) - 1; last >= 0 && last%stride != 0 {
		pts = append(pts, plotter.XY{X: x[last], Y: math.Min(y[last], ceiling)})
	}
	return pts
}
