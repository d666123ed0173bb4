package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/schrodsim/internal/eigen"
	"github.com/san-kum/schrodsim/internal/store"
)

// PlotCurve renders c with asciigraph. Non-finite samples become gaps.
func PlotCurve(c store.Curve, width, height int) string {
	if c.Len() == 0 {
		return ""
	}
	caption := c.Label
	if len(c.X) > 0 {
		caption = fmt.Sprintf("%s   x ∈ [%.3g, %.3g]", c.Label, c.X[0], c.X[len(c.X)-1])
	}
	return asciigraph.Plot(finite(c.Y),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// ClipCurve limits y to [lo, hi] so a tall wall does not flatten the rest of
// the potential.
func ClipCurve(c store.Curve, lo, hi float64) store.Curve {
	out := store.Curve{Label: c.Label, X: c.X, Y: make([]float64, len(c.Y))}
	for i, v := range c.Y {
		out.Y[i] = math.Max(lo, math.Min(hi, v))
	}
	return out
}

// PlotScan shows the far-boundary value against trial energy. Values are
// compressed to sign(ψ)·log10(1+|ψ|) since they span many decades.
func PlotScan(points []eigen.SweepPoint, width, height int) string {
	if len(points) == 0 {
		return ""
	}
	ys := make([]float64, len(points))
	for i, p := range points {
		ys[i] = math.Copysign(math.Log10(1+math.Abs(p.Boundary)), p.Boundary)
	}
	caption := fmt.Sprintf("sign·log10(1+|ψ(xmax)|)   E ∈ [%g, %g]", points[0].Energy, points[len(points)-1].Energy)
	return asciigraph.Plot(finite(ys),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// Overlay draws the (clipped) potential and a wavefunction on one Braille
// canvas, each scaled to the full height.
func Overlay(x, v, psi []float64, width, height int) string {
	c := NewCanvas(width, height)
	if len(x) == 0 {
		return c.String()
	}
	c.Polyline(x, v, BoundsOf(x, v))
	if len(psi) == len(x) {
		c.Polyline(x, psi, BoundsOf(x, psi))
	}
	return c.String()
}

func finite(ys []float64) []float64 {
	out := make([]float64, len(ys))
	for i, v := range ys {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[i] = math.NaN()
			continue
		}
		out[i] = v
	}
	return out
}
