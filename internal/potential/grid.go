package potential

import (
	"fmt"
	"math"

	"github.com/san-kum/schrodsim/internal/dynamo"
)

// MaxSamples bounds the number of grid samples a single profile may hold.
const MaxSamples = 20_000_000

type Grid struct {
	XMin float64 `json:"x_min" yaml:"x_min"`
	XMax float64 `json:"x_max" yaml:"x_max"`
	Step float64 `json:"x_step" yaml:"x_step"`
}

func (g Grid) Validate() error {
	if math.IsNaN(g.XMin) || math.IsNaN(g.XMax) || math.IsNaN(g.Step) ||
		math.IsInf(g.XMin, 0) || math.IsInf(g.XMax, 0) || math.IsInf(g.Step, 0) {
		return fmt.Errorf("%w: grid bounds must be finite (x_min=%g, x_max=%g, x_step=%g)",
			dynamo.ErrParameterBounds, g.XMin, g.XMax, g.Step)
	}
	if g.Step <= 0 {
		return fmt.Errorf("%w: x step must be positive, got %g", dynamo.ErrParameterBounds, g.Step)
	}
	if g.XMax <= g.XMin {
		return fmt.Errorf("%w: x_max (%g) must exceed x_min (%g)", dynamo.ErrParameterBounds, g.XMax, g.XMin)
	}
	if (g.XMax-g.XMin)/g.Step > MaxSamples {
		return fmt.Errorf("%w: grid would need more than %d samples", dynamo.ErrParameterBounds, MaxSamples)
	}
	return nil
}

func (g Grid) Span() float64 { return g.XMax - g.XMin }

func (g Grid) Mid() float64 { return (g.XMin + g.XMax) / 2.0 }

// At returns the position a given fraction of the way across the grid.
func (g Grid) At(fraction float64) float64 { return g.XMin + g.Span()*fraction }

// Positions returns the sample positions, clamps included. The grid must be valid.
func (g Grid) Positions() []float64 {
	limit := g.XMax - g.Step/2.0
	xs := make([]float64, 0, int(g.Span()/g.Step)+2)
	xs = append(xs, g.XMin)
	for i := 1; ; i++ {
		x := g.XMin + float64(i)*g.Step
		if x > limit {
			break
		}
		xs = append(xs, x)
	}
	return append(xs, g.XMax)
}
