package potential

import (
	"errors"
	"fmt"

	"github.com/san-kum/schrodsim/internal/dynamo"
)

// HBarSquaredOverM is ħ²/m in the solver's unit system.
const HBarSquaredOverM = 1.0

var ErrUnresolvedShape = errors.New("potential: shape must be resolved before building")

// Profile is a potential sampled on a grid. X and V are owned by the
// profile and must not be modified after Build returns.
type Profile struct {
	Shape Shape
	Grid  Grid
	X     []float64
	V     []float64
}

func (p *Profile) Len() int { return len(p.X) }

func (p *Profile) Validate() error {
	if len(p.X) != len(p.V) {
		return fmt.Errorf("%w: %d positions vs %d potential samples", dynamo.ErrDimensionMismatch, len(p.X), len(p.V))
	}
	if len(p.X) < 2 {
		return fmt.Errorf("%w: need at least 2 samples, got %d", dynamo.ErrDimensionMismatch, len(p.X))
	}
	return nil
}

// Build samples shape on grid. Shapes that carry their own grid ignore the
// one passed in.
func Build(shape Shape, grid Grid) (*Profile, error) {
	if shape == nil {
		return nil, fmt.Errorf("%w: nil shape", ErrUnresolvedShape)
	}
	return shape.build(grid)
}

// sample evaluates fn on every interior position and leaves both clamps at 0.
func sample(shape Shape, grid Grid, fn func(x float64) float64) (*Profile, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	xs := grid.Positions()
	vs := make([]float64, len(xs))
	for i := 1; i < len(xs)-1; i++ {
		vs[i] = fn(xs[i])
	}

	return &Profile{Shape: shape, Grid: grid, X: xs, V: vs}, nil
}
