package integrators

import "github.com/san-kum/schrodsim/internal/dynamo"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

// Step advances every component with the derivative taken at the start of
// the interval, so the curvature used is the previous sample's.
func (e *Euler) Step(sys dynamo.System, x dynamo.State, pos float64, h float64) dynamo.State {
	dx := sys.Derive(x, pos)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + h*dx[i]
	}
	return result
}
