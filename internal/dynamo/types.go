package dynamo

import "math"

type State []float64

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is a first-order ODE dX/dx = f(X, x). The independent variable is
// a position along the grid.
type System interface {
	Derive(x State, pos float64) State
	StateDim() int
}

type Integrator interface {
	Step(sys System, x State, pos float64, h float64) State
}
