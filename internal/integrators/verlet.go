package integrators

import "github.com/san-kum/schrodsim/internal/dynamo"

// Verlet is velocity Verlet for second-order systems laid out as
// [positions..., velocities...] whose acceleration depends only on the
// positions and the independent variable.
type Verlet struct {
	scratch dynamo.State
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) ensureScratch(n int) {
	if len(v.scratch) != n {
		v.scratch = make(dynamo.State, n)
	}
}

func (v *Verlet) Step(sys dynamo.System, x dynamo.State, pos, h float64) dynamo.State {
	n := len(x)
	half := n / 2
	v.ensureScratch(n)

	result := make(dynamo.State, n)
	dx := sys.Derive(x, pos)
	h2 := h * h

	for i := 0; i < half; i++ {
		result[i] = x[i] + x[half+i]*h + 0.5*dx[half+i]*h2
	}

	for i := 0; i < half; i++ {
		v.scratch[i] = result[i]
		v.scratch[half+i] = x[half+i]
	}

	dxNew := sys.Derive(v.scratch, pos+h)

	halfH := 0.5 * h
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + (dx[half+i]+dxNew[half+i])*halfH
	}

	return result
}
