package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/schrodsim/internal/dynamo"
)

// oscillator is ψ″ = -ψ, the free-particle equation with k = 1.
type oscillator struct{}

func (o *oscillator) Derive(x dynamo.State, pos float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (o *oscillator) StateDim() int { return 2 }

func run(integ dynamo.Integrator, steps int, h float64) dynamo.State {
	x := dynamo.State{0.0, 1.0}
	for i := 0; i < steps; i++ {
		x = integ.Step(&oscillator{}, x, float64(i)*h, h)
	}
	return x
}

func TestRK4Accuracy(t *testing.T) {
	h := 0.01
	steps := 100
	x := run(NewRK4(), steps, h)

	expectedPsi := math.Sin(float64(steps) * h)
	expectedSlope := math.Cos(float64(steps) * h)

	if math.Abs(x[0]-expectedPsi) > 1e-8 {
		t.Errorf("psi error too large: got %.10f, expected %.10f", x[0], expectedPsi)
	}
	if math.Abs(x[1]-expectedSlope) > 1e-8 {
		t.Errorf("slope error too large: got %.10f, expected %.10f", x[1], expectedSlope)
	}
}

func TestEulerFirstStep(t *testing.T) {
	x := NewEuler().Step(&oscillator{}, dynamo.State{0.0, 1.0}, 0, 0.1)

	if x[0] != 0.1 {
		t.Errorf("expected psi 0.1, got %f", x[0])
	}
	if x[1] != 1.0 {
		t.Errorf("expected slope unchanged at 1.0, got %f", x[1])
	}
}

func TestIntegratorsOrdering(t *testing.T) {
	h := 0.01
	steps := 300
	exact := math.Sin(float64(steps) * h)

	errEuler := math.Abs(run(NewEuler(), steps, h)[0] - exact)
	errVerlet := math.Abs(run(NewVerlet(), steps, h)[0] - exact)
	errRK4 := math.Abs(run(NewRK4(), steps, h)[0] - exact)

	if !(errRK4 < errVerlet && errVerlet < errEuler) {
		t.Errorf("expected rk4 < verlet < euler error, got %e, %e, %e", errRK4, errVerlet, errEuler)
	}
}

func TestStepDoesNotMutateInput(t *testing.T) {
	integs := map[string]dynamo.Integrator{
		"euler":  NewEuler(),
		"rk4":    NewRK4(),
		"verlet": NewVerlet(),
	}

	for name, integ := range integs {
		x := dynamo.State{0.5, -0.5}
		integ.Step(&oscillator{}, x, 0, 0.1)
		if x[0] != 0.5 || x[1] != -0.5 {
			t.Errorf("%s mutated its input state: %v", name, x)
		}
	}
}
