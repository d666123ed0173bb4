package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/schrodsim/internal/dynamo"
)

func checkLengths(x, psi []float64) error {
	if len(x) != len(psi) {
		return fmt.Errorf("%w: %d positions, %d samples", dynamo.ErrDimensionMismatch, len(x), len(psi))
	}
	if len(x) < 2 {
		return fmt.Errorf("%w: need at least 2 samples, got %d", dynamo.ErrParameterBounds, len(x))
	}
	return nil
}

// Density returns |ψ|².
func Density(psi []float64) []float64 {
	rho := make([]float64, len(psi))
	floats.MulTo(rho, psi, psi)
	return rho
}

// Norm returns ∫|ψ|² dx.
func Norm(x, psi []float64) (float64, error) {
	if err := checkLengths(x, psi); err != nil {
		return 0, err
	}
	return integrate.Trapezoidal(x, Density(psi)), nil
}

// Normalize returns a copy of ψ scaled to unit norm.
func Normalize(x, psi []float64) ([]float64, error) {
	n, err := Norm(x, psi)
	if err != nil {
		return nil, err
	}
	if !(n > 0) || math.IsInf(n, 0) {
		return nil, fmt.Errorf("%w: cannot normalize, norm is %g", dynamo.ErrInvalidState, n)
	}
	out := append([]float64(nil), psi...)
	floats.Scale(1/math.Sqrt(n), out)
	return out, nil
}

// CountNodes counts sign changes strictly inside the grid. The first and
// last samples are the boundary and never count.
func CountNodes(psi []float64) int {
	nodes := 0
	prev := 0.0
	for i := 1; i < len(psi)-1; i++ {
		v := psi[i]
		if v == 0 {
			continue
		}
		if prev != 0 && (v < 0) != (prev < 0) {
			nodes++
		}
		prev = v
	}
	return nodes
}

// Expectation returns ⟨f(x)⟩ for a state of any normalization.
func Expectation(x, psi []float64, f func(float64) float64) (float64, error) {
	n, err := Norm(x, psi)
	if err != nil {
		return 0, err
	}
	if !(n > 0) {
		return 0, fmt.Errorf("%w: zero norm", dynamo.ErrInvalidState)
	}
	w := Density(psi)
	for i, xi := range x {
		w[i] *= f(xi)
	}
	return integrate.Trapezoidal(x, w) / n, nil
}

// Spread returns ⟨x⟩ and Δx = sqrt(⟨x²⟩ − ⟨x⟩²).
func Spread(x, psi []float64) (mean, width float64, err error) {
	mean, err = Expectation(x, psi, func(v float64) float64 { return v })
	if err != nil {
		return 0, 0, err
	}
	sq, err := Expectation(x, psi, func(v float64) float64 { return v * v })
	if err != nil {
		return 0, 0, err
	}
	return mean, math.Sqrt(math.Max(sq-mean*mean, 0)), nil
}

// OverlapMatrix returns ⟨ψi|ψj⟩ of the normalized states. Bound states of
// one profile should give a matrix close to the identity.
func OverlapMatrix(x []float64, states [][]float64) (*mat.SymDense, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("%w: no states", dynamo.ErrParameterBounds)
	}
	normed := make([][]float64, len(states))
	for i, s := range states {
		n, err := Normalize(x, s)
		if err != nil {
			return nil, fmt.Errorf("state %d: %w", i, err)
		}
		normed[i] = n
	}

	m := mat.NewSymDense(len(states), nil)
	prod := make([]float64, len(x))
	for i := range normed {
		for j := i; j < len(normed); j++ {
			floats.MulTo(prod, normed[i], normed[j])
			m.SetSym(i, j, integrate.Trapezoidal(x, prod))
		}
	}
	return m, nil
}
