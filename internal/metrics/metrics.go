// Package metrics collects statistics about an eigenvalue search through
// the eigen.Observer hooks.
package metrics

import (
	"math"
	"sync"

	"github.com/san-kum/schrodsim/internal/eigen"
)

// Metric is a single named figure computed from a search.
type Metric interface {
	eigen.Observer
	Name() string
	Value() float64
	Reset()
}

func Defaults() []Metric {
	return []Metric{
		NewResidual(),
		NewConvergence(),
		NewRefineCost(),
	}
}

// Residual tracks the largest |ψ(xMax)| among accepted states.
type Residual struct {
	name string
	mu   sync.Mutex
	max  float64
}

func NewResidual() *Residual { return &Residual{name: "max_residual"} }

func (r *Residual) Name() string { return r.name }

func (r *Residual) OnSample(eigen.SweepPoint) {}

func (r *Residual) OnRefine(eigen.RefineStep) {}

func (r *Residual) OnAccept(sol eigen.Solution, duplicate bool) {
	if duplicate {
		return
	}
	r.mu.Lock()
	r.max = math.Max(r.max, math.Abs(sol.BoundaryResidual))
	r.mu.Unlock()
}

func (r *Residual) Value() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.max
}

func (r *Residual) Reset() {
	r.mu.Lock()
	r.max = 0
	r.mu.Unlock()
}

// Convergence is the fraction of accepted states whose refinement
// converged. It is 1 when nothing was accepted.
type Convergence struct {
	name      string
	mu        sync.Mutex
	accepted  int
	converged int
}

func NewConvergence() *Convergence { return &Convergence{name: "converged_fraction"} }

func (c *Convergence) Name() string { return c.name }

func (c *Convergence) OnSample(eigen.SweepPoint) {}

func (c *Convergence) OnRefine(eigen.RefineStep) {}

func (c *Convergence) OnAccept(sol eigen.Solution, duplicate bool) {
	if duplicate {
		return
	}
	c.mu.Lock()
	c.accepted++
	if sol.Converged {
		c.converged++
	}
	c.mu.Unlock()
}

func (c *Convergence) Value() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accepted == 0 {
		return 1.0
	}
	return float64(c.converged) / float64(c.accepted)
}

func (c *Convergence) Reset() {
	c.mu.Lock()
	c.accepted, c.converged = 0, 0
	c.mu.Unlock()
}

// RefineCost is the mean number of false-position iterations per bracket.
type RefineCost struct {
	name       string
	mu         sync.Mutex
	brackets   int
	iterations int
}

func NewRefineCost() *RefineCost { return &RefineCost{name: "iterations_per_bracket"} }

func (r *RefineCost) Name() string { return r.name }

func (r *RefineCost) OnSample(eigen.SweepPoint) {}

func (r *RefineCost) OnRefine(step eigen.RefineStep) {
	r.mu.Lock()
	if step.Iteration == 1 {
		r.brackets++
	}
	r.iterations++
	r.mu.Unlock()
}

func (r *RefineCost) OnAccept(eigen.Solution, bool) {}

func (r *RefineCost) Value() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.brackets == 0 {
		return 0
	}
	return float64(r.iterations) / float64(r.brackets)
}

func (r *RefineCost) Reset() {
	r.mu.Lock()
	r.brackets, r.iterations = 0, 0
	r.mu.Unlock()
}
