package shooting

import (
	"github.com/san-kum/schrodsim/internal/dynamo"
	"github.com/san-kum/schrodsim/internal/potential"
)

// Coupling is 2m/ħ², the factor between (V − E)ψ and ψ″.
const Coupling = 2.0 / potential.HBarSquaredOverM

// Schrodinger is the stationary equation ψ″ = Coupling·(V(x) − E)·ψ written
// as the first-order pair (ψ, ψ') over a single grid interval. V is linearly
// interpolated between the interval's end samples.
type Schrodinger struct {
	Energy   float64
	Coupling float64

	x0, h  float64
	v0, v1 float64
}

func NewSchrodinger(energy float64) *Schrodinger {
	return &Schrodinger{Energy: energy, Coupling: Coupling}
}

func (s *Schrodinger) StateDim() int { return 2 }

// SetInterval points the system at the interval starting at x0 with width h.
func (s *Schrodinger) SetInterval(x0, h, v0, v1 float64) {
	s.x0, s.h, s.v0, s.v1 = x0, h, v0, v1
}

func (s *Schrodinger) Potential(pos float64) float64 {
	if s.h == 0 || pos == s.x0 {
		return s.v0
	}
	return s.v0 + (s.v1-s.v0)*(pos-s.x0)/s.h
}

// Curvature returns ψ″ for a given ψ and potential value.
func (s *Schrodinger) Curvature(psi, v float64) float64 {
	return (v - s.Energy) * s.Coupling * psi
}

func (s *Schrodinger) Derive(x dynamo.State, pos float64) dynamo.State {
	return dynamo.State{x[1], s.Curvature(x[0], s.Potential(pos))}
}
