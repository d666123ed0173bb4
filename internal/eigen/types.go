package eigen

import (
	"fmt"
	"math"

	"github.com/san-kum/schrodsim/internal/shooting"
)

// Shooter integrates the wavefunction for a trial energy.
type Shooter interface {
	Shoot(energy float64) (*shooting.Trajectory, error)
}

type SweepPoint struct {
	Energy   float64 `json:"energy"`
	Boundary float64 `json:"boundary"`
}

// Bracket is an energy interval whose boundary values differ in sign.
type Bracket struct {
	LeftEnergy  float64
	LeftPsi     float64
	RightEnergy float64
	RightPsi    float64
}

func (b Bracket) Width() float64 { return math.Abs(b.RightEnergy - b.LeftEnergy) }

// FalsePosition returns the secant estimate of the root inside the bracket.
func (b Bracket) FalsePosition() float64 {
	return b.LeftEnergy - b.LeftPsi*(b.RightEnergy-b.LeftEnergy)/(b.RightPsi-b.LeftPsi)
}

// Solution is an accepted bound state. Positions is shared with the profile
// and must be treated as read-only.
type Solution struct {
	Energy           float64   `json:"energy"`
	Wavefunction     []float64 `json:"wavefunction"`
	Positions        []float64 `json:"-"`
	BoundaryResidual float64   `json:"boundary_residual"`
	Iterations       int       `json:"iterations"`
	Converged        bool      `json:"converged"`
}

// WithinTolerance reports whether the far-boundary residual is below tol.
func (s Solution) WithinTolerance(tol float64) bool {
	return math.Abs(s.BoundaryResidual) < tol
}

func (s Solution) Label() string { return fmt.Sprintf("%.3f", s.Energy) }

// Report is the outcome of a full search.
type Report struct {
	Sweep      []SweepPoint
	Solutions  []Solution
	Duplicates int
}

// RefineStep records one false-position iteration.
type RefineStep struct {
	Iteration  int
	Before     Bracket
	After      Bracket
	TestEnergy float64
	TestPsi    float64
}

type Observer interface {
	OnSample(p SweepPoint)
	OnRefine(step RefineStep)
	OnAccept(sol Solution, duplicate bool)
}
