package shooting

import (
	"fmt"
	"math"

	"github.com/san-kum/schrodsim/internal/dynamo"
	"github.com/san-kum/schrodsim/internal/potential"
)

// Initial conditions at the left boundary. The slope is arbitrary; the
// trajectory is never normalized here.
const (
	InitialPsi   = 0.0
	InitialSlope = 1.0
)

// Trajectory is the raw shooting solution for one trial energy. X is shared
// with the profile it was integrated over and must be treated as read-only.
type Trajectory struct {
	Energy         float64
	Scheme         Scheme
	X              []float64
	Psi            []float64
	PsiPrime       []float64
	PsiDoublePrime []float64
	Boundary       float64
}

func (t *Trajectory) Len() int { return len(t.Psi) }

// Integrate shoots across p at the given energy.
func Integrate(p *potential.Profile, energy float64, scheme Scheme) (*Trajectory, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil profile", dynamo.ErrDimensionMismatch)
	}
	return IntegrateSamples(p.X, p.V, p.Grid.Step, energy, scheme)
}

// IntegrateSamples shoots across raw position and potential samples. Each
// step uses the actual spacing x[i] − x[i−1]; step is the nominal grid step
// and must be positive.
func IntegrateSamples(x, v []float64, step, energy float64, scheme Scheme) (*Trajectory, error) {
	if len(x) != len(v) {
		return nil, fmt.Errorf("%w: %d positions vs %d potential samples", dynamo.ErrDimensionMismatch, len(x), len(v))
	}
	if len(x) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 samples, got %d", dynamo.ErrDimensionMismatch, len(x))
	}
	if !(step > 0) {
		return nil, fmt.Errorf("%w: x step must be positive, got %g", dynamo.ErrParameterBounds, step)
	}
	if math.IsNaN(energy) || math.IsInf(energy, 0) {
		return nil, fmt.Errorf("%w: energy must be finite, got %g", dynamo.ErrParameterBounds, energy)
	}
	for i := 1; i < len(x); i++ {
		if !(x[i] > x[i-1]) {
			return nil, fmt.Errorf("%w: positions not strictly increasing at index %d", dynamo.ErrParameterBounds, i)
		}
	}

	integ, err := scheme.integrator()
	if err != nil {
		return nil, err
	}

	n := len(x)
	traj := &Trajectory{
		Energy:         energy,
		Scheme:         scheme,
		X:              x,
		Psi:            make([]float64, n),
		PsiPrime:       make([]float64, n),
		PsiDoublePrime: make([]float64, n),
	}

	sys := NewSchrodinger(energy)
	state := dynamo.State{InitialPsi, InitialSlope}

	traj.Psi[0] = state[0]
	traj.PsiPrime[0] = state[1]
	traj.PsiDoublePrime[0] = sys.Curvature(state[0], v[0])

	for i := 1; i < n; i++ {
		h := x[i] - x[i-1]
		sys.SetInterval(x[i-1], h, v[i-1], v[i])
		state = integ.Step(sys, state, x[i-1], h)

		traj.Psi[i] = state[0]
		traj.PsiPrime[i] = state[1]
		traj.PsiDoublePrime[i] = sys.Curvature(state[0], v[i])
	}

	traj.Boundary = traj.Psi[n-1]
	return traj, nil
}

// Shooter integrates a fixed profile with a fixed scheme.
type Shooter struct {
	Profile *potential.Profile
	Scheme  Scheme
}

func NewShooter(p *potential.Profile, scheme Scheme) *Shooter {
	return &Shooter{Profile: p, Scheme: scheme}
}

func (s *Shooter) Shoot(energy float64) (*Trajectory, error) {
	return Integrate(s.Profile, energy, s.Scheme)
}
