package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/san-kum/schrodsim/internal/eigen"
	"github.com/san-kum/schrodsim/internal/potential"
	"github.com/san-kum/schrodsim/internal/shooting"
)

var (
	ErrEmpty       = errors.New("no result available")
	ErrNoSuchState = errors.New("eigenstate index out of range")
)

// Result is one finished calculation. It is never mutated once published.
type Result struct {
	Shape     string
	Scheme    shooting.Scheme
	Grid      potential.Grid
	X         []float64
	Potential []float64
	Sweep     eigen.Sweep
	Options   eigen.Options
	Scan      []eigen.SweepPoint
	Solutions []eigen.Solution
	Started   time.Time
	Elapsed   time.Duration
}

func (r *Result) Energies() []float64 {
	es := make([]float64, len(r.Solutions))
	for i, s := range r.Solutions {
		es[i] = s.Energy
	}
	return es
}

// Curve is a plottable series handed to the presentation layer.
type Curve struct {
	Label string
	X     []float64
	Y     []float64
}

func (c Curve) Len() int { return len(c.Y) }

// Store holds the latest Result. The worker publishes with Replace while the
// presentation reads; all access goes through the lock.
type Store struct {
	mu     sync.RWMutex
	result *Result
}

func New() *Store {
	return &Store{}
}

func (s *Store) Replace(r *Result) {
	s.mu.Lock()
	s.result = r
	s.mu.Unlock()
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.result = nil
	s.mu.Unlock()
}

func (s *Store) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result == nil
}

// Snapshot returns a deep copy of the current result, or nil.
func (s *Store) Snapshot() *Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return nil
	}
	r := *s.result
	r.X = clone(s.result.X)
	r.Potential = clone(s.result.Potential)
	r.Scan = append([]eigen.SweepPoint(nil), s.result.Scan...)
	r.Solutions = make([]eigen.Solution, len(s.result.Solutions))
	for i, sol := range s.result.Solutions {
		sol.Wavefunction = clone(sol.Wavefunction)
		sol.Positions = r.X
		r.Solutions[i] = sol
	}
	return &r
}

func (s *Store) X() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return []float64{}
	}
	return clone(s.result.X)
}

func (s *Store) Potential() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return []float64{}
	}
	return clone(s.result.Potential)
}

func (s *Store) Wavefunctions() [][]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return [][]float64{}
	}
	out := make([][]float64, len(s.result.Solutions))
	for i, sol := range s.result.Solutions {
		out[i] = clone(sol.Wavefunction)
	}
	return out
}

func (s *Store) SelectPotential() (Curve, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return Curve{}, ErrEmpty
	}
	return Curve{
		Label: "V(x)",
		X:     clone(s.result.X),
		Y:     clone(s.result.Potential),
	}, nil
}

func (s *Store) SelectEigenstate(i int) (Curve, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return Curve{}, ErrEmpty
	}
	if i < 0 || i >= len(s.result.Solutions) {
		return Curve{}, fmt.Errorf("%w: %d of %d", ErrNoSuchState, i, len(s.result.Solutions))
	}
	sol := s.result.Solutions[i]
	return Curve{
		Label: "E = " + sol.Label(),
		X:     clone(s.result.X),
		Y:     clone(sol.Wavefunction),
	}, nil
}

// EnergyLabels lists the accepted energies to three decimals.
func (s *Store) EnergyLabels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return []string{}
	}
	labels := make([]string, len(s.result.Solutions))
	for i, sol := range s.result.Solutions {
		labels[i] = sol.Label()
	}
	return labels
}

func clone(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return append([]float64(nil), v...)
}
