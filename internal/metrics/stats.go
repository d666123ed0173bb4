package metrics

import (
	"sync"

	"github.com/san-kum/schrodsim/internal/eigen"
)

var _ eigen.Observer = (*Stats)(nil)

// Stats counts search events. Progress reports how far the coarse sweep has
// got, for display while a calculation runs in the background.
type Stats struct {
	mu         sync.Mutex
	total      int
	samples    int
	refines    int
	accepted   int
	duplicates int
	lastEnergy float64
}

func NewStats(sweep eigen.Sweep) *Stats {
	s := &Stats{}
	if sweep.Validate() == nil {
		s.total = sweep.Len()
	}
	return s
}

func (s *Stats) OnSample(p eigen.SweepPoint) {
	s.mu.Lock()
	s.samples++
	s.lastEnergy = p.Energy
	s.mu.Unlock()
}

func (s *Stats) OnRefine(eigen.RefineStep) {
	s.mu.Lock()
	s.refines++
	s.mu.Unlock()
}

func (s *Stats) OnAccept(_ eigen.Solution, duplicate bool) {
	s.mu.Lock()
	if duplicate {
		s.duplicates++
	} else {
		s.accepted++
	}
	s.mu.Unlock()
}

type Snapshot struct {
	Samples    int
	Total      int
	Refines    int
	Accepted   int
	Duplicates int
	LastEnergy float64
}

func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Samples:    s.samples,
		Total:      s.total,
		Refines:    s.refines,
		Accepted:   s.accepted,
		Duplicates: s.duplicates,
		LastEnergy: s.lastEnergy,
	}
}

// Progress is the completed fraction of the coarse sweep, in [0, 1].
func (s *Stats) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.total == 0 {
		return 0
	}
	return min(float64(s.samples)/float64(s.total), 1)
}

func (s *Stats) Reset(sweep eigen.Sweep) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples, s.refines, s.accepted, s.duplicates = 0, 0, 0, 0
	s.lastEnergy = 0
	s.total = 0
	if sweep.Validate() == nil {
		s.total = sweep.Len()
	}
}
