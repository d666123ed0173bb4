package eigen

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/schrodsim/internal/dynamo"
	"github.com/san-kum/schrodsim/internal/potential"
	"github.com/san-kum/schrodsim/internal/shooting"
)

type Searcher struct {
	opts      Options
	logger    *slog.Logger
	observers []Observer
}

func NewSearcher(opts Options, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{opts: opts, logger: logger}
}

func (s *Searcher) Options() Options { return s.opts }

func (s *Searcher) AddObserver(o Observer) {
	if o != nil {
		s.observers = append(s.observers, o)
	}
}

// FindEigenstates is a shorthand for a default Searcher over a Shooter built
// from p.
func FindEigenstates(ctx context.Context, p *potential.Profile, sweep Sweep, scheme shooting.Scheme) ([]Solution, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return NewSearcher(DefaultOptions(), nil).FindEigenstates(ctx, shooting.NewShooter(p, scheme), sweep)
}

func (s *Searcher) FindEigenstates(ctx context.Context, shooter Shooter, sweep Sweep) ([]Solution, error) {
	r, err := s.Search(ctx, shooter, sweep)
	if err != nil {
		return nil, err
	}
	return r.Solutions, nil
}

// Scan runs the coarse sweep only.
func (s *Searcher) Scan(ctx context.Context, shooter Shooter, sweep Sweep) ([]SweepPoint, error) {
	if err := sweep.Validate(); err != nil {
		return nil, err
	}
	n := sweep.Len()
	points := make([]SweepPoint, 0, n)
	for i := 0; i < n; i++ {
		e := sweep.At(i)
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		traj, err := shooter.Shoot(e)
		if err != nil {
			return nil, fmt.Errorf("sweep: %w", &dynamo.StepError{Step: i, Position: e, Wrapped: err})
		}
		pt := SweepPoint{Energy: e, Boundary: traj.Boundary}
		points = append(points, pt)
		s.notifySample(pt)
	}
	return points, nil
}

// Search sweeps, refines every bracket as it is found, and deduplicates the
// roots. Solutions come back in ascending energy order.
func (s *Searcher) Search(ctx context.Context, shooter Shooter, sweep Sweep) (*Report, error) {
	if err := s.opts.Validate(); err != nil {
		return nil, err
	}
	if err := sweep.Validate(); err != nil {
		return nil, err
	}

	n := sweep.Len()
	report := &Report{Sweep: make([]SweepPoint, 0, n)}
	s.logger.Debug("eigen search started",
		"e_min", sweep.EMin, "e_max", sweep.EMax, "e_step", sweep.EStep, "points", n)

	var prev SweepPoint
	havePrev := false
	for i := 0; i < n; i++ {
		e := sweep.At(i)
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		traj, err := shooter.Shoot(e)
		if err != nil {
			return nil, fmt.Errorf("sweep: %w", &dynamo.StepError{Step: i, Position: e, Wrapped: err})
		}
		pt := SweepPoint{Energy: e, Boundary: traj.Boundary}
		report.Sweep = append(report.Sweep, pt)
		s.notifySample(pt)

		switch {
		case pt.Boundary == 0:
			s.accept(report, Solution{
				Energy:       e,
				Wavefunction: traj.Psi,
				Positions:    traj.X,
				Converged:    true,
			})
		case havePrev && opposite(prev.Boundary, pt.Boundary):
			b := Bracket{
				LeftEnergy: prev.Energy, LeftPsi: prev.Boundary,
				RightEnergy: pt.Energy, RightPsi: pt.Boundary,
			}
			s.logger.Debug("bracket found", "left", b.LeftEnergy, "right", b.RightEnergy)
			sol, err := s.Refine(ctx, shooter, b)
			if err != nil {
				return nil, err
			}
			s.accept(report, sol)
		}
		prev, havePrev = pt, true
	}

	s.logger.Debug("eigen search finished",
		"solutions", len(report.Solutions), "duplicates", report.Duplicates)
	return report, nil
}

// Refine runs false position on a single bracket.
func (s *Searcher) Refine(ctx context.Context, shooter Shooter, b Bracket) (Solution, error) {
	if !opposite(b.LeftPsi, b.RightPsi) {
		return Solution{}, fmt.Errorf("%w: bracket [%g, %g] has no sign change",
			dynamo.ErrParameterBounds, b.LeftEnergy, b.RightEnergy)
	}

	var (
		last       *shooting.Trajectory
		testEnergy float64
		iterations int
		converged  bool
	)

	for iterations < s.opts.MaxIterations {
		if err := checkContext(ctx); err != nil {
			return Solution{}, err
		}

		next := b.FalsePosition()
		if !(next > b.LeftEnergy && next < b.RightEnergy) {
			// the secant landed on an endpoint; the bracket cannot shrink further
			testEnergy = b.closest()
			converged = b.Width() < s.opts.IntervalPrecision ||
				math.Min(math.Abs(b.LeftPsi), math.Abs(b.RightPsi)) < s.opts.PsiPrecision
			break
		}
		testEnergy = next

		traj, err := shooter.Shoot(testEnergy)
		if err != nil {
			return Solution{}, fmt.Errorf("refine: %w", &dynamo.StepError{Step: iterations + 1, Position: testEnergy, Wrapped: err})
		}
		last = traj
		iterations++
		psi := traj.Boundary

		if !(dynamo.State{psi}).IsValid() {
			s.notifyRefine(RefineStep{Iteration: iterations, Before: b, After: b, TestEnergy: testEnergy, TestPsi: psi})
			break
		}

		before := b
		if (psi < 0) == (b.LeftPsi < 0) {
			b.LeftEnergy, b.LeftPsi = testEnergy, psi
		} else {
			b.RightEnergy, b.RightPsi = testEnergy, psi
		}
		s.notifyRefine(RefineStep{Iteration: iterations, Before: before, After: b, TestEnergy: testEnergy, TestPsi: psi})

		if math.Abs(psi) < s.opts.PsiPrecision || b.Width() < s.opts.IntervalPrecision {
			converged = true
			break
		}
	}

	if last == nil || last.Energy != testEnergy {
		traj, err := shooter.Shoot(testEnergy)
		if err != nil {
			return Solution{}, fmt.Errorf("accept at E=%g: %w", testEnergy, err)
		}
		last = traj
	}

	sol := Solution{
		Energy:           testEnergy,
		Wavefunction:     last.Psi,
		Positions:        last.X,
		BoundaryResidual: last.Boundary,
		Iterations:       iterations,
		Converged:        converged,
	}
	if !converged {
		s.logger.Warn("bracket refinement did not converge",
			"energy", sol.Energy, "residual", sol.BoundaryResidual, "iterations", iterations)
	}
	return sol, nil
}

func (s *Searcher) accept(r *Report, sol Solution) {
	dup := false
	for _, have := range r.Solutions {
		if math.Abs(have.Energy-sol.Energy) < s.opts.DedupTolerance {
			dup = true
			break
		}
	}
	if dup {
		r.Duplicates++
		s.logger.Debug("duplicate root dropped", "energy", sol.Energy)
	} else {
		r.Solutions = append(r.Solutions, sol)
		s.logger.Debug("eigenstate accepted",
			"energy", sol.Energy, "residual", sol.BoundaryResidual, "iterations", sol.Iterations)
	}
	for _, o := range s.observers {
		o.OnAccept(sol, dup)
	}
}

func (s *Searcher) notifySample(p SweepPoint) {
	for _, o := range s.observers {
		o.OnSample(p)
	}
}

func (s *Searcher) notifyRefine(step RefineStep) {
	for _, o := range s.observers {
		o.OnRefine(step)
	}
}

// closest returns the endpoint with the smaller boundary value.
func (b Bracket) closest() float64 {
	if math.Abs(b.LeftPsi) <= math.Abs(b.RightPsi) {
		return b.LeftEnergy
	}
	return b.RightEnergy
}

// opposite reports a strict sign change between two finite values.
func opposite(a, b float64) bool {
	if !(dynamo.State{a, b}).IsValid() {
		return false
	}
	return (a < 0 && b > 0) || (a > 0 && b < 0)
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
	default:
		return nil
	}
}
