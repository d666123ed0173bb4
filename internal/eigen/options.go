package eigen

import (
	"fmt"
	"math"

	"github.com/san-kum/schrodsim/internal/dynamo"
)

const (
	DefaultPsiPrecision      = 1e-5
	DefaultIntervalPrecision = 1e-5
	DefaultMaxIterations     = 2000
	DefaultDedupTolerance    = 1e-1

	// MaxSweepPoints bounds the coarse sweep of a single search.
	MaxSweepPoints = 10_000_000
)

// Options holds the refinement tolerances. DefaultOptions is the only place
// the defaults are applied.
type Options struct {
	PsiPrecision      float64 `json:"psi_precision" yaml:"psi"`
	IntervalPrecision float64 `json:"interval_precision" yaml:"interval"`
	MaxIterations     int     `json:"max_iterations" yaml:"max_iterations"`
	DedupTolerance    float64 `json:"dedup_tolerance" yaml:"dedup"`
}

func DefaultOptions() Options {
	return Options{
		PsiPrecision:      DefaultPsiPrecision,
		IntervalPrecision: DefaultIntervalPrecision,
		MaxIterations:     DefaultMaxIterations,
		DedupTolerance:    DefaultDedupTolerance,
	}
}

func (o Options) Validate() error {
	if !(o.PsiPrecision > 0) || math.IsInf(o.PsiPrecision, 0) {
		return fmt.Errorf("%w: psi precision must be positive, got %g", dynamo.ErrParameterBounds, o.PsiPrecision)
	}
	if !(o.IntervalPrecision > 0) || math.IsInf(o.IntervalPrecision, 0) {
		return fmt.Errorf("%w: interval precision must be positive, got %g", dynamo.ErrParameterBounds, o.IntervalPrecision)
	}
	if o.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations must be positive, got %d", dynamo.ErrParameterBounds, o.MaxIterations)
	}
	if o.DedupTolerance < 0 || math.IsNaN(o.DedupTolerance) {
		return fmt.Errorf("%w: dedup tolerance must be non-negative, got %g", dynamo.ErrParameterBounds, o.DedupTolerance)
	}
	return nil
}

// Sweep is the coarse energy scan: EMin, EMin+EStep, ... up to EMax inclusive.
type Sweep struct {
	EMin  float64 `json:"e_min" yaml:"e_min"`
	EMax  float64 `json:"e_max" yaml:"e_max"`
	EStep float64 `json:"e_step" yaml:"e_step"`
}

func (s Sweep) Validate() error {
	for _, v := range []float64{s.EMin, s.EMax, s.EStep} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: energy bounds must be finite (e_min=%g, e_max=%g, e_step=%g)",
				dynamo.ErrParameterBounds, s.EMin, s.EMax, s.EStep)
		}
	}
	if s.EStep <= 0 {
		return fmt.Errorf("%w: energy step must be positive, got %g", dynamo.ErrParameterBounds, s.EStep)
	}
	if s.EMax < s.EMin {
		return fmt.Errorf("%w: e_max (%g) must not be below e_min (%g)", dynamo.ErrParameterBounds, s.EMax, s.EMin)
	}
	if (s.EMax-s.EMin)/s.EStep > MaxSweepPoints {
		return fmt.Errorf("%w: sweep would need more than %d points", dynamo.ErrParameterBounds, MaxSweepPoints)
	}
	return nil
}

// Len is the number of sweep points. The sweep must be valid.
func (s Sweep) Len() int {
	return int(math.Floor((s.EMax-s.EMin)/s.EStep+1e-9)) + 1
}

// At is the k-th sweep energy. Each point is computed from its index, not by
// accumulation, so EMax is hit exactly when the span is a multiple of EStep.
func (s Sweep) At(k int) float64 {
	return s.EMin + float64(k)*s.EStep
}

// Energies lists the sweep points.
func (s Sweep) Energies() []float64 {
	es := make([]float64, s.Len())
	for k := range es {
		es[k] = s.At(k)
	}
	return es
}
