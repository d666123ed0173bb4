package potential

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// Shape is one of the supported potential variants. The set is closed: only
// types in this package implement it.
type Shape interface {
	Name() string
	build(g Grid) (*Profile, error)
}

type SquareWell struct{}

func NewSquareWell() SquareWell { return SquareWell{} }

func (SquareWell) Name() string { return "square_well" }

func (s SquareWell) build(g Grid) (*Profile, error) {
	return sample(s, g, func(float64) float64 { return 0 })
}

type LinearWell struct {
	Slope float64
}

func NewLinearWell() LinearWell { return LinearWell{Slope: 4.0 * 1.3} }

func (LinearWell) Name() string { return "linear_well" }

func (s LinearWell) build(g Grid) (*Profile, error) {
	return sample(s, g, func(x float64) float64 { return (x - g.XMin) * s.Slope })
}

type ParabolicWell struct{}

func NewParabolicWell() ParabolicWell { return ParabolicWell{} }

func (ParabolicWell) Name() string { return "parabolic_well" }

func (s ParabolicWell) build(g Grid) (*Profile, error) {
	mid := g.Mid()
	return sample(s, g, func(x float64) float64 { return (x - mid) * (x - mid) })
}

// SquareLinearWell is flat on the left half and ramps up on the right half.
type SquareLinearWell struct {
	Slope float64
}

func NewSquareLinearWell() SquareLinearWell { return SquareLinearWell{Slope: 4.0 * 0.1} }

func (SquareLinearWell) Name() string { return "square_linear_well" }

func (s SquareLinearWell) build(g Grid) (*Profile, error) {
	mid := g.Mid()
	return sample(s, g, func(x float64) float64 {
		if x < mid {
			return 0
		}
		return (x - mid) * s.Slope
	})
}

// SquareBarrier raises the middle fifth of the domain, [40%, 60%), to Height.
type SquareBarrier struct {
	Height float64
}

func NewSquareBarrier() SquareBarrier { return SquareBarrier{Height: 15.000000001} }

func (SquareBarrier) Name() string { return "square_barrier" }

func (s SquareBarrier) build(g Grid) (*Profile, error) {
	lo, hi := g.At(0.4), g.At(0.6)
	return sample(s, g, func(x float64) float64 {
		if x >= lo && x < hi {
			return s.Height
		}
		return 0
	})
}

// TriangleBarrier rises with Slope from 40% to the 50% peak, then falls back
// to zero at 60%.
type TriangleBarrier struct {
	Slope float64
}

func NewTriangleBarrier() TriangleBarrier { return TriangleBarrier{Slope: 3.0} }

func (TriangleBarrier) Name() string { return "triangle_barrier" }

func (s TriangleBarrier) build(g Grid) (*Profile, error) {
	lo, peak, hi := g.At(0.4), g.At(0.5), g.At(0.6)
	return sample(s, g, func(x float64) float64 {
		switch {
		case x >= lo && x < peak:
			return (x - lo) * s.Slope
		case x >= peak && x < hi:
			return (hi - x) * s.Slope
		}
		return 0
	})
}

// CoupledParabolicWell puts one parabola in each half, centred at 25% and 75%.
type CoupledParabolicWell struct{}

func NewCoupledParabolicWell() CoupledParabolicWell { return CoupledParabolicWell{} }

func (CoupledParabolicWell) Name() string { return "coupled_parabolic_well" }

func (s CoupledParabolicWell) build(g Grid) (*Profile, error) {
	half, left, right := g.At(0.5), g.At(0.25), g.At(0.75)
	return sample(s, g, func(x float64) float64 {
		if x < half {
			return (x - left) * (x - left)
		}
		return (x - right) * (x - right)
	})
}

// CoupledSquareWellField is a central square barrier tilted by a uniform
// field. The field applies to interior samples; both clamps stay at 0.
type CoupledSquareWellField struct {
	Height float64
	Field  float64
}

func NewCoupledSquareWellField() CoupledSquareWellField {
	return CoupledSquareWellField{Height: 4.0, Field: 4.0 * 0.1}
}

func (CoupledSquareWellField) Name() string { return "coupled_square_well_field" }

func (s CoupledSquareWellField) build(g Grid) (*Profile, error) {
	lo, hi := g.At(0.4), g.At(0.6)
	return sample(s, g, func(x float64) float64 {
		v := (x - g.XMin) * s.Field
		if x >= lo && x < hi {
			v += s.Height
		}
		return v
	})
}

// HarmonicOscillator ignores the caller's grid. It samples [-HalfWidth,
// HalfWidth] shifted by +HalfWidth so positions are non-negative.
type HarmonicOscillator struct {
	HalfWidth float64
	Step      float64
	Scale     float64
}

func NewHarmonicOscillator() HarmonicOscillator {
	return HarmonicOscillator{HalfWidth: 20.0, Step: 0.001, Scale: 15.0}
}

func (HarmonicOscillator) Name() string { return "harmonic_oscillator" }

func (s HarmonicOscillator) Grid() Grid {
	return Grid{XMin: 0, XMax: 2 * s.HalfWidth, Step: s.Step}
}

func (s HarmonicOscillator) build(Grid) (*Profile, error) {
	if s.Scale == 0 {
		return nil, fmt.Errorf("harmonic oscillator: scale must be non-zero")
	}
	return sample(s, s.Grid(), func(x float64) float64 {
		u := x - s.HalfWidth
		return u * u / s.Scale
	})
}

// KronigPenney is a lattice of Barriers rectangular barriers spread evenly
// over [0, BoxLength], closed on the right by a Wall sample that stands in
// for an infinite wall.
type KronigPenney struct {
	Barriers      int
	BoxLength     float64
	Step          float64
	WidthFraction float64
	HeightFactor  float64
	Wall          float64
}

func NewKronigPenney() KronigPenney {
	return KronigPenney{
		Barriers:      10,
		BoxLength:     10.0,
		Step:          0.001,
		WidthFraction: 1.0 / 6.0,
		HeightFactor:  100.0 / 2.0,
		Wall:          5000000.0,
	}
}

func (KronigPenney) Name() string { return "kronig_penney" }

func (s KronigPenney) Grid() Grid {
	return Grid{XMin: 0, XMax: s.BoxLength, Step: s.Step}
}

func (s KronigPenney) BarrierHeight() float64 { return s.HeightFactor * HBarSquaredOverM }

func (s KronigPenney) build(Grid) (*Profile, error) {
	if s.Barriers <= 0 {
		return nil, fmt.Errorf("kronig-penney: need at least one barrier, got %d", s.Barriers)
	}
	spacing := s.BoxLength / float64(s.Barriers)
	halfWidth := spacing * s.WidthFraction / 2.0
	height := s.BarrierHeight()

	p, err := sample(s, s.Grid(), func(x float64) float64 {
		n := math.Floor(x/spacing) + 1
		if n > float64(s.Barriers) {
			return 0
		}
		center := (n - 0.5) * spacing
		if math.Abs(x-center) < halfWidth {
			return height
		}
		return 0
	})
	if err != nil {
		return nil, err
	}
	p.V[len(p.V)-1] = s.Wall
	return p, nil
}

// Unknown records a name that matched no shape. It cannot be built.
type Unknown struct {
	Label string
}

func (u Unknown) Name() string { return u.Label }

func (u Unknown) build(Grid) (*Profile, error) {
	return nil, fmt.Errorf("%w: unknown potential %q", ErrUnresolvedShape, u.Label)
}

var constructors = []func() Shape{
	func() Shape { return NewSquareWell() },
	func() Shape { return NewLinearWell() },
	func() Shape { return NewParabolicWell() },
	func() Shape { return NewSquareLinearWell() },
	func() Shape { return NewSquareBarrier() },
	func() Shape { return NewTriangleBarrier() },
	func() Shape { return NewCoupledParabolicWell() },
	func() Shape { return NewCoupledSquareWellField() },
	func() Shape { return NewHarmonicOscillator() },
	func() Shape { return NewKronigPenney() },
}

var aliases = map[string]string{
	"square":    "square_well",
	"linear":    "linear_well",
	"parabolic": "parabolic_well",
	"harmonic":  "harmonic_oscillator",
	"ho":        "harmonic_oscillator",
	"kp":        "kronig_penney",
}

var descriptions = map[string]string{
	"square_well":               "infinite square well",
	"linear_well":               "linear ramp from the left wall",
	"parabolic_well":            "parabola centred in the box",
	"square_linear_well":        "flat left half, ramp on the right",
	"square_barrier":            "square barrier in the middle fifth",
	"triangle_barrier":          "triangular barrier in the middle fifth",
	"coupled_parabolic_well":    "two parabolic wells side by side",
	"coupled_square_well_field": "double square well in a uniform field",
	"harmonic_oscillator":       "wide harmonic oscillator, fixed grid",
	"kronig_penney":             "periodic lattice of barriers, fixed grid",
}

// Shapes returns the canonical shape names in display order.
func Shapes() []string {
	names := make([]string, len(constructors))
	for i, c := range constructors {
		names[i] = c().Name()
	}
	return names
}

func Describe(name string) string { return descriptions[name] }

// Parse maps a canonical name, short alias or display name ("Square + Linear
// Well", "Kronig - Penney") to its shape with default parameters.
func Parse(name string) Shape {
	key := normalize(name)
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	for _, c := range constructors {
		if s := c(); s.Name() == key {
			return s
		}
	}
	return Unknown{Label: name}
}

// Resolve replaces Unknown with SquareWell. ok is false when a fallback happened.
func Resolve(s Shape) (resolved Shape, ok bool) {
	if _, unknown := s.(Unknown); unknown || s == nil {
		return NewSquareWell(), false
	}
	return s, true
}

func normalize(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
