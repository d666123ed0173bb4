package potential

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/schrodsim/internal/dynamo"
)

var box = Grid{XMin: 0, XMax: 10, Step: 0.01}

func build(t *testing.T, s Shape, g Grid) *Profile {
	t.Helper()
	p, err := Build(s, g)
	if err != nil {
		t.Fatalf("build %s: %v", s.Name(), err)
	}
	return p
}

func TestGridPositions(t *testing.T) {
	xs := Grid{XMin: 0, XMax: 1, Step: 0.1}.Positions()

	if len(xs) != 11 {
		t.Fatalf("expected 11 samples, got %d", len(xs))
	}
	if xs[0] != 0 || xs[len(xs)-1] != 1 {
		t.Errorf("expected clamps at 0 and 1, got %f and %f", xs[0], xs[len(xs)-1])
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			t.Fatalf("positions not strictly increasing at %d: %f <= %f", i, xs[i], xs[i-1])
		}
		if math.Abs(xs[i]-xs[i-1]-0.1) > 1e-12 {
			t.Errorf("non-uniform spacing at %d: %f", i, xs[i]-xs[i-1])
		}
	}
}

func TestGridPositions_UnevenSpan(t *testing.T) {
	xs := Grid{XMin: 0, XMax: 1, Step: 0.3}.Positions()

	want := []float64{0, 0.3, 0.6, 1}
	if len(xs) != len(want) {
		t.Fatalf("expected %v, got %v", want, xs)
	}
	for i := range want {
		if math.Abs(xs[i]-want[i]) > 1e-12 {
			t.Errorf("sample %d: expected %f, got %f", i, want[i], xs[i])
		}
	}
}

func TestGridValidate(t *testing.T) {
	tests := []struct {
		name string
		grid Grid
	}{
		{"zero step", Grid{XMin: 0, XMax: 1, Step: 0}},
		{"negative step", Grid{XMin: 0, XMax: 1, Step: -0.1}},
		{"inverted bounds", Grid{XMin: 1, XMax: 0, Step: 0.1}},
		{"empty span", Grid{XMin: 1, XMax: 1, Step: 0.1}},
		{"nan bound", Grid{XMin: math.NaN(), XMax: 1, Step: 0.1}},
		{"too many samples", Grid{XMin: 0, XMax: 1e9, Step: 1e-3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(NewSquareWell(), tt.grid)
			if !errors.Is(err, dynamo.ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}

func TestSquareWellIsFlat(t *testing.T) {
	p := build(t, NewSquareWell(), box)

	if len(p.X) != len(p.V) {
		t.Fatalf("length mismatch: %d vs %d", len(p.X), len(p.V))
	}
	for i, v := range p.V {
		if v != 0 {
			t.Errorf("V[%d] = %f, expected 0", i, v)
		}
	}
}

func TestLinearWell(t *testing.T) {
	p := build(t, NewLinearWell(), box)

	i := 100
	expected := p.X[i] * 4.0 * 1.3
	if math.Abs(p.V[i]-expected) > 1e-12 {
		t.Errorf("V(%f) = %f, expected %f", p.X[i], p.V[i], expected)
	}
	if p.V[0] != 0 || p.V[len(p.V)-1] != 0 {
		t.Error("clamps should hold V=0")
	}
}

func TestParabolicWellMinimumAtCentre(t *testing.T) {
	p := build(t, NewParabolicWell(), box)

	mid := len(p.X) / 2
	if math.Abs(p.X[mid]-5) > 1e-9 {
		t.Fatalf("expected centre sample at 5, got %f", p.X[mid])
	}
	if p.V[mid] > 1e-18 {
		t.Errorf("expected V=0 at centre, got %e", p.V[mid])
	}
	if math.Abs(p.V[1]-(p.X[1]-5)*(p.X[1]-5)) > 1e-12 {
		t.Errorf("unexpected V at first interior sample: %f", p.V[1])
	}
}

func TestSquareLinearWell(t *testing.T) {
	p := build(t, NewSquareLinearWell(), box)

	for i, x := range p.X[1 : len(p.X)-1] {
		v := p.V[i+1]
		if x < 5 && v != 0 {
			t.Fatalf("left half should be flat, V(%f) = %f", x, v)
		}
		if x >= 5 && math.Abs(v-(x-5)*0.4) > 1e-12 {
			t.Fatalf("right half should ramp with slope 0.4, V(%f) = %f", x, v)
		}
	}
}

func TestSquareBarrier(t *testing.T) {
	p := build(t, NewSquareBarrier(), box)

	for i, x := range p.X[1 : len(p.X)-1] {
		v := p.V[i+1]
		inside := x >= 4 && x < 6
		if inside && v != 15.000000001 {
			t.Fatalf("expected barrier height at x=%f, got %f", x, v)
		}
		if !inside && v != 0 {
			t.Fatalf("expected V=0 outside barrier at x=%f, got %f", x, v)
		}
	}
}

func TestTriangleBarrierPeak(t *testing.T) {
	p := build(t, NewTriangleBarrier(), box)

	peak, at := 0.0, 0.0
	for i, v := range p.V {
		if v > peak {
			peak, at = v, p.X[i]
		}
	}

	if math.Abs(at-5) > 0.011 {
		t.Errorf("expected peak near x=5, got x=%f", at)
	}
	if math.Abs(peak-3.0) > 0.05 {
		t.Errorf("expected peak height ~3.0, got %f", peak)
	}
	for i, x := range p.X {
		if (x < 4 || x >= 6) && p.V[i] != 0 {
			t.Fatalf("expected V=0 outside [4,6), V(%f)=%f", x, p.V[i])
		}
	}
}

func TestCoupledParabolicWell(t *testing.T) {
	p := build(t, NewCoupledParabolicWell(), box)

	for i, x := range p.X {
		if math.Abs(x-2.5) < 1e-9 || math.Abs(x-7.5) < 1e-9 {
			if p.V[i] > 1e-18 {
				t.Errorf("expected well minimum at x=%f, got %e", x, p.V[i])
			}
		}
	}
}

func TestCoupledSquareWellField(t *testing.T) {
	s := NewCoupledSquareWellField()
	p := build(t, s, box)

	for i := 1; i < len(p.X)-1; i++ {
		x := p.X[i]
		expected := x * s.Field
		if x >= 4 && x < 6 {
			expected += s.Height
		}
		if math.Abs(p.V[i]-expected) > 1e-12 {
			t.Fatalf("V(%f) = %f, expected %f", x, p.V[i], expected)
		}
	}
	if p.V[0] != 0 || p.V[len(p.V)-1] != 0 {
		t.Error("field must not touch the clamps")
	}
}

func TestHarmonicOscillatorSymmetry(t *testing.T) {
	s := NewHarmonicOscillator()
	p := build(t, s, box)

	if p.Grid != s.Grid() {
		t.Errorf("expected own grid %+v, got %+v", s.Grid(), p.Grid)
	}
	if p.X[0] != 0 || p.X[len(p.X)-1] != 40 {
		t.Fatalf("expected domain [0, 40], got [%f, %f]", p.X[0], p.X[len(p.X)-1])
	}

	n := len(p.V)
	for d := 0; d < n/2; d += 97 {
		left, right := p.V[d], p.V[n-1-d]
		if math.Abs(left-right) > 1e-9 {
			t.Fatalf("asymmetric at offset %d: %f vs %f", d, left, right)
		}
	}
}

func TestKronigPenney(t *testing.T) {
	s := NewKronigPenney()
	p := build(t, s, Grid{})

	if p.V[len(p.V)-1] != s.Wall {
		t.Errorf("expected wall %f at last sample, got %f", s.Wall, p.V[len(p.V)-1])
	}
	if p.X[len(p.X)-1] != s.BoxLength {
		t.Errorf("expected last sample at box length, got %f", p.X[len(p.X)-1])
	}

	barriers := 0
	inBarrier := false
	for i := 0; i < len(p.V)-1; i++ {
		v := p.V[i]
		if v == 50.0 && !inBarrier {
			barriers++
		}
		inBarrier = v == 50.0
	}
	if barriers != s.Barriers {
		t.Errorf("expected %d barriers, got %d", s.Barriers, barriers)
	}

	for i, x := range p.X {
		if math.Abs(x-0.5) < 1e-9 && p.V[i] != 50.0 {
			t.Errorf("expected first barrier centred at 0.5, V=%f", p.V[i])
		}
		if math.Abs(x-1.0) < 1e-9 && p.V[i] != 0 {
			t.Errorf("expected gap between barriers at x=1.0, V=%f", p.V[i])
		}
	}
}

func TestBuildReturnsFreshArrays(t *testing.T) {
	a := build(t, NewParabolicWell(), box)
	b := build(t, NewParabolicWell(), box)

	a.V[10] = 1e9
	if b.V[10] == 1e9 {
		t.Error("profiles share potential storage")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Square Well", "square_well"},
		{"square_well", "square_well"},
		{"Square + Linear Well", "square_linear_well"},
		{"Kronig - Penney", "kronig_penney"},
		{"Coupled Square Well + Field", "coupled_square_well_field"},
		{"Harmonic Oscillator", "harmonic_oscillator"},
		{"ho", "harmonic_oscillator"},
		{"  Triangle   Barrier ", "triangle_barrier"},
	}

	for _, tt := range tests {
		if got := Parse(tt.in).Name(); got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	shape := Parse("Morse Potential")
	if _, ok := shape.(Unknown); !ok {
		t.Fatalf("expected Unknown, got %T", shape)
	}

	_, err := Build(shape, box)
	if !errors.Is(err, ErrUnresolvedShape) {
		t.Errorf("expected ErrUnresolvedShape, got %v", err)
	}

	resolved, ok := Resolve(shape)
	if ok {
		t.Error("expected fallback to be reported")
	}
	if _, isSquare := resolved.(SquareWell); !isSquare {
		t.Errorf("expected SquareWell fallback, got %T", resolved)
	}

	same, ok := Resolve(NewLinearWell())
	if !ok || same.Name() != "linear_well" {
		t.Errorf("known shapes should pass through, got %s (%v)", same.Name(), ok)
	}
}

func TestShapesListed(t *testing.T) {
	names := Shapes()
	if len(names) != 10 {
		t.Fatalf("expected 10 shapes, got %d", len(names))
	}
	for _, n := range names {
		if Describe(n) == "" {
			t.Errorf("missing description for %s", n)
		}
		if _, ok := Parse(n).(Unknown); ok {
			t.Errorf("canonical name %s does not parse", n)
		}
	}
}
