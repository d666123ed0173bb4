// Package potential builds discretized one-dimensional potential profiles.
//
// A [Shape] is a closed set of variants, one per supported potential:
//
//   - [SquareWell], [LinearWell], [ParabolicWell], [SquareLinearWell]
//   - [SquareBarrier], [TriangleBarrier]
//   - [CoupledParabolicWell], [CoupledSquareWellField]
//   - [HarmonicOscillator], [KronigPenney] (these carry their own grid)
//   - [Unknown]: an unrecognized name, mapped to [SquareWell] by [Resolve]
//
// # Grid Convention
//
// Every profile starts with a clamp sample at XMin holding V = 0, continues
// with interior samples XMin + i·Step computed by index, and ends with a
// clamp sample at XMax. Interior samples stop more than Step/2 short of XMax,
// so the last interval is between Step/2 and 3·Step/2 wide when the span is
// not a whole multiple of Step. Piecewise shapes use half-open regions [a, b).
//
//	shape, _ := potential.Resolve(potential.Parse("Square Well"))
//	profile, err := potential.Build(shape, potential.Grid{XMin: 0, XMax: 10, Step: 0.01})
package potential
