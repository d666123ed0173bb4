// Package eigen finds bound-state energies by the shooting method.
//
// A [Searcher] sweeps a trial energy across a range, watches the far-boundary
// value of the shot wavefunction for sign changes, and refines every
// [Bracket] by false position (regula falsi):
//
//	E' = L − ψ(L)·(R − L)/(ψ(R) − ψ(L))
//
// Refinement stops when |ψ(E')| < PsiPrecision, when the bracket is narrower
// than IntervalPrecision, or after MaxIterations. A bracket that hits the cap
// still yields a [Solution], marked with Converged = false, so callers
// must check BoundaryResidual when they need strict convergence.
//
// Roots closer than DedupTolerance to an accepted energy are dropped.
package eigen
