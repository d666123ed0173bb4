// Package analysis post-processes solved eigenstates.
//
//   - [Normalize]: scale ψ so that ∫|ψ|² dx = 1
//   - [Density]: probability density |ψ|²
//   - [CountNodes]: interior zero crossings
//   - [Expectation], [Spread]: ⟨f(x)⟩ and Δx
//   - [OverlapMatrix]: ⟨ψi|ψj⟩ for a set of states
//   - [NewPhasePortrait]: the (ψ, ψ') trajectory of a shot
//
// Integrals use the trapezoidal rule over the actual sample positions, so
// the clamped end points of a profile are handled without special cases.
package analysis
