// Package viz is the terminal front end.
//
// [App] is a Bubble Tea program: pick a potential, run the calculation in
// the background through an experiment.Runner, then step through the
// potential and each eigenstate. [PlotCurve] and [PlotScan] render series
// with asciigraph for the non-interactive commands.
//
// # Key Bindings
//
//	j/k    - Select potential
//	Enter  - Calculate
//	h/l    - Previous/next curve (potential, then each eigenstate)
//	O      - Toggle the Braille overlay of V(x) and ψ
//	S      - Cycle integration scheme
//	X      - Clear the result
//	T      - Cycle color themes
//	Esc    - Cancel a running calculation
//	Q      - Quit
package viz
