// Package dynamo provides the core numerical primitives shared by the
// shooting solver.
//
// The package defines the fundamental interfaces and types for stepping an
// ordinary differential equation along a spatial grid:
//
//   - [State]: vector holding the integrated quantities (ψ, ψ')
//   - [System]: interface for first-order ODE systems (dX/dx = f(X, x))
//   - [Integrator]: single-step numerical integrator interface
//
// # Example
//
//	sys := shooting.NewSchrodinger(energy)
//	integ := integrators.NewRK4()
//	next := integ.Step(sys, x, pos, h)
//
// # Thread Safety
//
// Integrators keep scratch buffers and are NOT thread-safe. Create one
// integrator per goroutine.
package dynamo
