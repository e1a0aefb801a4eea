// Package physics provides the vorticity form of the forced-dissipative 2D
// Navier-Stokes equations in spectral space.
//
// The pieces map onto the evolution equation
//
//	∂t w + nu k² w + alpha w = -u·∇w + F
//
// as follows:
//
//   - [Elliptic]: streamfunction and velocity recovered from vorticity
//   - [Advection]: the dealiased nonlinear term -u·∇w
//   - [NavierStokes]: the split into stiff linear and explicit parts
//
// The linear part is diagonal in spectral space, which lets the IMEX
// integrator solve its implicit stages mode by mode.
package physics
