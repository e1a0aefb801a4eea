// Package sim drives forced-dissipative 2D turbulence simulations.
//
// A [Simulator] owns the vorticity field and repeats, once per iteration:
//
//  1. choose dt with the CFL controller
//  2. draw the ring forcing for dt
//  3. advance the vorticity with the IMEX integrator
//  4. emit due diagnostic groups through the [Scheduler]
//
// Runs stop at the configured simulation time or iteration, or when the
// context is cancelled. An [Ensemble] runs several seeds concurrently.
package sim
