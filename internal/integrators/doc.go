// Package integrators advances spectral fields in time.
//
// [IMEX] implements additive implicit-explicit Runge-Kutta schemes: the
// stiff diagonal linear operator is integrated implicitly and the
// nonlinear and forcing terms explicitly. Available tableaus:
//
//   - [RK443]: 4-stage, 3rd order (default)
//   - [RK222]: 2-stage, 2nd order
//   - [RK111]: 1-stage, 1st order (forward/backward Euler)
package integrators
