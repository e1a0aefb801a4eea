// Package forcing generates the stochastic ring forcing of the vorticity
// equation.
//
// A fresh white-in-time field is drawn every step. Its modal variance is
// concentrated on a Gaussian ring |k| ≈ Kf of width Kfw and normalised so
// that the expected enstrophy injection rate equals eta = Epsilon*Kf², which
// makes the expected energy injection Epsilon.
//
//	ring, _ := forcing.NewRing(grid, forcing.Spec{Epsilon: 1, Kf: 50, Kfw: 2, Seed: 7})
//	f := spectral.NewField(grid)
//	if err := ring.Generate(dt, f); err != nil {
//	    return err
//	}
package forcing
