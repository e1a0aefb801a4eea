// Package spectral provides the Fourier representation used by the solver.
//
// The package covers the doubly periodic square domain:
//
//   - [Grid]: wavenumbers, k² tables and the 3/2-rule dealiasing mask
//   - [Field]: N×N complex Fourier coefficients of a real field
//   - [PhysicalField]: grid-point values on the native or padded grid
//   - [Transform]: conversion between the two, implemented by [FFT]
//
// Coefficients use the FFT index layout along both axes: index i holds
// mode i for i < N/2 and mode i-N for i > N/2. The Nyquist index N/2 is
// never populated, so every stored field is Hermitian and resolves a set of
// modes symmetric around zero.
//
//	g, _ := spectral.NewGrid(2*math.Pi, 256, 1.5)
//	tr := spectral.NewFFT(g)
//	w := tr.ToSpectral(phys)
//	back := tr.ToPhysical(w)
package spectral
