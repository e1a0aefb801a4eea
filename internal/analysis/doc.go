// Package analysis post-processes simulation output.
//
//   - [Spectra]: shell-averaged energy and enstrophy spectra of a vorticity field
//   - [Summarize]: statistics of a scalar time series after spin-up
//   - [PowerSpectrum]: temporal power spectrum of a scalar time series
//
// # Spectra
//
// Shells are unit bins in mode number, |k|/dk rounded to the nearest integer.
// The spectra sum to the domain averages:
//
//	s := analysis.Spectra(w)
//	floats.Sum(s.E) // == metrics.Energy
package analysis
