// Package viz renders vorticity fields and diagnostics.
//
// Static output goes through gonum/plot:
//
//   - [SaveHeatmap]: vorticity or streamfunction colour map as PNG
//   - [SaveSeries]: scalar time series
//   - [SaveSpectrum]: log-log E(k) and Z(k)
//
// The live terminal view ([RunLive]) is a Bubble Tea program fed by a
// [Feed] observer attached to the simulator.
//
// # Key Bindings
//
//	Space - Freeze/unfreeze the display
//	V     - Toggle vorticity map and energy spectrum
//	T     - Cycle colour themes
//	Q     - Quit and cancel the run
package viz
