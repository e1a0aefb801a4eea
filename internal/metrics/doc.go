// Package metrics evaluates diagnostics of a vorticity field.
//
// A [Task] produces one named output, either a domain-averaged scalar or a
// grid-point field, from an [Evaluation]. Domain averages are computed
// exactly in spectral space via Parseval's identity, <f g> = Σ f̂ conj(ĝ).
//
// A [Metric] accumulates a scalar task over a run, the same way for every
// task: Observe on each sample, Value at the end, Reset between runs.
package metrics
