// Package dynamo provides the core primitives shared by the turb2d solver.
//
// The package defines the small vocabulary every other package speaks:
//
//   - [State]: simulation time, iteration and timestep bookkeeping
//   - [Sample]: a named scalar or field diagnostic at a simulation time
//   - [Sink]: destination for diagnostic samples
//   - [SimulationError]: a fatal failure annotated with the last consistent state
//
// # Example
//
//	st := dynamo.NewState(5.0, 0)
//	for !st.Done() {
//	    // compute dt, force, step ...
//	    st.Advance(dt)
//	}
//
// # Thread Safety
//
// State is owned by a single driver and is NOT safe for concurrent mutation.
// Sinks are called from the driver goroutine only.
package dynamo
