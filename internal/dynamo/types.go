package dynamo

import "math"

// State is the solver bookkeeping mutated once per outer iteration.
type State struct {
	Time          float64
	Iteration     int
	Dt            float64
	PrevDt        float64
	StopTime      float64
	StopIteration int
}

func NewState(stopTime float64, stopIteration int) State {
	return State{StopTime: stopTime, StopIteration: stopIteration}
}

// Advance records a completed step of size dt.
func (s *State) Advance(dt float64) {
	s.PrevDt = s.Dt
	s.Dt = dt
	s.Time += dt
	s.Iteration++
}

// Done reports whether a stop condition has been reached.
func (s State) Done() bool {
	if s.StopIteration > 0 && s.Iteration >= s.StopIteration {
		return true
	}
	return s.StopTime > 0 && s.Time >= s.StopTime
}

// Sample is a single diagnostic value emitted by the solver.
// Field samples carry Size*Size row-major values in Values; scalar
// samples leave Values nil.
type Sample struct {
	Name      string
	Group     string
	Time      float64
	Iteration int
	Scalar    float64
	Values    []float64
	Size      int
}

func (s Sample) IsField() bool { return s.Values != nil }

// Sink accepts diagnostic samples.
type Sink interface {
	Record(s Sample) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(s Sample) error

func (f SinkFunc) Record(s Sample) error { return f(s) }

// Discard is a Sink that drops every sample.
var Discard Sink = SinkFunc(func(Sample) error { return nil })

// MultiSink fans samples out to several sinks, stopping at the first error.
type MultiSink []Sink

func (m MultiSink) Record(s Sample) error {
	for _, sink := range m {
		if err := sink.Record(s); err != nil {
			return err
		}
	}
	return nil
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Result summarises a completed run.
type Result struct {
	Iterations int
	SimTime    float64
	LastDt     float64
	Samples    int
	Metrics    map[string]float64
}
