package metrics

import "math"

// Metric accumulates a scalar over a run.
type Metric interface {
	Name() string
	Observe(v float64)
	Value() float64
	Reset()
}

// Average is the running mean of a scalar.
type Average struct {
	name    string
	sum     float64
	samples int
}

func NewAverage(name string) *Average {
	return &Average{name: name}
}

func (a *Average) Name() string { return a.name }

func (a *Average) Observe(v float64) {
	a.sum += v
	a.samples++
}

func (a *Average) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.sum / float64(a.samples)
}

func (a *Average) Reset() {
	a.sum = 0
	a.samples = 0
}

// Drift is the largest relative deviation of a scalar from its first
// observed value.
type Drift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewDrift(name string) *Drift {
	return &Drift{name: name}
}

func (d *Drift) Name() string { return d.name }

func (d *Drift) Observe(v float64) {
	if d.samples == 0 {
		d.initial = v
	}
	d.samples++

	if d.initial != 0 {
		drift := math.Abs(v-d.initial) / math.Abs(d.initial)
		d.maxDrift = math.Max(d.maxDrift, drift)
	}
}

func (d *Drift) Value() float64 { return d.maxDrift }

func (d *Drift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}
