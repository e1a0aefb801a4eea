package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/turb2d/internal/dynamo"
	"github.com/san-kum/turb2d/internal/metrics"
	"github.com/san-kum/turb2d/internal/physics"
	"github.com/san-kum/turb2d/internal/spectral"
)

func constTask(name string) metrics.Task {
	return metrics.Scalar(name, func(*metrics.Evaluation) float64 { return 1 })
}

type collector struct {
	samples []dynamo.Sample
}

func (c *collector) Record(s dynamo.Sample) error {
	c.samples = append(c.samples, s)
	return nil
}

func TestScheduler_EmissionCount(t *testing.T) {
	tests := []struct {
		name    string
		cadence float64
		dt      float64
		steps   int
		want    int
	}{
		{"exact multiples", 0.125, 1.0 / 64, 64, 8},
		{"inexact decimal", 0.01, 0.001, 1000, 100},
		{"step equals cadence", 0.5, 0.5, 6, 6},
		{"overshoot emits once", 0.1, 0.25, 4, 4},
		{"disabled", 0, 0.1, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(NewGroup("g", tt.cadence, constTask("a")))
			c := &collector{}
			state := dynamo.NewState(0, tt.steps)

			if n, err := s.Emit(state, nil, c); err != nil || n != 0 {
				t.Fatalf("emission at t=0: n=%d err=%v", n, err)
			}
			for k := 0; k < tt.steps; k++ {
				state.Advance(tt.dt)
				if _, err := s.Emit(state, nil, c); err != nil {
					t.Fatal(err)
				}
			}
			if len(c.samples) != tt.want {
				t.Errorf("got %d samples, want %d", len(c.samples), tt.want)
			}
		})
	}
}

func TestGroup_DueWithStepsLongerThanCadence(t *testing.T) {
	g := NewGroup("g", 0.1, constTask("a"))
	state := dynamo.NewState(0, 0)

	var fired []int
	for k, dt := range []float64{0.05, 0.05, 0.25, 0.05, 0.3} {
		state.Advance(dt)
		if g.Due(state.Time) {
			g.last = g.index(state.Time)
			fired = append(fired, k)
		}
	}

	// t = 0.7 spans seven multiples of the cadence, but only four steps
	// crossed one.
	want := []int{1, 2, 3, 4}
	if len(fired) != len(want) {
		t.Fatalf("fired at steps %v, want %v", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Fatalf("fired at steps %v, want %v", fired, want)
		}
	}
	if floor := int(math.Floor(state.Time/g.Cadence + 1e-9)); len(fired) >= floor {
		t.Errorf("emissions %d should fall short of floor(T/cadence) = %d", len(fired), floor)
	}
}

func TestScheduler_SampleMetadata(t *testing.T) {
	g, _ := spectral.NewGrid(2*math.Pi, 8, 1.5)
	w := spectral.NewField(g)
	ev := metrics.NewEvaluation(w, physics.Params{}, spectral.NewFFT(g))

	s := NewScheduler(
		NewGroup("snapshots", 0.5, metrics.SnapshotTasks()...),
		NewGroup("scalars", 0.25, constTask("a"), constTask("b")),
	)
	c := &collector{}
	state := dynamo.NewState(1, 0)
	state.Advance(0.5)

	n, err := s.Emit(state, ev, c)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Fatalf("emitted %d samples, want 4", n)
	}

	for _, smp := range c.samples {
		if smp.Iteration != 1 || smp.Time != 0.5 {
			t.Errorf("sample %s has iteration %d time %v", smp.Name, smp.Iteration, smp.Time)
		}
		switch smp.Group {
		case "snapshots":
			if !smp.IsField() || smp.Size != 8 || len(smp.Values) != 64 {
				t.Errorf("field sample %s malformed: size %d, %d values", smp.Name, smp.Size, len(smp.Values))
			}
		case "scalars":
			if smp.IsField() || smp.Scalar != 1 {
				t.Errorf("scalar sample %s malformed", smp.Name)
			}
		default:
			t.Errorf("unexpected group %q", smp.Group)
		}
	}

	// nothing new is due at the same time
	if n, _ := s.Emit(state, ev, c); n != 0 {
		t.Errorf("re-emitted %d samples", n)
	}

	s.Reset()
	if n, _ := s.Emit(state, ev, c); n != 4 {
		t.Errorf("after reset emitted %d samples, want 4", n)
	}
}

func TestScheduler_SinkError(t *testing.T) {
	boom := errors.New("disk full")
	s := NewScheduler(NewGroup("scalars", 0.1, constTask("a")))
	state := dynamo.NewState(1, 0)
	state.Advance(0.1)

	_, err := s.Emit(state, nil, dynamo.SinkFunc(func(dynamo.Sample) error { return boom }))
	if !errors.Is(err, boom) {
		t.Errorf("expected sink error, got %v", err)
	}
}
