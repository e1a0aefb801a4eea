package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/turb2d/internal/dynamo"
	"github.com/san-kum/turb2d/internal/metrics"
)

// cadenceEps absorbs rounding when t lands on a multiple of the cadence.
const cadenceEps = 1e-9

// Group is a set of tasks emitted together every Cadence of simulation time.
type Group struct {
	Name    string
	Cadence float64
	Tasks   []metrics.Task

	last int
}

func NewGroup(name string, cadence float64, tasks ...metrics.Task) *Group {
	return &Group{Name: name, Cadence: cadence, Tasks: tasks}
}

// Due reports whether a new multiple of the cadence has been crossed at t.
// A step that jumps over several multiples yields a single emission, so a
// run to time T emits floor(T/Cadence) times only while every dt is at most
// Cadence. With larger steps, expect one emission per step instead.
func (g *Group) Due(t float64) bool {
	if !(g.Cadence > 0) {
		return false
	}
	return g.index(t) > g.last
}

func (g *Group) index(t float64) int {
	return int(math.Floor(t/g.Cadence + cadenceEps))
}

// Scheduler decides which groups fire after each iteration.
type Scheduler struct {
	groups []*Group
}

func NewScheduler(groups ...*Group) *Scheduler {
	return &Scheduler{groups: groups}
}

func (s *Scheduler) Groups() []*Group { return s.groups }

// Reset forgets emission history.
func (s *Scheduler) Reset() {
	for _, g := range s.groups {
		g.last = 0
	}
}

// Emit evaluates and records every task of each due group. It returns the
// number of samples written.
func (s *Scheduler) Emit(state dynamo.State, ev *metrics.Evaluation, sink dynamo.Sink) (int, error) {
	n := 0
	for _, g := range s.groups {
		if !g.Due(state.Time) {
			continue
		}
		g.last = g.index(state.Time)

		for _, task := range g.Tasks {
			v := task.Evaluate(ev)
			sample := dynamo.Sample{
				Name:      task.Name(),
				Group:     g.Name,
				Time:      state.Time,
				Iteration: state.Iteration,
				Scalar:    v.Scalar,
			}
			if v.Field != nil {
				sample.Values = v.Field.Data
				sample.Size = v.Field.Size
			}
			if err := sink.Record(sample); err != nil {
				return n, fmt.Errorf("record %s/%s: %w", g.Name, task.Name(), err)
			}
			n++
		}
	}
	return n, nil
}
