package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/turb2d/internal/controllers"
	"github.com/san-kum/turb2d/internal/dynamo"
	"github.com/san-kum/turb2d/internal/forcing"
	"github.com/san-kum/turb2d/internal/integrators"
	"github.com/san-kum/turb2d/internal/metrics"
	"github.com/san-kum/turb2d/internal/physics"
	"github.com/san-kum/turb2d/internal/spectral"
)

// Simulator owns the vorticity field and drives the outer loop:
// timestep selection, forcing draw, IMEX step, diagnostics.
type Simulator struct {
	cfg Config

	grid  *spectral.Grid
	tr    *spectral.FFT
	ns    *physics.NavierStokes
	integ *integrators.IMEX
	cfl   *controllers.CFL
	ring  *forcing.Ring
	force *spectral.Field
	sched *Scheduler
	sink  dynamo.Sink

	w     *spectral.Field
	state dynamo.State

	running   []runningMetric
	observers []Observer
}

type runningMetric struct {
	task   string
	metric metrics.Metric
}

func New(cfg Config, sink dynamo.Sink) (*Simulator, error) {
	if cfg.StopTime <= 0 && cfg.StopIteration <= 0 {
		return nil, dynamo.Configf("a stop time or stop iteration is required")
	}
	if sink == nil {
		sink = dynamo.Discard
	}

	g, err := spectral.NewGrid(cfg.Length, cfg.Resolution, cfg.Dealias)
	if err != nil {
		return nil, err
	}
	tr := spectral.NewFFT(g)

	ns, err := physics.NewNavierStokes(g, tr, cfg.Physics)
	if err != nil {
		return nil, err
	}

	tab, err := integrators.TableauByName(cfg.Timestepper)
	if err != nil {
		return nil, err
	}

	cflCfg := cfg.CFL
	if cflCfg.Dx == 0 {
		cflCfg.Dx = g.Dx()
	}
	cfl, err := controllers.NewCFL(cflCfg)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:   cfg,
		grid:  g,
		tr:    tr,
		ns:    ns,
		integ: integrators.NewIMEX(tab),
		cfl:   cfl,
		sink:  sink,
		state: dynamo.NewState(cfg.StopTime, cfg.StopIteration),
		sched: NewScheduler(
			NewGroup("snapshots", cfg.SnapshotsDt, metrics.SnapshotTasks()...),
			NewGroup("scalars", cfg.ScalarsDt, metrics.ScalarTasks()...),
		),
		running: []runningMetric{
			{"E", metrics.NewAverage("mean_E")},
			{"Z", metrics.NewAverage("mean_Z")},
			{"E", metrics.NewDrift("E_drift")},
			{"Z", metrics.NewDrift("Z_drift")},
		},
	}

	if cfg.ForcingEnabled {
		s.ring, err = forcing.NewRing(g, cfg.Forcing)
		if err != nil {
			return nil, err
		}
		s.force = spectral.NewField(g)
		s.running = append(s.running, runningMetric{"injection", metrics.NewAverage("mean_injection")})
	}

	s.w, err = cfg.Initial.Build(g)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Grid() *spectral.Grid            { return s.grid }
func (s *Simulator) Config() Config                  { return s.cfg }
func (s *Simulator) State() dynamo.State             { return s.state }
func (s *Simulator) Transform() spectral.Transform   { return s.tr }
func (s *Simulator) Scheduler() *Scheduler           { return s.sched }
func (s *Simulator) Timestep() *controllers.CFL      { return s.cfl }
func (s *Simulator) Equation() *physics.NavierStokes { return s.ns }

// Vorticity returns a copy of the current vorticity coefficients.
func (s *Simulator) Vorticity() *spectral.Field { return s.w.Clone() }

// SetVorticity replaces the current vorticity.
func (s *Simulator) SetVorticity(w *spectral.Field) error {
	if !w.Grid().SameAs(s.grid) {
		return fmt.Errorf("%w: vorticity grid does not match simulation grid", dynamo.ErrDimensionMismatch)
	}
	s.w.CopyFrom(w)
	return nil
}

// MaxSpeed returns max |u| of the current flow.
func (s *Simulator) MaxSpeed() (float64, error) {
	v := s.ns.Advection().MaxSpeed(s.w)
	if !dynamo.Finite(v) {
		return v, fmt.Errorf("%w: max speed %v", dynamo.ErrNumericalInstability, v)
	}
	return v, nil
}

// Evaluation returns diagnostics inputs for the current vorticity.
func (s *Simulator) Evaluation() *metrics.Evaluation {
	return metrics.NewEvaluation(s.w, s.cfg.Physics, s.tr)
}

// Step draws the forcing for dt and advances the vorticity by one IMEX step.
// On failure the vorticity and state are left at their last consistent
// values.
func (s *Simulator) Step(dt float64) error {
	if s.ring != nil {
		if err := s.ring.Generate(dt, s.force); err != nil {
			return s.wrap(dt, err)
		}
		s.ns.SetForcing(s.force)
	}

	if err := s.integ.Step(s.ns, s.w, s.state.Time, dt); err != nil {
		return s.wrap(dt, err)
	}
	s.state.Advance(dt)
	return nil
}

// Advance runs one outer iteration: CFL timestep, forcing, integration,
// diagnostics and observers.
func (s *Simulator) Advance() error {
	dt, err := s.cfl.ComputeTimestep(s.state.Iteration, s)
	if err != nil {
		return s.wrap(s.cfl.Stored(), err)
	}
	if err := s.Step(dt); err != nil {
		return err
	}

	if s.ring != nil {
		s.observe("injection", s.ring.InjectionRate(s.force, dt))
	}
	if _, err := s.sched.Emit(s.state, s.Evaluation(), dynamo.SinkFunc(s.record)); err != nil {
		return s.wrap(dt, err)
	}
	for _, o := range s.observers {
		o.OnStep(s.state, s.w)
	}

	if c := s.cfg.LogCadence; c > 0 && s.state.Iteration%c == 0 {
		slog.Info("[solver] iteration",
			"iteration", s.state.Iteration,
			"time", s.state.Time,
			"dt", dt,
		)
	}
	return nil
}

func (s *Simulator) record(sample dynamo.Sample) error {
	if !sample.IsField() {
		s.observe(sample.Name, sample.Scalar)
	}
	return s.sink.Record(sample)
}

func (s *Simulator) observe(task string, v float64) {
	for _, r := range s.running {
		if r.task == task {
			r.metric.Observe(v)
		}
	}
}

func (s *Simulator) wrap(dt float64, err error) error {
	return &dynamo.SimulationError{
		Iteration: s.state.Iteration,
		Time:      s.state.Time,
		Dt:        dt,
		Wrapped:   err,
	}
}

// Run advances until a stop condition is met or ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) (*dynamo.Result, error) {
	for _, r := range s.running {
		r.metric.Reset()
	}

	slog.Info("[solver] starting",
		"resolution", s.grid.N(),
		"padded", s.grid.M(),
		"timestepper", s.integ.Tableau().Name,
		"nu", s.cfg.Physics.Nu,
		"alpha", s.cfg.Physics.Alpha,
		"forcing", s.ring != nil,
	)

	samples := 0
	counter := dynamo.SinkFunc(func(dynamo.Sample) error {
		samples++
		return nil
	})
	sink := s.sink
	s.sink = dynamo.MultiSink{sink, counter}
	defer func() { s.sink = sink }()

	for !s.state.Done() {
		select {
		case <-ctx.Done():
			return s.result(samples), ctx.Err()
		default:
		}

		if err := s.Advance(); err != nil {
			slog.Error("[solver] aborted", "iteration", s.state.Iteration, "time", s.state.Time, "error", err)
			return s.result(samples), err
		}
	}

	res := s.result(samples)
	slog.Info("[solver] finished",
		"iterations", res.Iterations,
		"time", res.SimTime,
		"samples", res.Samples,
	)
	return res, nil
}

func (s *Simulator) result(samples int) *dynamo.Result {
	res := &dynamo.Result{
		Iterations: s.state.Iteration,
		SimTime:    s.state.Time,
		LastDt:     s.state.Dt,
		Samples:    samples,
		Metrics:    make(map[string]float64),
	}
	for _, r := range s.running {
		if v := r.metric.Value(); !math.IsNaN(v) {
			res.Metrics[r.metric.Name()] = v
		}
	}
	return res
}
