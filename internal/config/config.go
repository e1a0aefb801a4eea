package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/turb2d/internal/controllers"
	"github.com/san-kum/turb2d/internal/dynamo"
	"github.com/san-kum/turb2d/internal/forcing"
	"github.com/san-kum/turb2d/internal/integrators"
	"github.com/san-kum/turb2d/internal/physics"
	"github.com/san-kum/turb2d/internal/sim"
)

const (
	DefaultLength      = 2 * math.Pi
	DefaultResolution  = 256
	DefaultDealias     = 1.5
	DefaultEpsilon     = 1.0
	DefaultKf          = 50.0
	DefaultKfw         = 2.0
	DefaultStopTime    = 5.0
	DefaultLogCadence  = 10
	DefaultSafety      = 0.5
	DefaultCFLCadence  = 10
	DefaultMaxChange   = 1.5
	DefaultMinChange   = 0.5
	DefaultThreshold   = 0.05
	DefaultSnapshotsDt = 0.1
	DefaultScalarsDt   = 0.01
)

type Config struct {
	Domain   DomainConfig   `yaml:"domain"`
	Forcing  ForcingConfig  `yaml:"forcing"`
	Physics  PhysicsConfig  `yaml:"physics"`
	Solver   SolverConfig   `yaml:"solver"`
	CFL      CFLConfig      `yaml:"cfl"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Initial  InitialConfig  `yaml:"initial"`
}

type DomainConfig struct {
	Length     float64 `yaml:"length"`
	Resolution int     `yaml:"resolution"`
	Dealias    float64 `yaml:"dealias"`
}

type ForcingConfig struct {
	Enabled bool    `yaml:"enabled"`
	Epsilon float64 `yaml:"epsilon"`
	Kf      float64 `yaml:"kf"`
	Kfw     float64 `yaml:"kfw"`
	Seed    int64   `yaml:"seed"` // 0 picks a seed from the clock
}

// PhysicsConfig leaves Viscosity and Friction nil to derive them from the
// dissipation and friction length scales.
type PhysicsConfig struct {
	Viscosity        *float64 `yaml:"viscosity,omitempty"`
	Friction         *float64 `yaml:"friction,omitempty"`
	DissipationScale float64  `yaml:"dissipation_scale"` // 0 means L/N
	FrictionScale    float64  `yaml:"friction_scale"`    // 0 means L
}

type SolverConfig struct {
	Timestepper   string  `yaml:"timestepper"`
	StopSimTime   float64 `yaml:"stop_sim_time"`
	StopIteration int     `yaml:"stop_iteration"`
	LogCadence    int     `yaml:"log_cadence"`
}

type CFLConfig struct {
	Safety    float64 `yaml:"safety"`
	Cadence   int     `yaml:"cadence"`
	MaxChange float64 `yaml:"max_change"`
	MinChange float64 `yaml:"min_change"`
	MaxDt     float64 `yaml:"max_dt"`     // 0 means safety*dx/U
	InitialDt float64 `yaml:"initial_dt"` // 0 means max_dt
	Threshold float64 `yaml:"threshold"`
}

type AnalysisConfig struct {
	SnapshotsDt float64 `yaml:"snapshots_dt"`
	ScalarsDt   float64 `yaml:"scalars_dt"`
}

type InitialConfig struct {
	Type      string  `yaml:"type"`
	K0        float64 `yaml:"k0"`
	Amplitude float64 `yaml:"amplitude"`
	Seed      int64   `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		Domain: DomainConfig{
			Length:     DefaultLength,
			Resolution: DefaultResolution,
			Dealias:    DefaultDealias,
		},
		Forcing: ForcingConfig{
			Enabled: true,
			Epsilon: DefaultEpsilon,
			Kf:      DefaultKf,
			Kfw:     DefaultKfw,
		},
		Solver: SolverConfig{
			Timestepper: "RK443",
			StopSimTime: DefaultStopTime,
			LogCadence:  DefaultLogCadence,
		},
		CFL: CFLConfig{
			Safety:    DefaultSafety,
			Cadence:   DefaultCFLCadence,
			MaxChange: DefaultMaxChange,
			MinChange: DefaultMinChange,
			Threshold: DefaultThreshold,
		},
		Analysis: AnalysisConfig{
			SnapshotsDt: DefaultSnapshotsDt,
			ScalarsDt:   DefaultScalarsDt,
		},
		Initial: InitialConfig{Type: "zero"},
	}
}

func Load(path string) (*Config, error) {
	return LoadOnto(path, DefaultConfig())
}

// LoadOnto reads path over a copy of base; keys absent from the file keep
// the base values.
func LoadOnto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.Physics.Viscosity != nil {
		v := *c.Physics.Viscosity
		out.Physics.Viscosity = &v
	}
	if c.Physics.Friction != nil {
		v := *c.Physics.Friction
		out.Physics.Friction = &v
	}
	return &out
}

// Validate checks the values that cannot be derived.
func (c *Config) Validate() error {
	d := c.Domain
	if !(d.Length > 0) {
		return dynamo.Configf("domain.length must be positive, got %v", d.Length)
	}
	if d.Resolution < 4 || d.Resolution%2 != 0 {
		return dynamo.Configf("domain.resolution must be even and >= 4, got %d", d.Resolution)
	}
	if !(d.Dealias >= 1) {
		return dynamo.Configf("domain.dealias must be >= 1, got %v", d.Dealias)
	}
	if c.Forcing.Enabled {
		spec := forcing.Spec{Epsilon: c.Forcing.Epsilon, Kf: c.Forcing.Kf, Kfw: c.Forcing.Kfw}
		if err := spec.Validate(); err != nil {
			return err
		}
	}
	if c.Physics.DissipationScale < 0 || c.Physics.FrictionScale < 0 {
		return dynamo.Configf("physics length scales must be non-negative")
	}
	if _, err := integrators.TableauByName(c.Solver.Timestepper); err != nil {
		return err
	}
	if c.Solver.StopSimTime <= 0 && c.Solver.StopIteration <= 0 {
		return dynamo.Configf("solver needs stop_sim_time or stop_iteration")
	}
	if c.Analysis.SnapshotsDt < 0 || c.Analysis.ScalarsDt < 0 {
		return dynamo.Configf("analysis cadences must be non-negative")
	}

	resolved, err := c.Resolve()
	if err != nil {
		return err
	}
	if p := resolved.Physics; !(p.Nu >= 0) || !(p.Alpha >= 0) {
		return dynamo.Configf("viscosity and friction must be non-negative, got %v and %v", p.Nu, p.Alpha)
	}
	if err := resolved.CFL.Validate(); err != nil {
		return err
	}
	return resolved.Initial.Validate()
}

// Eta is the enstrophy injection rate epsilon*kf².
func (c *Config) Eta() float64 {
	return c.Forcing.Epsilon * c.Forcing.Kf * c.Forcing.Kf
}

func (c *Config) Dx() float64 {
	return c.Domain.Length / float64(c.Domain.Resolution)
}

func (c *Config) dissipationScale() float64 {
	if c.Physics.DissipationScale > 0 {
		return c.Physics.DissipationScale
	}
	return c.Dx()
}

func (c *Config) frictionScale() float64 {
	if c.Physics.FrictionScale > 0 {
		return c.Physics.FrictionScale
	}
	return c.Domain.Length
}

// Viscosity returns nu, derived as L_diss² eta^(1/3) unless set.
func (c *Config) Viscosity() float64 {
	if c.Physics.Viscosity != nil {
		return *c.Physics.Viscosity
	}
	ld := c.dissipationScale()
	return ld * ld * math.Cbrt(c.Eta())
}

// Friction returns alpha, derived as epsilon^(1/3) L_fric^(-2/3) unless set.
func (c *Config) Friction() float64 {
	if c.Physics.Friction != nil {
		return *c.Physics.Friction
	}
	return math.Cbrt(c.Forcing.Epsilon) * math.Pow(c.frictionScale(), -2.0/3.0)
}

// FrictionVelocity is U = (epsilon L_fric)^(1/3).
func (c *Config) FrictionVelocity() float64 {
	return math.Cbrt(c.Forcing.Epsilon * c.frictionScale())
}

// MaxDt returns cfl.max_dt, derived as safety*dx/U unless set.
func (c *Config) MaxDt() float64 {
	if c.CFL.MaxDt > 0 {
		return c.CFL.MaxDt
	}
	return c.CFL.Safety * c.Dx() / c.FrictionVelocity()
}

// Resolve fills in derived values and produces the solver configuration.
// A zero seed is replaced by one taken from the clock.
func (c *Config) Resolve() (sim.Config, error) {
	seed := c.Forcing.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	initSeed := c.Initial.Seed
	if initSeed == 0 {
		initSeed = seed
	}

	maxDt := c.MaxDt()
	if !(maxDt > 0) || math.IsInf(maxDt, 0) {
		return sim.Config{}, dynamo.Configf("cfl.max_dt resolves to %v", maxDt)
	}

	return sim.Config{
		Length:     c.Domain.Length,
		Resolution: c.Domain.Resolution,
		Dealias:    c.Domain.Dealias,
		Physics: physics.Params{
			Nu:    c.Viscosity(),
			Alpha: c.Friction(),
		},
		ForcingEnabled: c.Forcing.Enabled,
		Forcing: forcing.Spec{
			Epsilon: c.Forcing.Epsilon,
			Kf:      c.Forcing.Kf,
			Kfw:     c.Forcing.Kfw,
			Seed:    seed,
		},
		Timestepper: c.Solver.Timestepper,
		CFL: controllers.CFLConfig{
			Dx:        c.Dx(),
			Safety:    c.CFL.Safety,
			Cadence:   c.CFL.Cadence,
			MaxChange: c.CFL.MaxChange,
			MinChange: c.CFL.MinChange,
			MaxDt:     maxDt,
			InitialDt: c.CFL.InitialDt,
			Threshold: c.CFL.Threshold,
		},
		StopTime:      c.Solver.StopSimTime,
		StopIteration: c.Solver.StopIteration,
		LogCadence:    c.Solver.LogCadence,
		SnapshotsDt:   c.Analysis.SnapshotsDt,
		ScalarsDt:     c.Analysis.ScalarsDt,
		Initial: sim.InitialCondition{
			Type:      c.Initial.Type,
			K0:        c.Initial.K0,
			Amplitude: c.Initial.Amplitude,
			Seed:      initSeed,
		},
	}, nil
}
