package controllers

import (
	"fmt"
	"math"

	"github.com/san-kum/turb2d/internal/dynamo"
)

// CFLConfig tunes the adaptive timestep.
type CFLConfig struct {
	Dx        float64 // grid spacing
	Safety    float64
	Cadence   int // iterations between recomputations
	MaxChange float64
	MinChange float64
	MaxDt     float64
	InitialDt float64 // defaults to MaxDt
	Threshold float64 // relative change below which dt is kept
}

func (c CFLConfig) Validate() error {
	switch {
	case !(c.Dx > 0):
		return dynamo.Configf("cfl: dx must be positive, got %v", c.Dx)
	case !(c.Safety > 0):
		return dynamo.Configf("cfl: safety must be positive, got %v", c.Safety)
	case c.Cadence < 1:
		return dynamo.Configf("cfl: cadence must be >= 1, got %d", c.Cadence)
	case !(c.MaxChange >= 1):
		return dynamo.Configf("cfl: max_change must be >= 1, got %v", c.MaxChange)
	case !(c.MinChange > 0 && c.MinChange <= 1):
		return dynamo.Configf("cfl: min_change must be in (0, 1], got %v", c.MinChange)
	case !(c.MaxDt > 0) || math.IsInf(c.MaxDt, 0):
		return dynamo.Configf("cfl: max_dt must be positive and finite, got %v", c.MaxDt)
	case c.InitialDt < 0 || c.InitialDt > c.MaxDt:
		return dynamo.Configf("cfl: initial_dt must be in [0, max_dt], got %v", c.InitialDt)
	case !(c.Threshold >= 0):
		return dynamo.Configf("cfl: threshold must be non-negative, got %v", c.Threshold)
	}
	return nil
}

// VelocitySource reports the current maximum flow speed.
type VelocitySource interface {
	MaxSpeed() (float64, error)
}

// CFL adapts the timestep to the advective limit safety*dx/max|u|. The
// result moves by at most the configured change factors per update and
// never exceeds MaxDt.
type CFL struct {
	cfg CFLConfig
	dt  float64
}

func NewCFL(cfg CFLConfig) (*CFL, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &CFL{cfg: cfg}
	c.Reset()
	return c, nil
}

func (c *CFL) Config() CFLConfig { return c.cfg }

// Stored returns the timestep most recently chosen.
func (c *CFL) Stored() float64 { return c.dt }

// Reset restores the initial timestep.
func (c *CFL) Reset() {
	c.dt = c.cfg.InitialDt
	if c.dt == 0 {
		c.dt = c.cfg.MaxDt
	}
}

// ComputeTimestep returns the timestep for the given iteration. The flow
// speed is only sampled on iterations that are a multiple of the cadence.
func (c *CFL) ComputeTimestep(iteration int, src VelocitySource) (float64, error) {
	if iteration%c.cfg.Cadence != 0 {
		return c.dt, nil
	}

	speed, err := src.MaxSpeed()
	if err != nil {
		return c.dt, err
	}
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed < 0 {
		return c.dt, fmt.Errorf("%w: max speed %v", dynamo.ErrNumericalInstability, speed)
	}

	prev := c.dt
	cand := math.Inf(1)
	if speed > 0 {
		cand = c.cfg.Safety * c.cfg.Dx / speed
	}

	dt := math.Min(cand, math.Min(c.cfg.MaxDt, c.cfg.MaxChange*prev))
	dt = math.Max(dt, c.cfg.MinChange*prev)
	if math.Abs(dt-prev)/prev < c.cfg.Threshold {
		dt = prev
	}

	c.dt = dt
	return dt, nil
}

// SpeedFunc adapts a function to VelocitySource.
type SpeedFunc func() (float64, error)

func (f SpeedFunc) MaxSpeed() (float64, error) { return f() }
