// Package sweep runs a grid of configurations described in YAML.
package sweep

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/turb2d/internal/config"
	"github.com/san-kum/turb2d/internal/dynamo"
)

// Sweep is a parameter grid over a base configuration:
//
//	name: kf-scan
//	preset: quick
//	params:
//	  forcing.kf: [8, 12, 16]
//	  forcing.epsilon: [0.5, 1]
//	objective: mean_E
type Sweep struct {
	Name      string               `yaml:"name"`
	Preset    string               `yaml:"preset"`
	Params    map[string][]float64 `yaml:"params"`
	Objective string               `yaml:"objective"`
}

// Point is one assignment of every swept parameter.
type Point map[string]float64

func (p Point) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, p[k])
	}
	return strings.Join(parts, " ")
}

var setters = map[string]func(c *config.Config, v float64){
	"domain.resolution": func(c *config.Config, v float64) { c.Domain.Resolution = int(v) },
	"domain.length":     func(c *config.Config, v float64) { c.Domain.Length = v },
	"forcing.epsilon":   func(c *config.Config, v float64) { c.Forcing.Epsilon = v },
	"forcing.kf":        func(c *config.Config, v float64) { c.Forcing.Kf = v },
	"forcing.kfw":       func(c *config.Config, v float64) { c.Forcing.Kfw = v },
	"forcing.seed":      func(c *config.Config, v float64) { c.Forcing.Seed = int64(v) },
	"physics.viscosity": func(c *config.Config, v float64) { c.Physics.Viscosity = &v },
	"physics.friction":  func(c *config.Config, v float64) { c.Physics.Friction = &v },
	"cfl.safety":        func(c *config.Config, v float64) { c.CFL.Safety = v },
	"solver.stop_time":  func(c *config.Config, v float64) { c.Solver.StopSimTime = v },
}

// Parameters lists the names a sweep may vary.
func Parameters() []string {
	names := make([]string, 0, len(setters))
	for n := range setters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func Load(path string) (*Sweep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Sweep
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Sweep) Validate() error {
	if len(s.Params) == 0 {
		return dynamo.Configf("sweep %q has no params", s.Name)
	}
	for name, values := range s.Params {
		if _, ok := setters[name]; !ok {
			return dynamo.Configf("unknown sweep parameter %q (available: %v)", name, Parameters())
		}
		if len(values) == 0 {
			return dynamo.Configf("sweep parameter %q has no values", name)
		}
	}
	return nil
}

// Points expands the grid. The last parameter in sorted order varies
// fastest.
func (s *Sweep) Points() []Point {
	names := make([]string, 0, len(s.Params))
	for n := range s.Params {
		names = append(names, n)
	}
	sort.Strings(names)

	points := []Point{{}}
	for _, name := range names {
		next := make([]Point, 0, len(points)*len(s.Params[name]))
		for _, p := range points {
			for _, v := range s.Params[name] {
				q := make(Point, len(p)+1)
				for k, x := range p {
					q[k] = x
				}
				q[name] = v
				next = append(next, q)
			}
		}
		points = next
	}
	return points
}

// Apply returns a copy of base with the point's values set.
func Apply(base *config.Config, p Point) (*config.Config, error) {
	cfg := base.Clone()
	for name, v := range p {
		set, ok := setters[name]
		if !ok {
			return nil, dynamo.Configf("unknown sweep parameter %q", name)
		}
		set(cfg, v)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("point %s: %w", p, err)
	}
	return cfg, nil
}

// Runner executes one configuration and returns the stored run id.
type Runner func(ctx context.Context, cfg *config.Config, p Point) (string, *dynamo.Result, error)

// Result is the outcome of one grid point.
type Result struct {
	Point  Point
	RunID  string
	Result *dynamo.Result
	Err    error
}

// Run executes every point in order. Failing points are recorded and the
// sweep continues; only cancellation stops it early.
func (s *Sweep) Run(ctx context.Context, base *config.Config, run Runner) ([]Result, error) {
	points := s.Points()
	results := make([]Result, 0, len(points))
	for _, p := range points {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		r := Result{Point: p}
		cfg, err := Apply(base, p)
		if err != nil {
			r.Err = err
		} else {
			r.RunID, r.Result, r.Err = run(ctx, cfg, p)
		}
		results = append(results, r)
	}
	return results, nil
}

// Best returns the successful result with the smallest value of metric.
func Best(results []Result, metric string) (Result, bool) {
	best, bestVal, found := Result{}, math.Inf(1), false
	for _, r := range results {
		if r.Err != nil || r.Result == nil {
			continue
		}
		v, ok := r.Result.Metrics[metric]
		if !ok || math.IsNaN(v) {
			continue
		}
		if v < bestVal {
			best, bestVal, found = r, v, true
		}
	}
	return best, found
}
