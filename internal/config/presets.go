package config

import "sort"

// Preset is a named starting configuration.
type Preset struct {
	Description string
	Build       func() *Config
}

var Presets = map[string]Preset{
	"quick": {
		Description: "64² forced run at kf=10, one time unit",
		Build: func() *Config {
			c := DefaultConfig()
			c.Domain.Resolution = 64
			c.Forcing.Kf = 10
			c.Solver.StopSimTime = 1
			return c
		},
	},
	"standard": {
		Description: "256² forced run at kf=50 to t=5",
		Build:       DefaultConfig,
	},
	"paper": {
		Description: "4096² forced run at kf=50 to t=5",
		Build: func() *Config {
			c := DefaultConfig()
			c.Domain.Resolution = 4096
			c.Solver.LogCadence = 100
			return c
		},
	},
	"decay": {
		Description: "128² freely decaying turbulence from a random field",
		Build: func() *Config {
			c := DefaultConfig()
			nu, alpha := 5e-4, 0.0
			c.Domain.Resolution = 128
			c.Forcing.Enabled = false
			c.Physics.Viscosity = &nu
			c.Physics.Friction = &alpha
			c.CFL.MaxDt = 0.01
			c.Solver.StopSimTime = 10
			c.Analysis.SnapshotsDt = 0.5
			c.Analysis.ScalarsDt = 0.05
			c.Initial = InitialConfig{Type: "random", K0: 8, Amplitude: 10, Seed: 1}
			return c
		},
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.Build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
