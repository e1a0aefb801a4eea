package sim

import (
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/san-kum/turb2d/internal/dynamo"
	"github.com/san-kum/turb2d/internal/spectral"
)

// InitialCondition selects the starting vorticity.
//
//	zero    fluid at rest
//	random  band-limited Gaussian field with modal amplitude ∝ k exp(-(k/K0)²)
//	        and rms vorticity Amplitude
type InitialCondition struct {
	Type      string
	K0        float64
	Amplitude float64
	Seed      int64
}

func (ic InitialCondition) Validate() error {
	switch ic.Type {
	case "", "zero":
		return nil
	case "random":
		if !(ic.K0 > 0) {
			return dynamo.Configf("initial k0 must be positive, got %v", ic.K0)
		}
		if !(ic.Amplitude >= 0) {
			return dynamo.Configf("initial amplitude must be non-negative, got %v", ic.Amplitude)
		}
		return nil
	}
	return dynamo.Configf("unknown initial condition %q (available: zero, random)", ic.Type)
}

// Build returns the initial vorticity on g.
func (ic InitialCondition) Build(g *spectral.Grid) (*spectral.Field, error) {
	if err := ic.Validate(); err != nil {
		return nil, err
	}
	w := spectral.NewField(g)
	if ic.Type != "random" {
		return w, nil
	}

	rng := rand.New(rand.NewSource(ic.Seed))
	for i := 0; i < g.N(); i++ {
		for j := 0; j < g.N(); j++ {
			if g.Dealiased(i, j) || g.IsZero(i, j) {
				continue
			}
			k := g.K(i, j) / g.Dk()
			amp := k * math.Exp(-(k/ic.K0)*(k/ic.K0))
			phase := 2 * math.Pi * rng.Float64()
			w.Set(i, j, complex(amp*rng.NormFloat64(), 0)*cmplx.Rect(1, phase))
		}
	}
	w.Symmetrize()

	if rms := math.Sqrt(w.Power()); rms > 0 {
		w.Scale(ic.Amplitude / rms)
	}
	return w, nil
}
