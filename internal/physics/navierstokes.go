package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/turb2d/internal/dynamo"
	"github.com/san-kum/turb2d/internal/spectral"
)

// Params are the dissipation coefficients of the vorticity equation.
type Params struct {
	Nu    float64 // kinematic viscosity
	Alpha float64 // linear (Rayleigh) friction
}

// NavierStokes splits the vorticity equation into the diagonal linear
// operator nu k² + alpha, treated implicitly, and the explicit part
// N(w) + F, where F is the forcing field set for the current step.
type NavierStokes struct {
	grid    *spectral.Grid
	params  Params
	adv     *Advection
	linear  [][]float64
	forcing *spectral.Field
}

func NewNavierStokes(g *spectral.Grid, tr spectral.Transform, p Params) (*NavierStokes, error) {
	if p.Nu < 0 || math.IsNaN(p.Nu) || math.IsInf(p.Nu, 0) {
		return nil, dynamo.Configf("viscosity must be finite and non-negative, got %v", p.Nu)
	}
	if p.Alpha < 0 || math.IsNaN(p.Alpha) || math.IsInf(p.Alpha, 0) {
		return nil, dynamo.Configf("friction must be finite and non-negative, got %v", p.Alpha)
	}

	n := g.N()
	lin := make([][]float64, n)
	for i := range lin {
		lin[i] = make([]float64, n)
		for j := range lin[i] {
			lin[i][j] = p.Nu*g.K2(i, j) + p.Alpha
		}
	}

	return &NavierStokes{
		grid:   g,
		params: p,
		adv:    NewAdvection(g, tr),
		linear: lin,
	}, nil
}

func (ns *NavierStokes) Grid() *spectral.Grid     { return ns.grid }
func (ns *NavierStokes) Params() Params           { return ns.params }
func (ns *NavierStokes) Advection() *Advection    { return ns.adv }
func (ns *NavierStokes) Linear() [][]float64      { return ns.linear }
func (ns *NavierStokes) Forcing() *spectral.Field { return ns.forcing }

// SetForcing installs the forcing field held constant over the next step.
// A nil field turns forcing off.
func (ns *NavierStokes) SetForcing(f *spectral.Field) {
	ns.forcing = f
}

// Explicit writes N(w) + F into out.
func (ns *NavierStokes) Explicit(w *spectral.Field, _ float64, out *spectral.Field) error {
	if !w.Grid().SameAs(ns.grid) || !out.Grid().SameAs(ns.grid) {
		return fmt.Errorf("%w: field grid does not match system grid", dynamo.ErrDimensionMismatch)
	}
	ns.adv.Compute(w, out)
	if ns.forcing != nil {
		out.AddScaled(ns.forcing, 1)
	}
	return nil
}
