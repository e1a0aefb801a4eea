package physics

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/turb2d/internal/spectral"
)

// Advection evaluates N(w) = -u·∇w with the 3/2 rule: operands are
// evaluated on the padded grid, multiplied pointwise, transformed back and
// truncated, and masked modes are zeroed.
type Advection struct {
	grid     *spectral.Grid
	tr       spectral.Transform
	elliptic *Elliptic
	pool     *spectral.FieldPool
}

func NewAdvection(g *spectral.Grid, tr spectral.Transform) *Advection {
	return &Advection{
		grid:     g,
		tr:       tr,
		elliptic: NewElliptic(g),
		pool:     spectral.NewFieldPool(g),
	}
}

// Compute writes the dealiased nonlinear term of w into out.
func (a *Advection) Compute(w, out *spectral.Field) {
	ux, uy := a.pool.Get(), a.pool.Get()
	dxw, dyw := a.pool.Get(), a.pool.Get()
	defer func() {
		a.pool.Put(ux)
		a.pool.Put(uy)
		a.pool.Put(dxw)
		a.pool.Put(dyw)
	}()

	a.elliptic.Velocity(w, ux, uy)
	a.elliptic.Gradient(w, dxw, dyw)

	pux := a.tr.ToPhysicalDealiased(ux)
	puy := a.tr.ToPhysicalDealiased(uy)
	pdx := a.tr.ToPhysicalDealiased(dxw)
	pdy := a.tr.ToPhysicalDealiased(dyw)

	prod := spectral.NewPhysicalField(pux.Size, pux.L)
	floats.MulTo(prod.Data, pux.Data, pdx.Data)
	floats.Mul(puy.Data, pdy.Data)
	floats.Add(prod.Data, puy.Data)
	floats.Scale(-1, prod.Data)

	res := a.tr.ToSpectralDealiased(prod)
	g := a.grid
	n := g.N()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if g.Dealiased(i, j) || g.IsZero(i, j) {
				out.Coeffs[i][j] = 0
				continue
			}
			out.Coeffs[i][j] = res.Coeffs[i][j]
		}
	}
}

// PhysicalVelocity returns the grid-point velocity components of w at native
// resolution.
func (a *Advection) PhysicalVelocity(w *spectral.Field) (ux, uy *spectral.PhysicalField) {
	sx, sy := a.pool.Get(), a.pool.Get()
	defer a.pool.Put(sx)
	defer a.pool.Put(sy)

	a.elliptic.Velocity(w, sx, sy)
	return a.tr.ToPhysical(sx), a.tr.ToPhysical(sy)
}

// MaxSpeed returns max |u| over the native grid.
func (a *Advection) MaxSpeed(w *spectral.Field) float64 {
	ux, uy := a.PhysicalVelocity(w)
	return floats.Max(spectral.Magnitude(ux, uy).Data)
}
