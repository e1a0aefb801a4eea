package metrics

import (
	"github.com/san-kum/turb2d/internal/physics"
	"github.com/san-kum/turb2d/internal/spectral"
)

// Evaluation derives the fields diagnostics need from a vorticity field.
// Derived fields are computed on first use and cached for the lifetime of
// the Evaluation, which must not outlive a step.
type Evaluation struct {
	W      *spectral.Field
	Params physics.Params

	grid     *spectral.Grid
	tr       spectral.Transform
	elliptic *physics.Elliptic

	psi    *spectral.Field
	ux, uy *spectral.Field
}

func NewEvaluation(w *spectral.Field, p physics.Params, tr spectral.Transform) *Evaluation {
	g := w.Grid()
	return &Evaluation{
		W:        w,
		Params:   p,
		grid:     g,
		tr:       tr,
		elliptic: physics.NewElliptic(g),
	}
}

func (e *Evaluation) Grid() *spectral.Grid { return e.grid }

func (e *Evaluation) Streamfunction() *spectral.Field {
	if e.psi == nil {
		e.psi = spectral.NewField(e.grid)
		e.elliptic.Streamfunction(e.W, e.psi)
	}
	return e.psi
}

func (e *Evaluation) Velocity() (ux, uy *spectral.Field) {
	if e.ux == nil {
		e.ux, e.uy = spectral.NewField(e.grid), spectral.NewField(e.grid)
		e.elliptic.Velocity(e.W, e.ux, e.uy)
	}
	return e.ux, e.uy
}

// Physical transforms f to the native grid.
func (e *Evaluation) Physical(f *spectral.Field) *spectral.PhysicalField {
	return e.tr.ToPhysical(f)
}

// weightedPower returns Σ weight(k) |f(k)|².
func weightedPower(f *spectral.Field, weight func(i, j int) float64) float64 {
	sum := 0.0
	for i := range f.Coeffs {
		for j, c := range f.Coeffs[i] {
			sum += weight(i, j) * (real(c)*real(c) + imag(c)*imag(c))
		}
	}
	return sum
}
