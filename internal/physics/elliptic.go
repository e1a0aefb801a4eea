package physics

import (
	"github.com/san-kum/turb2d/internal/spectral"
)

// Elliptic inverts the vorticity-streamfunction relation w = ∇²psi.
// The zero mode of psi is pinned to 0.
type Elliptic struct {
	grid *spectral.Grid
}

func NewElliptic(g *spectral.Grid) *Elliptic {
	return &Elliptic{grid: g}
}

// Streamfunction writes psi = -w/k² into psi.
func (e *Elliptic) Streamfunction(w, psi *spectral.Field) {
	g := e.grid
	n := g.N()
	spectral.ParallelFor(n, 8, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < n; j++ {
				psi.Coeffs[i][j] = -w.Coeffs[i][j] * complex(g.InvK2(i, j), 0)
			}
		}
	})
}

// Velocity writes u = (-∂y psi, ∂x psi) into ux and uy.
func (e *Elliptic) Velocity(w, ux, uy *spectral.Field) {
	g := e.grid
	n := g.N()
	spectral.ParallelFor(n, 8, func(start, end int) {
		for i := start; i < end; i++ {
			kx := g.Kx(i)
			for j := 0; j < n; j++ {
				s := w.Coeffs[i][j] * complex(g.InvK2(i, j), 0)
				ux.Coeffs[i][j] = complex(0, g.Ky(j)) * s
				uy.Coeffs[i][j] = complex(0, -kx) * s
			}
		}
	})
}

// Laplacian writes -k² f into out.
func (e *Elliptic) Laplacian(f, out *spectral.Field) {
	g := e.grid
	for i := range f.Coeffs {
		for j := range f.Coeffs[i] {
			out.Coeffs[i][j] = -f.Coeffs[i][j] * complex(g.K2(i, j), 0)
		}
	}
}

// Gradient writes (∂x f, ∂y f) into dx and dy.
func (e *Elliptic) Gradient(f, dx, dy *spectral.Field) {
	g := e.grid
	for i := range f.Coeffs {
		kx := g.Kx(i)
		for j := range f.Coeffs[i] {
			c := f.Coeffs[i][j]
			dx.Coeffs[i][j] = complex(0, kx) * c
			dy.Coeffs[i][j] = complex(0, g.Ky(j)) * c
		}
	}
}
