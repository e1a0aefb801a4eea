package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/turb2d/internal/dynamo"
	"github.com/san-kum/turb2d/internal/spectral"
)

// System is an evolution equation dx/dt + L x = F(x, t) whose linear
// operator L is diagonal in spectral space.
type System interface {
	// Linear returns the per-mode coefficient of L.
	Linear() [][]float64
	// Explicit writes F(x, t) into out.
	Explicit(x *spectral.Field, t float64, out *spectral.Field) error
}

// IMEX steps a System with an additive Runge-Kutta tableau. Stage i solves
//
//	(1 + dt H_ii L) X_i = X_0 + dt Σ_{j<i} (A_ij F_j - H_ij L X_j)
//
// mode by mode, and the new value is the last stage X_s.
type IMEX struct {
	tab Tableau

	grid   *spectral.Grid
	stages []*spectral.Field
	rhs    []*spectral.Field
}

func NewIMEX(tab Tableau) *IMEX {
	return &IMEX{tab: tab}
}

func (m *IMEX) Tableau() Tableau { return m.tab }

func (m *IMEX) ensureScratch(g *spectral.Grid) {
	if m.grid != nil && m.grid.SameAs(g) {
		return
	}
	s := m.tab.Stages()
	m.grid = g
	m.stages = make([]*spectral.Field, s+1)
	m.rhs = make([]*spectral.Field, s)
	for i := range m.stages {
		m.stages[i] = spectral.NewField(g)
	}
	for i := range m.rhs {
		m.rhs[i] = spectral.NewField(g)
	}
}

// Step advances x from t to t+dt in place. On error x is left unchanged.
func (m *IMEX) Step(sys System, x *spectral.Field, t, dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: integrator requires a positive finite dt, got %v", dynamo.ErrInvalidTimestep, dt)
	}

	g := x.Grid()
	m.ensureScratch(g)
	lin := sys.Linear()
	if len(lin) != g.N() {
		return fmt.Errorf("%w: linear operator has %d rows, field has %d", dynamo.ErrDimensionMismatch, len(lin), g.N())
	}

	s := m.tab.Stages()
	m.stages[0].CopyFrom(x)

	for i := 1; i <= s; i++ {
		if err := sys.Explicit(m.stages[i-1], t+m.tab.C[i-1]*dt, m.rhs[i-1]); err != nil {
			return fmt.Errorf("stage %d: %w", i, err)
		}
		m.solveStage(i, lin, dt)
		if !m.stages[i].IsFinite() {
			return fmt.Errorf("%w: non-finite value at stage %d", dynamo.ErrNumericalInstability, i)
		}
	}

	x.CopyFrom(m.stages[s])
	return nil
}

func (m *IMEX) solveStage(i int, lin [][]float64, dt float64) {
	a, h := m.tab.A[i], m.tab.H[i]
	x0 := m.stages[0]
	out := m.stages[i]
	n := m.grid.N()

	spectral.ParallelFor(n, 4, func(start, end int) {
		for r := start; r < end; r++ {
			lrow := lin[r]
			for c := 0; c < n; c++ {
				l := lrow[c]
				acc := x0.Coeffs[r][c]
				for j := 0; j < i; j++ {
					if a[j] != 0 {
						acc += complex(dt*a[j], 0) * m.rhs[j].Coeffs[r][c]
					}
					if h[j] != 0 {
						acc -= complex(dt*h[j]*l, 0) * m.stages[j].Coeffs[r][c]
					}
				}
				out.Coeffs[r][c] = acc / complex(1+dt*h[i]*l, 0)
			}
		}
	})
}
