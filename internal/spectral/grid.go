package spectral

import (
	"math"

	"github.com/san-kum/turb2d/internal/dynamo"
)

// Grid enumerates the (kx, ky) modes of an N×N doubly periodic domain of side L.
type Grid struct {
	l       float64
	n       int
	m       int
	dealias float64
	dk      float64
	cutoff  float64

	modes []int
	k     []float64
	k2    [][]float64
	invK2 [][]float64
}

// NewGrid builds the wavenumber tables. N must be even and at least 4 so the
// real-FFT layout has a well defined Nyquist index; the padded transform size
// is ceil(dealias*N) rounded up to an even number.
func NewGrid(l float64, n int, dealias float64) (*Grid, error) {
	if !(l > 0) || math.IsInf(l, 0) {
		return nil, dynamo.Configf("domain length must be positive and finite, got %v", l)
	}
	if n < 4 || n%2 != 0 {
		return nil, dynamo.Configf("resolution must be even and >= 4, got %d", n)
	}
	if !(dealias >= 1) || math.IsInf(dealias, 0) {
		return nil, dynamo.Configf("dealias factor must be >= 1, got %v", dealias)
	}

	m := int(math.Ceil(dealias*float64(n) - 1e-9))
	if m%2 != 0 {
		m++
	}

	g := &Grid{
		l:       l,
		n:       n,
		m:       m,
		dealias: dealias,
		dk:      2 * math.Pi / l,
		cutoff:  float64(n) / (2 * dealias),
		modes:   make([]int, n),
		k:       make([]float64, n),
		k2:      make([][]float64, n),
		invK2:   make([][]float64, n),
	}

	for i := 0; i < n; i++ {
		if i < n/2 {
			g.modes[i] = i
		} else {
			g.modes[i] = i - n
		}
		g.k[i] = float64(g.modes[i]) * g.dk
	}

	for i := 0; i < n; i++ {
		g.k2[i] = make([]float64, n)
		g.invK2[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			k2 := g.k[i]*g.k[i] + g.k[j]*g.k[j]
			g.k2[i][j] = k2
			if i != 0 || j != 0 {
				g.invK2[i][j] = 1 / k2
			}
		}
	}

	return g, nil
}

func (g *Grid) N() int                 { return g.n }
func (g *Grid) M() int                 { return g.m }
func (g *Grid) L() float64             { return g.l }
func (g *Grid) Dk() float64            { return g.dk }
func (g *Grid) Dx() float64            { return g.l / float64(g.n) }
func (g *Grid) DealiasFactor() float64 { return g.dealias }

// Cutoff is the largest mode number kept by the dealiasing mask.
func (g *Grid) Cutoff() float64 { return g.cutoff }

// Mode returns the signed integer mode number stored at index i.
func (g *Grid) Mode(i int) int { return g.modes[i] }

// Modes returns the signed mode numbers of one axis in index order.
func (g *Grid) Modes() []int {
	return append([]int(nil), g.modes...)
}

func (g *Grid) Kx(i int) float64 { return g.k[i] }
func (g *Grid) Ky(j int) float64 { return g.k[j] }

func (g *Grid) K2(i, j int) float64 { return g.k2[i][j] }
func (g *Grid) K(i, j int) float64  { return math.Sqrt(g.k2[i][j]) }

// InvK2 returns 1/k², defined as exactly 0 at the zero mode.
func (g *Grid) InvK2(i, j int) float64 { return g.invK2[i][j] }

func (g *Grid) IsZero(i, j int) bool { return i == 0 && j == 0 }

// Nyquist reports whether index i is the unpaired N/2 index.
func (g *Grid) Nyquist(i int) bool { return i == g.n/2 }

// Dealiased reports whether mode (i, j) is removed by the 3/2 rule: either
// axis mode number exceeds N/(2f), or the index is a Nyquist index.
func (g *Grid) Dealiased(i, j int) bool {
	if g.Nyquist(i) || g.Nyquist(j) {
		return true
	}
	return math.Abs(float64(g.modes[i])) > g.cutoff || math.Abs(float64(g.modes[j])) > g.cutoff
}

// PadIndex maps native index i to its position on the padded M-point axis.
func (g *Grid) PadIndex(i int) int {
	if m := g.modes[i]; m < 0 {
		return g.m + m
	}
	return g.modes[i]
}

// Mirror returns the index holding the mode opposite to index i.
func (g *Grid) Mirror(i int) int {
	if i == 0 {
		return 0
	}
	return g.n - i
}

// SameAs reports whether two grids describe the same discretisation.
func (g *Grid) SameAs(o *Grid) bool {
	return g == o || (g.n == o.n && g.m == o.m && g.l == o.l)
}
