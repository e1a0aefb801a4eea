package spectral

import (
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Transform converts fields between spectral and physical representation.
// The Dealiased variants work on the padded M×M grid so that pointwise
// products of resolved modes do not alias back onto them.
type Transform interface {
	ToPhysical(f *Field) *PhysicalField
	ToSpectral(p *PhysicalField) *Field
	ToPhysicalDealiased(f *Field) *PhysicalField
	ToSpectralDealiased(p *PhysicalField) *Field
}

// FFT implements Transform with gonum's real and complex FFTs: a real
// transform along each row and a complex transform along each kept column.
// Plans and scratch buffers are built once per size and reused.
type FFT struct {
	grid   *Grid
	native *plan
	padded *plan
}

// plan holds the transforms and half-spectrum scratch for one size.
type plan struct {
	mu    sync.Mutex
	size  int
	half  int
	index func(int) int
	rows  *fourier.FFT
	cols  *fourier.CmplxFFT
	spec  []complex128 // size × half, row-major
	col   []complex128
}

func newPlan(size int, index func(int) int) *plan {
	half := size/2 + 1
	return &plan{
		size:  size,
		half:  half,
		index: index,
		rows:  fourier.NewFFT(size),
		cols:  fourier.NewCmplxFFT(size),
		spec:  make([]complex128, size*half),
		col:   make([]complex128, size),
	}
}

func NewFFT(g *Grid) *FFT {
	t := &FFT{grid: g}
	t.native = newPlan(g.n, func(i int) int { return i })
	if g.m == g.n {
		t.padded = t.native
	} else {
		t.padded = newPlan(g.m, g.PadIndex)
	}
	return t
}

func (t *FFT) Grid() *Grid { return t.grid }

func (t *FFT) ToPhysical(f *Field) *PhysicalField {
	return t.toPhysical(f, t.native)
}

func (t *FFT) ToPhysicalDealiased(f *Field) *PhysicalField {
	return t.toPhysical(f, t.padded)
}

func (t *FFT) ToSpectral(p *PhysicalField) *Field {
	return t.toSpectral(p, t.native)
}

func (t *FFT) ToSpectralDealiased(p *PhysicalField) *Field {
	return t.toSpectral(p, t.padded)
}

// toPhysical scatters the ky >= 0 half of the coefficients, inverts the
// columns and then each row as a real sequence. The coefficients must be
// Hermitian; the ky < 0 half is implied by symmetry. gonum's inverse is
// unnormalised, so grid values equal Σ c exp(ik·x) directly.
func (t *FFT) toPhysical(f *Field, pl *plan) *PhysicalField {
	g := t.grid
	pl.mu.Lock()
	defer pl.mu.Unlock()

	size, half := pl.size, pl.half
	spec := pl.spec
	for i := range spec {
		spec[i] = 0
	}
	// Columns 0..N/2-1 on the padded axis hold the same modes as natively.
	kept := g.n / 2
	for i := 0; i < g.n; i++ {
		if g.Nyquist(i) {
			continue
		}
		row := spec[pl.index(i)*half:]
		for j := 0; j < kept; j++ {
			row[j] = f.Coeffs[i][j]
		}
	}

	col := pl.col
	for j := 0; j < kept; j++ {
		for i := 0; i < size; i++ {
			col[i] = spec[i*half+j]
		}
		pl.cols.Sequence(col, col)
		for i := 0; i < size; i++ {
			spec[i*half+j] = col[i]
		}
	}

	out := NewPhysicalField(size, g.l)
	for i := 0; i < size; i++ {
		pl.rows.Sequence(out.Data[i*size:(i+1)*size], spec[i*half:(i+1)*half])
	}
	return out
}

// toSpectral transforms grid values and gathers the resolved modes, leaving
// Nyquist entries zero. Modes with ky < 0 are read from their Hermitian
// partner.
func (t *FFT) toSpectral(p *PhysicalField, pl *plan) *Field {
	g := t.grid
	size, half := pl.size, pl.half
	if p.Size != size {
		panic("spectral: physical field size does not match transform")
	}
	pl.mu.Lock()
	defer pl.mu.Unlock()

	spec := pl.spec
	for i := 0; i < size; i++ {
		pl.rows.Coefficients(spec[i*half:(i+1)*half], p.Data[i*size:(i+1)*size])
	}

	kept := g.n / 2
	col := pl.col
	for j := 0; j < kept; j++ {
		for i := 0; i < size; i++ {
			col[i] = spec[i*half+j]
		}
		pl.cols.Coefficients(col, col)
		for i := 0; i < size; i++ {
			spec[i*half+j] = col[i]
		}
	}

	out := NewField(g)
	inv := 1 / float64(size*size)
	for i := 0; i < g.n; i++ {
		if g.Nyquist(i) {
			continue
		}
		pi, pm := pl.index(i), pl.index(g.Mirror(i))
		for j := 0; j < g.n; j++ {
			if g.Nyquist(j) {
				continue
			}
			var c complex128
			if j < kept {
				c = spec[pi*half+j]
			} else {
				c = cmplx.Conj(spec[pm*half+g.Mirror(j)])
			}
			out.Coeffs[i][j] = complex(real(c)*inv, imag(c)*inv)
		}
	}
	return out
}
