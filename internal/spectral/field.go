package spectral

import (
	"math"
	"math/cmplx"

	"github.com/san-kum/turb2d/internal/dynamo"
)

// Field holds the Fourier coefficients of a real periodic field,
// f(x, y) = Σ c[i][j] exp(i(kx_i x + ky_j y)).
type Field struct {
	grid   *Grid
	Coeffs [][]complex128
}

func NewField(g *Grid) *Field {
	c := make([][]complex128, g.n)
	for i := range c {
		c[i] = make([]complex128, g.n)
	}
	return &Field{grid: g, Coeffs: c}
}

func (f *Field) Grid() *Grid { return f.grid }

func (f *Field) At(i, j int) complex128     { return f.Coeffs[i][j] }
func (f *Field) Set(i, j int, v complex128) { f.Coeffs[i][j] = v }

func (f *Field) Clone() *Field {
	c := NewField(f.grid)
	c.CopyFrom(f)
	return c
}

func (f *Field) CopyFrom(src *Field) {
	for i := range f.Coeffs {
		copy(f.Coeffs[i], src.Coeffs[i])
	}
}

func (f *Field) Zero() {
	for i := range f.Coeffs {
		row := f.Coeffs[i]
		for j := range row {
			row[j] = 0
		}
	}
}

// Scale multiplies every coefficient by a.
func (f *Field) Scale(a float64) {
	s := complex(a, 0)
	for i := range f.Coeffs {
		row := f.Coeffs[i]
		for j := range row {
			row[j] *= s
		}
	}
}

// AddScaled sets f += a*src.
func (f *Field) AddScaled(src *Field, a float64) {
	s := complex(a, 0)
	for i := range f.Coeffs {
		row, srow := f.Coeffs[i], src.Coeffs[i]
		for j := range row {
			row[j] += s * srow[j]
		}
	}
}

// IsFinite reports whether every coefficient is free of NaN and Inf.
func (f *Field) IsFinite() bool {
	for i := range f.Coeffs {
		for _, v := range f.Coeffs[i] {
			if !dynamo.Finite(real(v)) || !dynamo.Finite(imag(v)) {
				return false
			}
		}
	}
	return true
}

// MaxAbs returns the largest coefficient modulus.
func (f *Field) MaxAbs() float64 {
	m := 0.0
	for i := range f.Coeffs {
		for _, v := range f.Coeffs[i] {
			if a := cmplx.Abs(v); a > m {
				m = a
			}
		}
	}
	return m
}

// Power returns Σ|c|², the domain average of f² for a real field.
func (f *Field) Power() float64 {
	sum := 0.0
	for i := range f.Coeffs {
		for _, v := range f.Coeffs[i] {
			sum += real(v)*real(v) + imag(v)*imag(v)
		}
	}
	return sum
}

// Mean returns the zero-mode coefficient.
func (f *Field) Mean() float64 { return real(f.Coeffs[0][0]) }

// Symmetrize projects f onto Hermitian fields, c(-k) = conj(c(k)), and
// clears the Nyquist row and column.
func (f *Field) Symmetrize() {
	g := f.grid
	n := g.n
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if g.Nyquist(i) || g.Nyquist(j) {
				f.Coeffs[i][j] = 0
				continue
			}
			mi, mj := g.Mirror(i), g.Mirror(j)
			if mi < i || (mi == i && mj < j) {
				continue
			}
			avg := (f.Coeffs[i][j] + cmplx.Conj(f.Coeffs[mi][mj])) / 2
			f.Coeffs[i][j] = avg
			f.Coeffs[mi][mj] = cmplx.Conj(avg)
		}
	}
}

// PhysicalField holds grid-point values on a Size×Size grid in row-major
// order; Data[i*Size+j] is the value at (x_i, y_j).
type PhysicalField struct {
	Size int
	L    float64
	Data []float64
}

func NewPhysicalField(size int, l float64) *PhysicalField {
	return &PhysicalField{Size: size, L: l, Data: make([]float64, size*size)}
}

func (p *PhysicalField) At(i, j int) float64     { return p.Data[i*p.Size+j] }
func (p *PhysicalField) Set(i, j int, v float64) { p.Data[i*p.Size+j] = v }

// Coord returns the coordinate of grid index i along either axis.
func (p *PhysicalField) Coord(i int) float64 {
	return float64(i) * p.L / float64(p.Size)
}

func (p *PhysicalField) Clone() *PhysicalField {
	c := NewPhysicalField(p.Size, p.L)
	copy(c.Data, p.Data)
	return c
}

// Magnitude returns sqrt(a² + b²) pointwise.
func Magnitude(a, b *PhysicalField) *PhysicalField {
	out := NewPhysicalField(a.Size, a.L)
	for i := range out.Data {
		out.Data[i] = math.Hypot(a.Data[i], b.Data[i])
	}
	return out
}
