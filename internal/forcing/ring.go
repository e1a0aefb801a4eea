package forcing

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/turb2d/internal/dynamo"
	"github.com/san-kum/turb2d/internal/spectral"
)

// Spec parametrises the ring forcing.
type Spec struct {
	Epsilon float64 // target energy injection rate
	Kf      float64 // ring radius
	Kfw     float64 // ring width
	Seed    int64
}

// Validate checks that the ring is well defined.
func (s Spec) Validate() error {
	if !(s.Epsilon >= 0) || math.IsInf(s.Epsilon, 0) {
		return dynamo.Configf("forcing epsilon must be finite and non-negative, got %v", s.Epsilon)
	}
	if !(s.Kf > 0) || math.IsInf(s.Kf, 0) {
		return dynamo.Configf("forcing wavenumber must be positive, got %v", s.Kf)
	}
	if !(s.Kfw > 0) || math.IsInf(s.Kfw, 0) {
		return dynamo.Configf("forcing width must be positive, got %v", s.Kfw)
	}
	return nil
}

// term is one complex exponential of a real cos/sin basis function along an
// axis: the basis function equals Σ c exp(i m x) over its terms.
type term struct {
	idx int
	c   complex128
}

// Ring draws forcing fields. Randomness is sampled on the real cosine/sine
// basis, one standard normal per basis function, and then assembled into
// Hermitian Fourier coefficients. A Ring is not safe for concurrent use; the
// draw sequence is fully determined by the seed.
type Ring struct {
	grid *spectral.Grid
	spec Spec
	eta  float64
	rng  *rand.Rand

	amp   [][]float64
	basis [][]term
}

func NewRing(g *spectral.Grid, spec Spec) (*Ring, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	r := &Ring{
		grid: g,
		spec: spec,
		eta:  spec.Epsilon * spec.Kf * spec.Kf,
		rng:  rand.New(rand.NewSource(spec.Seed)),
	}
	r.buildBasis()
	r.buildAmplitudes()
	return r, nil
}

// buildBasis maps real coefficient index a to its complex terms. Index a
// carries mode a/2 as cos(mx) for even a and -sin(mx) for odd a.
func (r *Ring) buildBasis() {
	n := r.grid.N()
	r.basis = make([][]term, n)
	index := func(m int) int {
		if m < 0 {
			return n + m
		}
		return m
	}
	for a := 0; a < n; a++ {
		m := a / 2
		switch {
		case m == 0 && a%2 == 0:
			r.basis[a] = []term{{0, 1}}
		case m == 0:
			// sin(0x) vanishes
		case a%2 == 0:
			r.basis[a] = []term{{index(m), 0.5}, {index(-m), 0.5}}
		default:
			r.basis[a] = []term{{index(m), 0.5i}, {index(-m), -0.5i}}
		}
	}
}

func (r *Ring) buildAmplitudes() {
	n := r.grid.N()
	dk := r.grid.Dk()
	kf, kfw := r.spec.Kf, r.spec.Kfw
	norm := math.Sqrt(kfw * kfw * math.Pi / 2)

	r.amp = make([][]float64, n)
	for a := 0; a < n; a++ {
		r.amp[a] = make([]float64, n)
		kx := float64(a/2) * dk
		for b := 0; b < n; b++ {
			ky := float64(b/2) * dk
			k := math.Hypot(kx, ky)
			if k == 0 {
				continue
			}
			p1 := math.Exp(-(k-kf)*(k-kf)/(2*kfw*kfw)) / norm
			p2 := p1 / (2 * math.Pi * k)
			zeros := 0
			if kx == 0 {
				zeros++
			}
			if ky == 0 {
				zeros++
			}
			pc := p2 / math.Pow(2, float64(zeros-2))
			r.amp[a][b] = math.Sqrt(pc / 2 * dk * dk)
		}
	}
}

func (r *Ring) Spec() Spec { return r.spec }

// Eta is the target enstrophy injection rate Epsilon*Kf².
func (r *Ring) Eta() float64 { return r.eta }

// Reset reseeds the generator.
func (r *Ring) Reset(seed int64) {
	r.spec.Seed = seed
	r.rng = rand.New(rand.NewSource(seed))
}

// Generate draws the forcing held constant over a step of length dt and
// writes it into out. The amplitude scales as sqrt(2*eta/dt) so that the
// injection rate is independent of the step. Exactly N² normal deviates are
// consumed per call; none are consumed when dt is rejected.
func (r *Ring) Generate(dt float64, out *spectral.Field) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: forcing requires a positive finite dt, got %v", dynamo.ErrInvalidTimestep, dt)
	}
	if !out.Grid().SameAs(r.grid) {
		return fmt.Errorf("%w: forcing field grid does not match ring grid", dynamo.ErrDimensionMismatch)
	}

	out.Zero()
	scale := math.Sqrt(2 * r.eta / dt)
	n := r.grid.N()
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			z := r.rng.NormFloat64()
			c := z * r.amp[a][b] * scale
			if c == 0 {
				continue
			}
			for _, tx := range r.basis[a] {
				row := out.Coeffs[tx.idx]
				for _, ty := range r.basis[b] {
					row[ty.idx] += complex(c, 0) * tx.c * ty.c
				}
			}
		}
	}
	return nil
}

// InjectionRate returns dt/2 * Σ|F|², the enstrophy injected by forcing f
// held over a step of length dt. Its expectation is Eta.
func (r *Ring) InjectionRate(f *spectral.Field, dt float64) float64 {
	return dt / 2 * f.Power()
}
