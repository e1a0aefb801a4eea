package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/turb2d/internal/spectral"
)

// Spectrum holds shell-binned spectra. K[n] is the wavenumber of shell n.
type Spectrum struct {
	K []float64
	E []float64
	Z []float64
}

// TotalEnergy returns Σ E(k).
func (s Spectrum) TotalEnergy() float64 { return floats.Sum(s.E) }

// TotalEnstrophy returns Σ Z(k).
func (s Spectrum) TotalEnstrophy() float64 { return floats.Sum(s.Z) }

// Peak returns the wavenumber holding the most energy.
func (s Spectrum) Peak() float64 {
	if len(s.E) == 0 {
		return 0
	}
	return s.K[floats.MaxIdx(s.E)]
}

// Spectra bins |u|²/2 and w²/2 of the vorticity w into wavenumber shells.
func Spectra(w *spectral.Field) Spectrum {
	g := w.Grid()
	n := g.N()
	shells := int(math.Ceil(math.Sqrt2*float64(n/2))) + 1

	s := Spectrum{
		K: make([]float64, shells),
		E: make([]float64, shells),
		Z: make([]float64, shells),
	}
	for i := range s.K {
		s.K[i] = float64(i) * g.Dk()
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			c := w.At(i, j)
			p := real(c)*real(c) + imag(c)*imag(c)
			if p == 0 {
				continue
			}
			shell := int(math.Round(g.K(i, j) / g.Dk()))
			s.Z[shell] += 0.5 * p
			s.E[shell] += 0.5 * p * g.InvK2(i, j)
		}
	}
	return s
}

// SpectraFromGrid transforms grid-point vorticity on an n×n grid of side l
// and bins it.
func SpectraFromGrid(values []float64, n int, l float64) (Spectrum, error) {
	g, err := spectral.NewGrid(l, n, 1)
	if err != nil {
		return Spectrum{}, err
	}
	p := &spectral.PhysicalField{Size: n, L: l, Data: values}
	return Spectra(spectral.NewFFT(g).ToSpectral(p)), nil
}
