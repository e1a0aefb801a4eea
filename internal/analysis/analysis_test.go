package analysis

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/turb2d/internal/metrics"
	"github.com/san-kum/turb2d/internal/physics"
	"github.com/san-kum/turb2d/internal/spectral"
)

func TestSpectra_TotalsMatchDomainAverages(t *testing.T) {
	g, _ := spectral.NewGrid(2*math.Pi, 32, 1.5)
	rng := rand.New(rand.NewSource(8))
	w := spectral.NewField(g)
	for i := 0; i < g.N(); i++ {
		for j := 0; j < g.N(); j++ {
			if !g.IsZero(i, j) {
				w.Set(i, j, complex(rng.NormFloat64(), rng.NormFloat64()))
			}
		}
	}
	w.Symmetrize()

	s := Spectra(w)
	ev := metrics.NewEvaluation(w, physics.Params{}, spectral.NewFFT(g))

	if e := metrics.Energy(ev); math.Abs(s.TotalEnergy()-e) > 1e-12*e {
		t.Errorf("spectrum energy %v, domain average %v", s.TotalEnergy(), e)
	}
	if z := metrics.Enstrophy(ev); math.Abs(s.TotalEnstrophy()-z) > 1e-12*z {
		t.Errorf("spectrum enstrophy %v, domain average %v", s.TotalEnstrophy(), z)
	}
}

func TestSpectra_SingleShell(t *testing.T) {
	g, _ := spectral.NewGrid(4*math.Pi, 16, 1)
	w := spectral.NewField(g)
	// mode (3, 4) has |k| = 5 dk
	w.Set(3, 4, 1)
	w.Set(13, 12, 1)

	s := Spectra(w)
	for n, z := range s.Z {
		if n == 5 && z != 1 {
			t.Errorf("Z(5) = %v, want 1", z)
		}
		if n != 5 && z != 0 {
			t.Errorf("Z(%d) = %v, want 0", n, z)
		}
	}
	if s.K[5] != 2.5 {
		t.Errorf("K[5] = %v, want 2.5", s.K[5])
	}
	if math.Abs(s.E[5]-1/6.25) > 1e-15 || s.Peak() != 2.5 {
		t.Errorf("E(5) = %v, peak %v", s.E[5], s.Peak())
	}
}

func TestSpectraFromGrid(t *testing.T) {
	n := 16
	values := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			y := float64(j) * 2 * math.Pi / float64(n)
			values[i*n+j] = 2 * math.Cos(3*y)
		}
	}
	s, err := SpectraFromGrid(values, n, 2*math.Pi)
	if err != nil {
		t.Fatal(err)
	}
	// <w²>/2 = 1, all in shell 3
	if math.Abs(s.Z[3]-1) > 1e-12 || math.Abs(s.TotalEnstrophy()-1) > 1e-12 {
		t.Errorf("Z(3) = %v, total %v", s.Z[3], s.TotalEnstrophy())
	}

	if _, err := SpectraFromGrid(values[:9], 3, 1); err == nil {
		t.Error("expected error for odd size")
	}
}

func TestSummarize(t *testing.T) {
	times := []float64{0, 1, 2, 3, 4}
	values := []float64{100, 2, 4, 4, 6}

	s := Summarize(times, values, 1)
	if s.Samples != 4 || s.Mean != 4 || s.Min != 2 || s.Max != 6 {
		t.Errorf("unexpected summary %+v", s)
	}
	if math.Abs(s.Std-math.Sqrt(8.0/3.0)) > 1e-12 {
		t.Errorf("std = %v", s.Std)
	}

	if empty := Summarize(times, values, 10); empty.Samples != 0 {
		t.Errorf("expected empty window, got %+v", empty)
	}
}

func TestPowerSpectrum(t *testing.T) {
	n := 64
	data := make([]float64, n)
	for i := range data {
		data[i] = 5 + math.Sin(2*math.Pi*4*float64(i)/float64(n))
	}
	ps := PowerSpectrum(data)
	if len(ps) != n/2 {
		t.Fatalf("len = %d", len(ps))
	}
	peak := 0
	for i, v := range ps {
		if v > ps[peak] {
			peak = i
		}
	}
	if peak != 4 {
		t.Errorf("peak at %d, want 4", peak)
	}
	if ps[0] > 1e-9 {
		t.Errorf("mean not removed: %v", ps[0])
	}
}
