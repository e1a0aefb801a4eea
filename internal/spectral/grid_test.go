package spectral

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/turb2d/internal/dynamo"
)

func TestNewGrid_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		l       float64
		n       int
		dealias float64
	}{
		{"zero length", 0, 16, 1.5},
		{"negative length", -1, 16, 1.5},
		{"infinite length", math.Inf(1), 16, 1.5},
		{"odd resolution", 2 * math.Pi, 15, 1.5},
		{"tiny resolution", 2 * math.Pi, 2, 1.5},
		{"dealias below one", 2 * math.Pi, 16, 0.9},
		{"dealias NaN", 2 * math.Pi, 16, math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrid(tt.l, tt.n, tt.dealias)
			if !errors.Is(err, dynamo.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestGrid_Wavenumbers(t *testing.T) {
	g, err := NewGrid(2*math.Pi, 8, 1.5)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}

	want := []int{0, 1, 2, 3, -4, -3, -2, -1}
	for i, m := range want {
		if g.Mode(i) != m {
			t.Errorf("Mode(%d) = %d, want %d", i, g.Mode(i), m)
		}
		if g.Kx(i) != float64(m) {
			t.Errorf("Kx(%d) = %v, want %v", i, g.Kx(i), float64(m))
		}
	}

	// resolved modes are symmetric around zero
	for i := 1; i < g.N(); i++ {
		if g.Nyquist(i) {
			continue
		}
		if g.Mode(g.Mirror(i)) != -g.Mode(i) {
			t.Errorf("mirror of index %d has mode %d, want %d", i, g.Mode(g.Mirror(i)), -g.Mode(i))
		}
	}

	zeros := 0
	for i := 0; i < g.N(); i++ {
		for j := 0; j < g.N(); j++ {
			if g.K2(i, j) == 0 {
				zeros++
			}
		}
	}
	if zeros != 1 || !g.IsZero(0, 0) {
		t.Errorf("expected exactly one zero mode at (0,0), found %d", zeros)
	}
	if g.InvK2(0, 0) != 0 {
		t.Errorf("InvK2 at zero mode = %v, want 0", g.InvK2(0, 0))
	}
	if got := g.InvK2(1, 2); math.Abs(got-1.0/5.0) > 1e-15 {
		t.Errorf("InvK2(1,2) = %v, want 0.2", got)
	}
}

func TestGrid_DomainScaling(t *testing.T) {
	g, err := NewGrid(4*math.Pi, 16, 1.5)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	if g.Dk() != 0.5 {
		t.Errorf("Dk = %v, want 0.5", g.Dk())
	}
	if g.Kx(3) != 1.5 {
		t.Errorf("Kx(3) = %v, want 1.5", g.Kx(3))
	}
	if math.Abs(g.Dx()-4*math.Pi/16) > 1e-15 {
		t.Errorf("Dx = %v", g.Dx())
	}
}

func TestGrid_DealiasMask(t *testing.T) {
	g, err := NewGrid(2*math.Pi, 64, 1.5)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	if g.M() != 96 {
		t.Errorf("padded size = %d, want 96", g.M())
	}

	tests := []struct {
		mx, my int
		masked bool
	}{
		{0, 0, false},
		{21, 0, false},
		{-21, 21, false},
		{22, 0, true},
		{0, -22, true},
		{31, 31, true},
	}
	index := func(m int) int {
		if m < 0 {
			return g.N() + m
		}
		return m
	}
	for _, tt := range tests {
		if got := g.Dealiased(index(tt.mx), index(tt.my)); got != tt.masked {
			t.Errorf("Dealiased(%d,%d) = %v, want %v", tt.mx, tt.my, got, tt.masked)
		}
	}
	if !g.Dealiased(g.N()/2, 0) {
		t.Error("Nyquist index must always be masked")
	}
}

func TestGrid_PadIndex(t *testing.T) {
	g, _ := NewGrid(2*math.Pi, 8, 1.5)
	want := map[int]int{0: 0, 1: 1, 3: 3, 5: 12 - 3, 7: 12 - 1}
	for i, p := range want {
		if got := g.PadIndex(i); got != p {
			t.Errorf("PadIndex(%d) = %d, want %d", i, got, p)
		}
	}
}

func TestGrid_OddPaddingRoundsUp(t *testing.T) {
	g, err := NewGrid(2*math.Pi, 6, 1.5)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	if g.M() != 10 {
		t.Errorf("padded size = %d, want 10", g.M())
	}
}
