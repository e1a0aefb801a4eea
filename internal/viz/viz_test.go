package viz

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/turb2d/internal/analysis"
	"github.com/san-kum/turb2d/internal/controllers"
	"github.com/san-kum/turb2d/internal/physics"
	"github.com/san-kum/turb2d/internal/sim"
	"github.com/san-kum/turb2d/internal/spectral"
)

func wave(n int) *spectral.PhysicalField {
	p := spectral.NewPhysicalField(n, 2*math.Pi)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			p.Set(i, j, math.Sin(p.Coord(i))*math.Cos(p.Coord(j)))
		}
	}
	return p
}

func TestCanvas(t *testing.T) {
	c := NewCanvas(4, 2)
	if got := c.String(); strings.Count(got, "\n") != 2 || !strings.ContainsRune(got, brailleBlank) {
		t.Fatalf("unexpected blank canvas %q", got)
	}

	c.Set(0, 0)
	c.Set(1, 3)
	if r := c.cells[0][0]; r != brailleBlank|0x1|0x80 {
		t.Errorf("cell = %U", r)
	}
	c.Set(-1, 0)
	c.Set(100, 100)

	c.Clear()
	c.DrawLine(0, 0, 7, 7)
	lit := 0
	for _, row := range c.cells {
		for _, r := range row {
			if r != brailleBlank {
				lit++
			}
		}
	}
	if lit != 4 {
		t.Errorf("diagonal lit %d cells, want 4", lit)
	}
}

func TestCanvas_PlotLogLog(t *testing.T) {
	c := NewCanvas(10, 5)
	c.PlotLogLog([]float64{0, 1, 10, 100}, []float64{5, 1, 0.1, 0.01})
	// first and last points land in opposite corners
	if c.cells[0][0] == brailleBlank || c.cells[4][9] == brailleBlank {
		t.Errorf("corners not drawn:\n%s", c.String())
	}

	empty := NewCanvas(3, 3)
	empty.PlotLogLog([]float64{1}, []float64{1})
	if strings.ContainsFunc(empty.String(), func(r rune) bool { return r != brailleBlank && r != '\n' }) {
		t.Error("single point should draw nothing")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 8); got != "▁▂▃▄▅▆▇█" {
		t.Errorf("got %q", got)
	}
	if got := Sparkline([]float64{1, 2, 3, 4}, 2); got != "▁█" {
		t.Errorf("tail window: got %q", got)
	}
	if got := Sparkline(nil, 3); got != "───" {
		t.Errorf("empty: got %q", got)
	}
}

func TestThemes(t *testing.T) {
	defer SetTheme("ocean")

	if GetTheme("nope").Name != "ocean" {
		t.Error("unknown theme should fall back to ocean")
	}
	seen := map[string]bool{}
	for range Themes {
		seen[CurrentTheme.Name] = true
		NextTheme()
	}
	if len(seen) != len(Themes) || CurrentTheme.Name != "ocean" {
		t.Errorf("NextTheme visited %v, ended on %s", seen, CurrentTheme.Name)
	}
}

func TestDiverging(t *testing.T) {
	th := ThemeOcean
	if got := Diverging(th, 0); !strings.EqualFold(string(got), string(th.Zero)) {
		t.Errorf("zero maps to %s, want %s", got, th.Zero)
	}
	if got := Diverging(th, 5); !strings.EqualFold(string(got), string(th.Positive)) {
		t.Errorf("clamped +1 maps to %s, want %s", got, th.Positive)
	}
	if got := Diverging(th, -1); !strings.EqualFold(string(got), string(th.Negative)) {
		t.Errorf("-1 maps to %s, want %s", got, th.Negative)
	}
}

func TestShade(t *testing.T) {
	out := Shade(wave(32), 20, 6)
	lines := strings.Split(out, "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d rows, want 6", len(lines))
	}
	if n := strings.Count(out, "▀"); n != 120 {
		t.Errorf("got %d cells, want 120", n)
	}
	// zero field must not divide by zero
	_ = Shade(spectral.NewPhysicalField(8, 1), 4, 2)
}

func TestSavePlots(t *testing.T) {
	dir := t.TempDir()

	heat := filepath.Join(dir, "w.png")
	if err := SaveHeatmap(wave(16), "vorticity", heat); err != nil {
		t.Fatalf("SaveHeatmap: %v", err)
	}
	series := filepath.Join(dir, "nested", "e.png")
	if err := SaveSeries("E", "E", []float64{0, 1, 2}, []float64{1, 2, 1.5}, series); err != nil {
		t.Fatalf("SaveSeries: %v", err)
	}
	if err := SaveSeries("E", "E", []float64{0}, []float64{1, 2}, series); err == nil {
		t.Error("expected length mismatch error")
	}
	spec := filepath.Join(dir, "spec.png")
	s := analysis.Spectrum{K: []float64{0, 1, 2, 3}, E: []float64{0, 1, 0.25, 0.1}, Z: []float64{0, 1, 1, 0.9}}
	if err := SaveSpectrum(s, "spectrum", spec); err != nil {
		t.Fatalf("SaveSpectrum: %v", err)
	}

	for _, p := range []string{heat, series, spec} {
		b, err := os.ReadFile(p)
		if err != nil {
			t.Fatal(err)
		}
		if len(b) < 8 || string(b[1:4]) != "PNG" {
			t.Errorf("%s is not a PNG", p)
		}
	}
}

func testSimulator(t *testing.T) *sim.Simulator {
	t.Helper()
	s, err := sim.New(sim.Config{
		Length:      2 * math.Pi,
		Resolution:  16,
		Dealias:     1.5,
		Physics:     physics.Params{Nu: 1e-2},
		Timestepper: "RK222",
		CFL: controllers.CFLConfig{
			Safety: 0.5, Cadence: 1, MaxChange: 1.5, MinChange: 0.5,
			MaxDt: 1e-2, Threshold: 0.05,
		},
		StopIteration: 6,
		SnapshotsDt:   1,
		ScalarsDt:     1,
		Initial:       sim.InitialCondition{Type: "random", K0: 3, Amplitude: 1, Seed: 4},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestFeed(t *testing.T) {
	s := testSimulator(t)
	feed := NewFeed(s, 2)
	s.AddObserver(feed)

	for i := 0; i < 2; i++ {
		if err := s.Advance(); err != nil {
			t.Fatal(err)
		}
	}
	fr := <-feed.Frames()
	if fr.Iteration != 2 || fr.Vorticity.Size != 16 || fr.Energy <= 0 {
		t.Errorf("unexpected frame %+v", fr)
	}
	if math.Abs(fr.Spectrum.TotalEnstrophy()-fr.Enstrophy) > 1e-12 {
		t.Errorf("spectrum enstrophy %v, frame %v", fr.Spectrum.TotalEnstrophy(), fr.Enstrophy)
	}

	// channel full: the second frame is dropped, not blocked on
	for i := 0; i < 4; i++ {
		if err := s.Advance(); err != nil {
			t.Fatal(err)
		}
	}
	if feed.Dropped() != 1 {
		t.Errorf("dropped = %d, want 1", feed.Dropped())
	}
	feed.Close()
	<-feed.Frames()
	if _, ok := <-feed.Frames(); ok {
		t.Error("channel should be closed")
	}
}

func TestModel_Update(t *testing.T) {
	ch := make(chan Frame)
	m := NewModel(ch, "test", sim.Config{StopTime: 2})
	if !strings.Contains(m.View(), "waiting") {
		t.Error("expected waiting view")
	}

	fr := Frame{Iteration: 3, Time: 1, Energy: 0.5, Enstrophy: 2, Vorticity: wave(8),
		Spectrum: analysis.Spectrum{K: []float64{0, 1, 2}, E: []float64{0, 1, 0.5}, Z: []float64{0, 1, 2}}}
	next, cmd := m.Update(frameMsg(fr))
	m = next.(Model)
	if cmd == nil || !m.have || len(m.energy) != 1 || m.progress() != 0.5 {
		t.Fatalf("frame not applied: have=%v energy=%v", m.have, m.energy)
	}
	if !strings.Contains(m.View(), "RUNNING") {
		t.Error("expected running status")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = next.(Model)
	next, _ = m.Update(frameMsg(fr))
	m = next.(Model)
	if !m.frozen || len(m.energy) != 1 {
		t.Errorf("frozen model should ignore frames, history %v", m.energy)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'v'}})
	m = next.(Model)
	if m.view != viewSpectrum || !strings.Contains(m.View(), "E(k)") {
		t.Error("expected spectrum view")
	}

	next, _ = m.Update(doneMsg{})
	m = next.(Model)
	if !strings.Contains(m.View(), "FINISHED") {
		t.Error("expected finished status")
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}); cmd == nil {
		t.Error("q should quit")
	}
}

func TestAppendHistory(t *testing.T) {
	var h []float64
	for i := 0; i < historyCapacity+5; i++ {
		h = appendHistory(h, float64(i))
	}
	if len(h) != historyCapacity || h[0] != 5 {
		t.Errorf("len %d, first %v", len(h), h[0])
	}
}
