package viz

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/turb2d/internal/analysis"
	"github.com/san-kum/turb2d/internal/spectral"
)

// fieldGrid exposes a PhysicalField as a plotter.GridXYZ with columns
// along x and rows along y.
type fieldGrid struct {
	p *spectral.PhysicalField
}

func (g fieldGrid) Dims() (c, r int)   { return g.p.Size, g.p.Size }
func (g fieldGrid) Z(c, r int) float64 { return g.p.At(c, r) }
func (g fieldGrid) X(c int) float64    { return g.p.Coord(c) }
func (g fieldGrid) Y(r int) float64    { return g.p.Coord(r) }

// SaveHeatmap writes p as a PNG colour map. The palette range is symmetric
// about zero.
func SaveHeatmap(p *spectral.PhysicalField, title, path string) error {
	pl := plot.New()
	pl.Title.Text = title
	pl.X.Label.Text = "x"
	pl.Y.Label.Text = "y"

	hm := plotter.NewHeatMap(fieldGrid{p}, moreland.SmoothBlueRed().Palette(255))
	bound := 0.0
	for _, v := range p.Data {
		bound = max(bound, v, -v)
	}
	if bound > 0 {
		hm.Min, hm.Max = -bound, bound
	}
	pl.Add(hm)

	return savePNG(pl, 6.5, 6, path)
}

// SaveSeries writes a line plot of values against times.
func SaveSeries(title, ylabel string, times, values []float64, path string) error {
	if len(times) != len(values) {
		return fmt.Errorf("series length mismatch: %d times, %d values", len(times), len(values))
	}
	pl := plot.New()
	pl.Title.Text = title
	pl.X.Label.Text = "t"
	pl.Y.Label.Text = ylabel

	pts := make(plotter.XYs, len(times))
	for i := range times {
		pts[i].X, pts[i].Y = times[i], values[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("cannot create line plot: %w", err)
	}
	line.LineStyle.Width = vg.Points(1.5)
	pl.Add(line)

	return savePNG(pl, 8, 5, path)
}

// SaveSpectrum writes E(k) and Z(k) on log-log axes. Empty shells are
// skipped.
func SaveSpectrum(s analysis.Spectrum, title, path string) error {
	pl := plot.New()
	pl.Title.Text = title
	pl.X.Label.Text = "k"
	pl.X.Scale, pl.Y.Scale = plot.LogScale{}, plot.LogScale{}
	pl.X.Tick.Marker, pl.Y.Tick.Marker = plot.LogTicks{Prec: -1}, plot.LogTicks{Prec: -1}
	pl.Legend.Top = true

	for i, series := range []struct {
		name string
		v    []float64
	}{{"E(k)", s.E}, {"Z(k)", s.Z}} {
		var pts plotter.XYs
		for n, v := range series.v {
			if s.K[n] > 0 && v > 0 {
				pts = append(pts, plotter.XY{X: s.K[n], Y: v})
			}
		}
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("cannot create spectrum line: %w", err)
		}
		if i == 1 {
			line.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		}
		pl.Add(line)
		pl.Legend.Add(series.name, line)
	}

	return savePNG(pl, 7, 5, path)
}

func savePNG(p *plot.Plot, widthIn, heightIn float64, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(150),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}
