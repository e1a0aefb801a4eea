package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/turb2d/internal/spectral"
)

// shadeLevels is the number of colour steps on each side of zero.
const shadeLevels = 12

// Diverging maps v in [-1, 1] onto the theme's Negative–Zero–Positive ramp.
func Diverging(t Theme, v float64) lipgloss.Color {
	v = math.Max(-1, math.Min(1, v))
	zero, err := colorful.Hex(string(t.Zero))
	if err != nil {
		return t.Zero
	}
	end := t.Positive
	if v < 0 {
		end = t.Negative
	}
	c, err := colorful.Hex(string(end))
	if err != nil {
		return end
	}
	return lipgloss.Color(zero.BlendLab(c, math.Abs(v)).Clamped().Hex())
}

// Shade renders p as cols×rows half-block characters, two grid samples per
// character. x runs left to right and y bottom to top. Values are
// normalised by max |p|.
func Shade(p *spectral.PhysicalField, cols, rows int) string {
	scale := 0.0
	for _, v := range p.Data {
		scale = math.Max(scale, math.Abs(v))
	}
	if scale == 0 {
		scale = 1
	}

	styles := make(map[[2]int]lipgloss.Style)
	level := func(v float64) int {
		return int(math.Round(v / scale * shadeLevels))
	}
	sample := func(c, r int) float64 {
		i := c * p.Size / cols
		j := p.Size - 1 - r*p.Size/(2*rows)
		return p.At(i, j)
	}

	var b strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			key := [2]int{level(sample(c, 2*r)), level(sample(c, 2*r+1))}
			st, ok := styles[key]
			if !ok {
				st = lipgloss.NewStyle().
					Foreground(Diverging(CurrentTheme, float64(key[0])/shadeLevels)).
					Background(Diverging(CurrentTheme, float64(key[1])/shadeLevels))
				styles[key] = st
			}
			b.WriteString(st.Render("▀"))
		}
		if r < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
