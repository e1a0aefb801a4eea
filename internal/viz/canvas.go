package viz

import (
	"math"
	"strings"
)

// Braille cells hold a 2×4 dot matrix starting at U+2800:
//
//	1 4
//	2 5
//	3 6
//	7 8
const brailleBlank = 0x2800

var dotMask = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a Width×Height character grid addressed in sub-pixels, giving
// a drawable area of (2*Width)×(4*Height) dots.
type Canvas struct {
	Width, Height int
	cells         [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, cells: make([][]rune, h)}
	for i := range c.cells {
		c.cells[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at sub-pixel (x, y); y grows downward. Out-of-range
// dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.cells[row][col] |= dotMask[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		for j := range c.cells[i] {
			c.cells[i][j] = brailleBlank
		}
	}
}

// DrawLine joins two dots with Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// PlotLogLog draws the polyline through the positive points of (xs, ys)
// on logarithmic axes scaled to fill the canvas.
func (c *Canvas) PlotLogLog(xs, ys []float64) {
	var lx, ly []float64
	for i := range xs {
		if xs[i] > 0 && ys[i] > 0 {
			lx = append(lx, math.Log10(xs[i]))
			ly = append(ly, math.Log10(ys[i]))
		}
	}
	if len(lx) < 2 {
		return
	}

	x0, x1 := bounds(lx)
	y0, y1 := bounds(ly)
	w, h := float64(2*c.Width-1), float64(4*c.Height-1)
	px := func(i int) (int, int) {
		return int((lx[i] - x0) / (x1 - x0) * w), int((y1 - ly[i]) / (y1 - y0) * h)
	}

	prevX, prevY := px(0)
	for i := 1; i < len(lx); i++ {
		x, y := px(i)
		c.DrawLine(prevX, prevY, x, y)
		prevX, prevY = x, y
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.cells {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func bounds(v []float64) (lo, hi float64) {
	lo, hi = v[0], v[0]
	for _, x := range v {
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}
	if hi == lo {
		hi = lo + 1
	}
	return lo, hi
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
