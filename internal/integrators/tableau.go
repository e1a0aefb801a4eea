package integrators

import (
	"math"
	"sort"
	"strings"

	"github.com/san-kum/turb2d/internal/dynamo"
)

// Tableau holds the coefficients of an s-stage IMEX scheme in the
// (s+1)×(s+1) lower triangular form where row 0 is the initial value.
// A is explicit (strictly lower), H is implicit (lower, diagonal included).
type Tableau struct {
	Name  string
	Order int
	A     [][]float64
	H     [][]float64
	C     []float64
}

// Stages returns the number of stages s.
func (t Tableau) Stages() int { return len(t.C) - 1 }

// RK443 is the 4-stage, 3rd-order scheme of Ascher, Ruuth and Spiteri.
var RK443 = Tableau{
	Name:  "RK443",
	Order: 3,
	A: [][]float64{
		{0, 0, 0, 0, 0},
		{1.0 / 2.0, 0, 0, 0, 0},
		{11.0 / 18.0, 1.0 / 18.0, 0, 0, 0},
		{5.0 / 6.0, -5.0 / 6.0, 1.0 / 2.0, 0, 0},
		{1.0 / 4.0, 7.0 / 4.0, 3.0 / 4.0, -7.0 / 4.0, 0},
	},
	H: [][]float64{
		{0, 0, 0, 0, 0},
		{0, 1.0 / 2.0, 0, 0, 0},
		{0, 1.0 / 6.0, 1.0 / 2.0, 0, 0},
		{0, -1.0 / 2.0, 1.0 / 2.0, 1.0 / 2.0, 0},
		{0, 3.0 / 2.0, -3.0 / 2.0, 1.0 / 2.0, 1.0 / 2.0},
	},
	C: []float64{0, 1.0 / 2.0, 2.0 / 3.0, 1.0 / 2.0, 1},
}

var (
	rk222Gamma = 1 - 1/math.Sqrt2
	rk222Delta = 1 - 1/(2*rk222Gamma)
)

// RK222 is the 2-stage, 2nd-order scheme of Ascher, Ruuth and Spiteri.
var RK222 = Tableau{
	Name:  "RK222",
	Order: 2,
	A: [][]float64{
		{0, 0, 0},
		{rk222Gamma, 0, 0},
		{rk222Delta, 1 - rk222Delta, 0},
	},
	H: [][]float64{
		{0, 0, 0},
		{0, rk222Gamma, 0},
		{0, 1 - rk222Gamma, rk222Gamma},
	},
	C: []float64{0, rk222Gamma, 1},
}

// RK111 is forward Euler on the explicit part and backward Euler on the
// implicit part.
var RK111 = Tableau{
	Name:  "RK111",
	Order: 1,
	A: [][]float64{
		{0, 0},
		{1, 0},
	},
	H: [][]float64{
		{0, 0},
		{0, 1},
	},
	C: []float64{0, 1},
}

var tableaus = map[string]Tableau{
	"rk443": RK443,
	"rk222": RK222,
	"rk111": RK111,
}

// TableauByName looks a scheme up case-insensitively.
func TableauByName(name string) (Tableau, error) {
	t, ok := tableaus[strings.ToLower(name)]
	if !ok {
		return Tableau{}, dynamo.Configf("unknown timestepper %q (available: %s)", name, strings.Join(TableauNames(), ", "))
	}
	return t, nil
}

func TableauNames() []string {
	names := make([]string, 0, len(tableaus))
	for n := range tableaus {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
