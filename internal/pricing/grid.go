package pricing

import (
	"math"
	"sort"
)

const (
	// AxisPoints is the number of values on each grid axis.
	AxisPoints = 10
	// ATMIndex is the construction index whose axis value equals the base.
	ATMIndex = 5

	axisLow  = 0.8
	axisStep = 0.04
)

// Axis is an ascending sequence of spot or strike values.
type Axis []float64

// NewAxis builds the ten values base*0.8, base*0.84, ... base*1.16.
// Values are generated by index so the count never depends on rounding.
func NewAxis(base float64) Axis {
	start := base * axisLow
	step := base * axisStep

	out := make(Axis, AxisPoints)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// Nearest returns the index of the value closest to target using binary search.
// Ties resolve to the higher index. Nearest panics on an empty axis.
func (a Axis) Nearest(target float64) int {
	n := len(a)
	if n == 0 {
		panic("pricing: empty axis")
	}

	i := sort.Search(n, func(i int) bool {
		return a[i] >= target
	})

	if i == 0 {
		return 0
	}
	if i == n {
		return n - 1
	}

	if math.Abs(a[i-1]-target) < math.Abs(a[i]-target) {
		return i - 1
	}
	return i
}

// Grid is a price surface with spots on rows and strikes on columns.
// Grids are values: methods never modify the receiver.
type Grid struct {
	Spots   Axis        `json:"spots"`
	Strikes Axis        `json:"strikes"`
	Values  [][]float64 `json:"values"`
}

// Rows returns the number of spot values.
func (g Grid) Rows() int { return len(g.Spots) }

// Cols returns the number of strike values.
func (g Grid) Cols() int { return len(g.Strikes) }

// At returns the cell at row i, column j.
func (g Grid) At(i, j int) float64 {
	return g.Values[i][j]
}

// Lookup returns the cell whose axis values are nearest to (spot, strike).
func (g Grid) Lookup(spot, strike float64) float64 {
	return g.Values[g.Spots.Nearest(spot)][g.Strikes.Nearest(strike)]
}

// ATM returns the cell built from the unscaled spot and strike.
func (g Grid) ATM() float64 {
	return g.Values[ATMIndex][ATMIndex]
}

// Cells returns every value in row-major order.
func (g Grid) Cells() []float64 {
	out := make([]float64, 0, g.Rows()*g.Cols())
	for _, row := range g.Values {
		out = append(out, row...)
	}
	return out
}

// Min returns the smallest cell, or NaN for an empty grid.
func (g Grid) Min() float64 {
	return extreme(g.Cells(), func(a, b float64) bool { return a < b })
}

// Max returns the largest cell, or NaN for an empty grid.
func (g Grid) Max() float64 {
	return extreme(g.Cells(), func(a, b float64) bool { return a > b })
}

// Shift returns a copy of g with baseline subtracted from every cell.
func (g Grid) Shift(baseline float64) Grid {
	values := make([][]float64, len(g.Values))
	for i, row := range g.Values {
		values[i] = make([]float64, len(row))
		for j, v := range row {
			values[i][j] = v - baseline
		}
	}
	return Grid{Spots: g.Spots, Strikes: g.Strikes, Values: values}
}

func extreme(cells []float64, better func(a, b float64) bool) float64 {
	if len(cells) == 0 {
		return math.NaN()
	}
	best := cells[0]
	for _, v := range cells[1:] {
		if better(v, best) {
			best = v
		}
	}
	return best
}
