package dmf

import (
	"math"

	"github.com/montanaflynn/stats"
)

// ZeroVariance decides what Standardize does with a constant vector.
type ZeroVariance int

const (
	// Every entry becomes 0, its distance from the mean.
	ZeroFill ZeroVariance = iota
	// Divide by the zero deviation anyway, leaving NaN or Inf entries.
	Propagate
)

// Degenerate lists the columns and rows whose standard deviation was zero or
// undefined during Normalize.
type Degenerate struct {
	Cols []int
	Rows []string
}

func (d Degenerate) Empty() bool {
	return len(d.Cols) == 0 && len(d.Rows) == 0
}

// Standardize replaces xs with its Z-scores using the sample standard
// deviation. It reports whether the deviation was zero or undefined.
func Standardize(xs []float64, policy ZeroVariance) (degenerate bool, err error) {
	mean, e := stats.Mean(xs)
	if e != nil {
		return false, e
	}
	sd, e := stats.StandardDeviationSample(xs)
	if e != nil {
		return false, e
	}

	degenerate = sd == 0 || math.IsNaN(sd)
	if degenerate && policy == ZeroFill {
		for i := range xs {
			xs[i] = 0
		}
		return true, nil
	}

	for i, x := range xs {
		xs[i] = (x - mean) / sd
	}
	return degenerate, nil
}

// Normalize standardizes every column of m, then every row of the result.
// The order matters: the row pass sees column-normalized values.
func Normalize(m *Matrix, policy ZeroVariance) (Degenerate, error) {
	h := handle("Normalize: %w")
	var d Degenerate

	col := make([]float64, 0, len(m.Keys))
	for j := 0; j < m.Width; j++ {
		col = m.Col(j, col[:0])
		degen, e := Standardize(col, policy)
		if e != nil {
			return d, h(e)
		}
		if degen {
			d.Cols = append(d.Cols, j)
		}
		m.SetCol(j, col)
	}

	for _, k := range m.Keys {
		degen, e := Standardize(m.Rows[k], policy)
		if e != nil {
			return d, h(e)
		}
		if degen {
			d.Rows = append(d.Rows, k)
		}
	}
	return d, nil
}
