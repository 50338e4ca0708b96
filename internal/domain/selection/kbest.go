package selection

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultK is the number of columns kept when no K is configured.
const DefaultK = 40

// KBest keeps the K columns with the highest ANOVA F-score against the label.
// Ties are broken by column index and the kept columns stay in input order.
// When K is not smaller than the input width every column is kept.
type KBest struct {
	K int
}

// Fit scores every column on the training set.
func (k KBest) Fit(ctx context.Context, ts TrainingSet) (Transform, error) {
	if k.K <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidK, k.K)
	}
	if ts.Rows() == 0 {
		return nil, ErrEmptyTrainingSet
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scores := FScores(ts)
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	keep := k.K
	if keep > len(order) {
		keep = len(order)
	}
	selected := append([]int(nil), order[:keep]...)
	sort.Ints(selected)

	return &columnTransform{in: ts.Cols(), cols: selected}, nil
}

// FScores returns the one-way ANOVA F statistic of every column for the two
// label classes. Undefined scores (single class, constant column) are 0.
func FScores(ts TrainingSet) []float64 {
	x, y := ts.X(), ts.Y()
	n := len(x)
	out := make([]float64, ts.Cols())

	var groups [2][]float64
	col := make([]float64, n)
	for j := range out {
		groups[0], groups[1] = groups[0][:0], groups[1][:0]
		for i, row := range x {
			col[i] = row[j]
			groups[y[i]] = append(groups[y[i]], row[j])
		}
		if len(groups[0]) == 0 || len(groups[1]) == 0 || n <= 2 {
			continue
		}

		grand := stat.Mean(col, nil)
		var between, within float64
		for _, g := range groups {
			m := stat.Mean(g, nil)
			between += float64(len(g)) * (m - grand) * (m - grand)
			within += sumSquaredDiff(g, m)
		}

		// Two groups: df_between = 1, df_within = n - 2.
		f := between / (within / float64(n-2))
		if math.IsNaN(f) {
			f = 0
		}
		out[j] = f
	}
	return out
}

func sumSquaredDiff(xs []float64, m float64) float64 {
	d := make([]float64, len(xs))
	copy(d, xs)
	floats.AddConst(-m, d)
	return floats.Dot(d, d)
}

// columnTransform projects rows onto a fixed set of input columns.
type columnTransform struct {
	in   int
	cols []int
}

func (c *columnTransform) Apply(x [][]float64) ([][]float64, error) {
	if err := checkWidth(x, c.in); err != nil {
		return nil, err
	}
	out := make([][]float64, len(x))
	for i, row := range x {
		r := make([]float64, len(c.cols))
		for k, j := range c.cols {
			r[k] = row[j]
		}
		out[i] = r
	}
	return out, nil
}

func (c *columnTransform) Columns() int { return len(c.cols) }

// Selected returns the kept input column indices in ascending order.
func (c *columnTransform) Selected() []int { return append([]int(nil), c.cols...) }
