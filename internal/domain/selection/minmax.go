package selection

import (
	"context"
)

// MinMax rescales every column to [0, 1] using the training minimum and maximum.
// Columns with zero range are shifted by their minimum and left unscaled.
// Unseen rows may fall outside [0, 1].
type MinMax struct{}

// Fit records per-column bounds.
func (MinMax) Fit(ctx context.Context, ts TrainingSet) (Transform, error) {
	if ts.Rows() == 0 {
		return nil, ErrEmptyTrainingSet
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x := ts.X()
	lo := append([]float64(nil), x[0]...)
	hi := append([]float64(nil), x[0]...)
	for _, row := range x[1:] {
		for j, v := range row {
			if v < lo[j] {
				lo[j] = v
			}
			if v > hi[j] {
				hi[j] = v
			}
		}
	}

	scale := make([]float64, len(lo))
	for j := range scale {
		scale[j] = hi[j] - lo[j]
		if scale[j] == 0 {
			scale[j] = 1
		}
	}
	return &minMaxTransform{min: lo, scale: scale}, nil
}

type minMaxTransform struct {
	min   []float64
	scale []float64
}

func (m *minMaxTransform) Apply(x [][]float64) ([][]float64, error) {
	if err := checkWidth(x, len(m.min)); err != nil {
		return nil, err
	}
	out := make([][]float64, len(x))
	for i, row := range x {
		r := make([]float64, len(row))
		for j, v := range row {
			r[j] = (v - m.min[j]) / m.scale[j]
		}
		out[i] = r
	}
	return out, nil
}

func (m *minMaxTransform) Columns() int { return len(m.min) }
