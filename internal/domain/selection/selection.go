// Package selection fits feature selection and scaling transforms on training
// data and re-applies them, unchanged, to unseen rows.
//
// A Selector can only be fit on a TrainingSet, and a fitted Transform has no
// way to be refit, so test rows can never influence a transform.
package selection

import (
	"context"
	"fmt"
)

// Selector learns a Transform from labelled training rows.
type Selector interface {
	Fit(ctx context.Context, ts TrainingSet) (Transform, error)
}

// Transform is an immutable fitted transformation.
type Transform interface {
	// Apply maps rows of the fitted input width to rows of width Columns().
	Apply(x [][]float64) ([][]float64, error)

	// Columns returns the output width.
	Columns() int
}

// TrainingSet is a rectangular labelled matrix taken from a train partition.
type TrainingSet struct {
	x    [][]float64
	y    []int
	cols int
}

// NewTrainingSet validates and wraps training rows. Labels must be 0 or 1.
// Rows are referenced, not copied; callers must not mutate them afterwards.
func NewTrainingSet(x [][]float64, y []int) (TrainingSet, error) {
	if len(x) == 0 {
		return TrainingSet{}, ErrEmptyTrainingSet
	}
	if len(x) != len(y) {
		return TrainingSet{}, fmt.Errorf("%w: %d rows, %d labels", ErrShape, len(x), len(y))
	}
	cols := len(x[0])
	for i, row := range x {
		if len(row) != cols {
			return TrainingSet{}, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, i, len(row), cols)
		}
		if y[i] != 0 && y[i] != 1 {
			return TrainingSet{}, fmt.Errorf("%w: row %d has %d", ErrInvalidLabel, i, y[i])
		}
	}
	return TrainingSet{x: x, y: y, cols: cols}, nil
}

// Rows returns the number of rows.
func (t TrainingSet) Rows() int { return len(t.x) }

// Cols returns the number of columns.
func (t TrainingSet) Cols() int { return t.cols }

// X returns the rows.
func (t TrainingSet) X() [][]float64 { return t.x }

// Y returns the labels.
func (t TrainingSet) Y() []int { return t.y }

// withX replaces the matrix, keeping the labels.
func (t TrainingSet) withX(x [][]float64) (TrainingSet, error) {
	return NewTrainingSet(x, t.y)
}

func checkWidth(x [][]float64, want int) error {
	for i, row := range x {
		if len(row) != want {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, i, len(row), want)
		}
	}
	return nil
}
