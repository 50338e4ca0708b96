// Package classifier defines the binary classifier capability used by the
// backtest and a ridge implementation of it.
package classifier

import "context"

// Classifier learns a binary decision rule from labelled rows.
type Classifier interface {
	// Fit trains on x with labels y in {0, 1}. Calling Fit again replaces all state.
	Fit(ctx context.Context, x [][]float64, y []int) error

	// Predict returns a label in {0, 1} per row.
	Predict(x [][]float64) ([]int, error)
}

// Scorer is implemented by classifiers that expose a signed confidence.
// Positive scores predict class 1.
type Scorer interface {
	DecisionFunction(x [][]float64) ([]float64, error)
}

// Factory returns a fresh, unfitted classifier.
type Factory func() Classifier
