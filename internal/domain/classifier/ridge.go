package classifier

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultAlpha is the default L2 penalty.
const DefaultAlpha = 1.0

// Option applies a configuration option to the Ridge classifier.
type Option func(*Ridge)

// WithAlpha sets the L2 penalty. Negative values are ignored.
func WithAlpha(alpha float64) Option {
	return func(r *Ridge) {
		if alpha >= 0 {
			r.alpha = alpha
		}
	}
}

// Ridge is a least-squares classifier with L2 penalty. Targets are mapped to
// -1/+1 and the intercept is not penalized.
type Ridge struct {
	alpha     float64
	weights   []float64
	intercept float64
	fitted    bool
}

// NewRidge creates an unfitted ridge classifier.
func NewRidge(opts ...Option) *Ridge {
	r := &Ridge{alpha: DefaultAlpha}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RidgeFactory returns a Factory producing ridge classifiers with the given alpha.
func RidgeFactory(alpha float64) Factory {
	return func() Classifier { return NewRidge(WithAlpha(alpha)) }
}

// Alpha returns the configured penalty.
func (r *Ridge) Alpha() float64 { return r.alpha }

// Weights returns a copy of the fitted coefficients and the intercept.
func (r *Ridge) Weights() ([]float64, float64) {
	return append([]float64(nil), r.weights...), r.intercept
}

// Fit solves (XcᵀXc + αI)w = Xcᵀyc on centered data.
func (r *Ridge) Fit(ctx context.Context, x [][]float64, y []int) error {
	r.fitted = false
	n := len(x)
	if n == 0 {
		return ErrEmpty
	}
	if len(y) != n {
		return fmt.Errorf("%w: %d rows, %d labels", ErrShape, n, len(y))
	}
	p := len(x[0])

	xMean := make([]float64, p)
	target := make([]float64, n)
	for i, row := range x {
		if len(row) != p {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, i, len(row), p)
		}
		switch y[i] {
		case 0:
			target[i] = -1
		case 1:
			target[i] = 1
		default:
			return fmt.Errorf("%w: row %d has %d", ErrInvalidLabel, i, y[i])
		}
		floats.Add(xMean, row)
	}
	floats.Scale(1/float64(n), xMean)
	yMean := floats.Sum(target) / float64(n)

	if err := ctx.Err(); err != nil {
		return err
	}

	if p == 0 {
		r.weights, r.intercept, r.fitted = nil, yMean, true
		return nil
	}

	xc := mat.NewDense(n, p, nil)
	yc := mat.NewVecDense(n, nil)
	for i, row := range x {
		for j, v := range row {
			xc.Set(i, j, v-xMean[j])
		}
		yc.SetVec(i, target[i]-yMean)
	}

	gram := mat.NewSymDense(p, nil)
	gram.SymOuterK(1, xc.T())
	for j := 0; j < p; j++ {
		gram.SetSym(j, j, gram.At(j, j)+r.alpha)
	}

	var rhs mat.VecDense
	rhs.MulVec(xc.T(), yc)

	var chol mat.Cholesky
	if ok := chol.Factorize(gram); !ok {
		return ErrSingular
	}
	var w mat.VecDense
	if err := chol.SolveVecTo(&w, &rhs); err != nil {
		return fmt.Errorf("solve ridge system: %w", err)
	}

	r.weights = make([]float64, p)
	for j := range r.weights {
		r.weights[j] = w.AtVec(j)
	}
	r.intercept = yMean - floats.Dot(xMean, r.weights)
	r.fitted = true
	return nil
}

// DecisionFunction returns x·w + b per row.
func (r *Ridge) DecisionFunction(x [][]float64) ([]float64, error) {
	if !r.fitted {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(x))
	for i, row := range x {
		if len(row) != len(r.weights) {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, i, len(row), len(r.weights))
		}
		out[i] = r.intercept
		if len(row) > 0 {
			out[i] += floats.Dot(row, r.weights)
		}
	}
	return out, nil
}

// Predict returns 1 where the decision is positive.
func (r *Ridge) Predict(x [][]float64) ([]int, error) {
	scores, err := r.DecisionFunction(x)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(scores))
	for i, s := range scores {
		if s > 0 {
			out[i] = 1
		}
	}
	return out, nil
}
