package selection

import (
	"context"
	"fmt"
)

// Pipeline fits its stages in order, each on the training output of the previous one.
type Pipeline []Selector

// Default returns the standard selection: top-k ANOVA columns, then min-max scaling.
func Default(k int) Pipeline {
	return Pipeline{KBest{K: k}, MinMax{}}
}

// Fit fits every stage.
func (p Pipeline) Fit(ctx context.Context, ts TrainingSet) (Transform, error) {
	if ts.Rows() == 0 {
		return nil, ErrEmptyTrainingSet
	}

	chain := &chainTransform{in: ts.Cols()}
	cur := ts
	for i, stage := range p {
		t, err := stage.Fit(ctx, cur)
		if err != nil {
			return nil, fmt.Errorf("fit stage %d: %w", i, err)
		}
		chain.stages = append(chain.stages, t)

		if i == len(p)-1 {
			break
		}
		x, err := t.Apply(cur.X())
		if err != nil {
			return nil, fmt.Errorf("apply stage %d: %w", i, err)
		}
		if cur, err = cur.withX(x); err != nil {
			return nil, fmt.Errorf("stage %d output: %w", i, err)
		}
	}
	return chain, nil
}

type chainTransform struct {
	in     int
	stages []Transform
}

func (c *chainTransform) Apply(x [][]float64) ([][]float64, error) {
	if err := checkWidth(x, c.in); err != nil {
		return nil, err
	}
	out := x
	for i, t := range c.stages {
		var err error
		if out, err = t.Apply(out); err != nil {
			return nil, fmt.Errorf("apply stage %d: %w", i, err)
		}
	}
	if len(c.stages) == 0 {
		// Identity; hand back copies so callers never alias training rows.
		cp := make([][]float64, len(x))
		for i, row := range x {
			cp[i] = append([]float64(nil), row...)
		}
		return cp, nil
	}
	return out, nil
}

func (c *chainTransform) Columns() int {
	if len(c.stages) == 0 {
		return c.in
	}
	return c.stages[len(c.stages)-1].Columns()
}

// Selected returns the input columns kept by the first stage that reports them.
func (c *chainTransform) Selected() []int {
	for _, t := range c.stages {
		if s, ok := t.(interface{ Selected() []int }); ok {
			return s.Selected()
		}
	}
	cols := make([]int, c.in)
	for i := range cols {
		cols[i] = i
	}
	return cols
}
