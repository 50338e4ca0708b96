package selection

import (
	"context"
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// fixture: column 0 separates the classes, column 1 is noise, column 2 is constant.
func fixture() TrainingSet {
	x := [][]float64{
		{1.0, 5, 7},
		{1.2, 3, 7},
		{0.9, 4, 7},
		{3.0, 4, 7},
		{3.1, 5, 7},
		{2.9, 3, 7},
	}
	y := []int{0, 0, 0, 1, 1, 1}
	ts, err := NewTrainingSet(x, y)
	if err != nil {
		panic(err)
	}
	return ts
}

func TestTrainingSet(t *testing.T) {
	Convey("Given training set construction", t, func() {
		Convey("When the input is valid", func() {
			ts := fixture()
			So(ts.Rows(), ShouldEqual, 6)
			So(ts.Cols(), ShouldEqual, 3)
		})

		Convey("When the input is empty", func() {
			_, err := NewTrainingSet(nil, nil)
			So(errors.Is(err, ErrEmptyTrainingSet), ShouldBeTrue)
		})

		Convey("When rows are ragged or labels mismatched", func() {
			_, err := NewTrainingSet([][]float64{{1, 2}, {3}}, []int{0, 1})
			So(errors.Is(err, ErrShape), ShouldBeTrue)
			_, err = NewTrainingSet([][]float64{{1}}, []int{0, 1})
			So(errors.Is(err, ErrShape), ShouldBeTrue)
		})

		Convey("When a label is outside {0, 1}", func() {
			_, err := NewTrainingSet([][]float64{{1}, {2}}, []int{0, 2})
			So(errors.Is(err, ErrInvalidLabel), ShouldBeTrue)
		})
	})
}

func TestKBest(t *testing.T) {
	Convey("Given the ANOVA scorer", t, func() {
		ctx := context.Background()
		ts := fixture()

		Convey("When scoring the fixture", func() {
			scores := FScores(ts)

			Convey("Then the separating column should dominate and the constant one score zero", func() {
				So(scores[0], ShouldBeGreaterThan, scores[1])
				So(scores[1], ShouldEqual, 0.0)
				So(scores[2], ShouldEqual, 0.0)
			})
		})

		Convey("When keeping one column", func() {
			tr, err := KBest{K: 1}.Fit(ctx, ts)
			So(err, ShouldBeNil)
			out, err := tr.Apply([][]float64{{9, 8, 7}})

			Convey("Then only the separating column should remain", func() {
				So(err, ShouldBeNil)
				So(out, ShouldResemble, [][]float64{{9}})
				So(tr.Columns(), ShouldEqual, 1)
			})
		})

		Convey("When scores tie", func() {
			tr, err := KBest{K: 2}.Fit(ctx, ts)
			So(err, ShouldBeNil)

			Convey("Then the lower column index should win and order be preserved", func() {
				sel := tr.(interface{ Selected() []int }).Selected()
				So(sel, ShouldResemble, []int{0, 1})
			})
		})

		Convey("When K exceeds the width", func() {
			tr, err := KBest{K: 40}.Fit(ctx, ts)
			So(err, ShouldBeNil)
			So(tr.Columns(), ShouldEqual, 3)
		})

		Convey("When only one class is present", func() {
			one, _ := NewTrainingSet([][]float64{{1, 2}, {3, 4}, {5, 6}}, []int{1, 1, 1})
			scores := FScores(one)
			So(scores, ShouldResemble, []float64{0, 0})
		})

		Convey("When a column separates the classes perfectly", func() {
			perfect, _ := NewTrainingSet([][]float64{{0}, {0}, {1}, {1}}, []int{0, 0, 1, 1})
			So(math.IsInf(FScores(perfect)[0], 1), ShouldBeTrue)
		})

		Convey("When K is invalid", func() {
			_, err := KBest{}.Fit(ctx, ts)
			So(errors.Is(err, ErrInvalidK), ShouldBeTrue)
		})

		Convey("When applying to rows of the wrong width", func() {
			tr, _ := KBest{K: 1}.Fit(ctx, ts)
			_, err := tr.Apply([][]float64{{1, 2}})
			So(errors.Is(err, ErrShape), ShouldBeTrue)
		})
	})
}

func TestMinMax(t *testing.T) {
	Convey("Given a min-max scaler fit on the fixture", t, func() {
		tr, err := MinMax{}.Fit(context.Background(), fixture())
		So(err, ShouldBeNil)

		Convey("When applying to training-range and unseen rows", func() {
			out, err := tr.Apply([][]float64{{0.9, 3, 7}, {3.1, 5, 7}, {5.3, 1, 9}})
			So(err, ShouldBeNil)

			Convey("Then training bounds should map to 0 and 1", func() {
				So(out[0][0], ShouldAlmostEqual, 0)
				So(out[1][0], ShouldAlmostEqual, 1)
				So(out[0][1], ShouldAlmostEqual, 0)
				So(out[1][1], ShouldAlmostEqual, 1)
			})

			Convey("And zero-range columns should only be shifted", func() {
				So(out[0][2], ShouldEqual, 0.0)
				So(out[2][2], ShouldEqual, 2.0)
			})

			Convey("And unseen rows should not be clipped", func() {
				So(out[2][0], ShouldAlmostEqual, 2)
				So(out[2][1], ShouldAlmostEqual, -1)
			})
		})
	})
}

func TestPipeline(t *testing.T) {
	Convey("Given the default pipeline", t, func() {
		ctx := context.Background()
		ts := fixture()

		Convey("When fit on training rows", func() {
			tr, err := Default(1).Fit(ctx, ts)
			So(err, ShouldBeNil)

			Convey("Then it should select and then scale", func() {
				out, err := tr.Apply([][]float64{{2.0, 0, 0}})
				So(err, ShouldBeNil)
				So(tr.Columns(), ShouldEqual, 1)
				So(out[0][0], ShouldAlmostEqual, (2.0-0.9)/(3.1-0.9))
			})

			Convey("And applying it must not depend on the rows it is applied to", func() {
				a, _ := tr.Apply([][]float64{{2.0, 0, 0}})
				b, _ := tr.Apply([][]float64{{2.0, 0, 0}, {100, 100, 100}})
				So(b[0], ShouldResemble, a[0])
			})
		})

		Convey("When a stage fails", func() {
			_, err := Pipeline{KBest{K: 0}, MinMax{}}.Fit(ctx, ts)
			So(errors.Is(err, ErrInvalidK), ShouldBeTrue)
		})

		Convey("When the pipeline is empty", func() {
			tr, err := Pipeline{}.Fit(ctx, ts)
			So(err, ShouldBeNil)
			out, _ := tr.Apply([][]float64{{1, 2, 3}})
			So(out, ShouldResemble, [][]float64{{1, 2, 3}})
			So(tr.Columns(), ShouldEqual, 3)
		})
	})
}
