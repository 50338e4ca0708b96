package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/formcast/internal/domain/model"
	types "github.com/okian/formcast/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPrediction(t *testing.T) {
	Convey("Given predictions", t, func() {
		Convey("When the label is known", func() {
			p := types.Prediction{Actual: model.KnownLabel(true), Predicted: 1}
			q := types.Prediction{Actual: model.KnownLabel(false), Predicted: 1}

			Convey("Then correctness should compare classes", func() {
				So(p.Correct(), ShouldBeTrue)
				So(q.Correct(), ShouldBeFalse)
			})
		})

		Convey("When the label is unknown", func() {
			p := types.Prediction{Actual: model.UnknownLabel, Predicted: 0}

			Convey("Then it can never be correct", func() {
				So(p.Correct(), ShouldBeFalse)
			})

			Convey("And it should encode the label as null without confidence", func() {
				b, err := json.Marshal(p)
				So(err, ShouldBeNil)
				So(string(b), ShouldContainSubstring, `"actual":null`)
				So(string(b), ShouldNotContainSubstring, "confidence")
			})
		})

		Convey("When a confidence is attached", func() {
			c := 0.25
			p := types.Prediction{
				RowID:      7,
				Team:       "BOS",
				Date:       time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
				Actual:     model.KnownLabel(true),
				Confidence: &c,
			}
			b, err := json.Marshal(p)

			Convey("Then it should be encoded", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldContainSubstring, `"confidence":0.25`)
				So(string(b), ShouldContainSubstring, `"actual":true`)
				So(string(b), ShouldContainSubstring, `"row_id":7`)
			})
		})
	})
}

func TestReport(t *testing.T) {
	Convey("Given a report with a skipped iteration", t, func() {
		r := types.Report{
			Iterations: []types.IterationResult{
				{Index: 0, Skipped: true, SkipReason: "empty train partition"},
				{Index: 1, Scored: 10, Correct: 6, Accuracy: 0.6},
				{Index: 2, Scored: 10, Correct: 8, Accuracy: 0.8},
			},
		}

		Convey("Then per-iteration accuracy should list only scored iterations", func() {
			So(r.ScoredAccuracies(), ShouldResemble, []float64{0.6, 0.8})
			So(r.ScoredIterations(), ShouldEqual, 2)
		})
	})

	Convey("Given an empty report", t, func() {
		r := types.Report{}

		Convey("Then it should have no scored iterations", func() {
			So(r.ScoredIterations(), ShouldEqual, 0)
			So(r.ScoredAccuracies(), ShouldBeEmpty)
		})
	})
}

func TestNewMatchup(t *testing.T) {
	Convey("Given an aligned row", t, func() {
		d := time.Date(2022, time.November, 2, 0, 0, 0, 0, time.UTC)
		row := model.MatchupRow{
			ID:          12,
			Game:        model.GameRecord{GameID: "g", Team: "DEN", Opponent: "UTA", Date: d, Season: 2023, Home: true},
			Features:    model.FeatureVector{WinStreak: 4, RestDays: 2},
			Label:       model.UnknownLabel,
			OpponentKey: model.TeamDate{Team: "UTA", Date: d},
			Opponent:    model.FeatureVector{LossStreak: 1},
		}
		m := types.NewMatchup(row)

		Convey("Then identity and dates should be carried", func() {
			So(m.ID, ShouldEqual, 12)
			So(m.Team, ShouldEqual, "DEN")
			So(m.Date, ShouldEqual, "2022-11-02")
			So(m.OpponentDate, ShouldEqual, "2022-11-02")
			So(m.Label.Known(), ShouldBeFalse)
		})

		Convey("Then features should be keyed by column name", func() {
			So(len(m.Features), ShouldEqual, len(row.Features.Names()))
			So(m.Features["win_streak"], ShouldEqual, 4.0)
			So(m.Features["rest_days"], ShouldEqual, 2.0)
			So(m.OpponentFeatures["loss_streak"], ShouldEqual, 1.0)
		})

		Convey("Then an unknown label should encode as null", func() {
			b, err := json.Marshal(m)
			So(err, ShouldBeNil)
			So(string(b), ShouldContainSubstring, `"label":null`)
		})
	})
}
