package features_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/formcast/internal/domain/features"
	"github.com/okian/formcast/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func day(d int) time.Time {
	return time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

// timelineOf builds a timeline where game i scores points[i] and wins per outcomes[i].
func timelineOf(points []float64, outcomes []bool) model.TeamTimeline {
	games := make([]model.GameRecord, len(points))
	for i := range points {
		games[i] = model.GameRecord{Team: "BOS", Opponent: "NYK", Date: day(2 * i), Season: 2023, Won: outcomes[i]}
		games[i].Stats[model.Points] = points[i]
	}
	return model.NewTeamTimeline("BOS", games)
}

func TestStreaks(t *testing.T) {
	Convey("Given outcome sequences", t, func() {
		Convey("When the outcomes are win, loss, win", func() {
			win, loss := features.Streaks([]bool{true, false, true})

			Convey("Then streaks should reflect the game before each one", func() {
				So(win, ShouldResemble, []int{0, 1, 0})
				So(loss, ShouldResemble, []int{0, 0, 1})
			})
		})

		Convey("When a run of wins is broken", func() {
			win, loss := features.Streaks([]bool{true, true, true, false, false, true})

			Convey("Then streak lengths should accumulate and reset", func() {
				So(win, ShouldResemble, []int{0, 1, 2, 3, 0, 0})
				So(loss, ShouldResemble, []int{0, 0, 0, 0, 1, 2})
			})
		})

		Convey("When the timeline has one game", func() {
			win, loss := features.Streaks([]bool{true})

			Convey("Then both streaks should be zero", func() {
				So(win, ShouldResemble, []int{0})
				So(loss, ShouldResemble, []int{0})
			})
		})

		Convey("When there are no games", func() {
			win, loss := features.Streaks(nil)
			So(win, ShouldBeEmpty)
			So(loss, ShouldBeEmpty)
		})
	})
}

func TestFormRatios(t *testing.T) {
	Convey("Given an outcome sequence", t, func() {
		outcomes := []bool{true, true, false, true, false, false, true}

		Convey("When computing form over 3 games", func() {
			form := features.FormRatios(outcomes, 3)

			Convey("Then each value should use only earlier games", func() {
				So(form[0], ShouldEqual, 0.5)
				So(form[1], ShouldEqual, 1.0)
				So(form[2], ShouldEqual, 1.0)
				So(form[3], ShouldAlmostEqual, 2.0/3.0)
				So(form[4], ShouldAlmostEqual, 2.0/3.0)
				So(form[5], ShouldAlmostEqual, 1.0/3.0)
				So(form[6], ShouldAlmostEqual, 1.0/3.0)
			})
		})
	})
}

func TestMomentum(t *testing.T) {
	Convey("Given outcome sequences", t, func() {
		Convey("When the first three games are wins", func() {
			m := features.Momentum([]bool{true, true, true, false})

			Convey("Then the fourth game should have full momentum", func() {
				So(m[0], ShouldEqual, 0.5)
				So(m[1], ShouldEqual, 1.0)
				So(m[2], ShouldEqual, 1.0)
				So(m[3], ShouldAlmostEqual, 1.0)
			})
		})

		Convey("When only the most recent prior game was won", func() {
			m := features.Momentum([]bool{false, false, true, false})

			Convey("Then the newest game should carry the largest weight", func() {
				So(m[1], ShouldEqual, 0.0)
				So(m[2], ShouldEqual, 0.0)
				So(m[3], ShouldAlmostEqual, 0.5)
			})
		})

		Convey("When the oldest weighted game was the only win", func() {
			m := features.Momentum([]bool{true, false, false, true})

			Convey("Then it should carry the smallest weight", func() {
				So(m[3], ShouldAlmostEqual, 0.2)
			})
		})
	})
}

func TestRollingMeans(t *testing.T) {
	Convey("Given a timeline of point totals", t, func() {
		points := []float64{100, 110, 120, 130, 140}
		tl := timelineOf(points, []bool{true, true, true, true, true})
		games := tl.Games()

		Convey("When computing strictly prior windows", func() {
			rm := features.RollingMeans(games, []int{3}, features.StrictlyPrior)

			Convey("Then the first game should have no history", func() {
				So(rm[0][0].Games, ShouldEqual, 0)
				So(rm[0][0].Means[model.Points], ShouldEqual, 0.0)
			})

			Convey("And shorter windows should expand", func() {
				So(rm[1][0].Games, ShouldEqual, 1)
				So(rm[1][0].Means[model.Points], ShouldEqual, 100.0)
				So(rm[2][0].Means[model.Points], ShouldEqual, 105.0)
			})

			Convey("And full windows should exclude the current game", func() {
				So(rm[3][0].Games, ShouldEqual, 3)
				So(rm[3][0].Means[model.Points], ShouldEqual, 110.0)
				So(rm[4][0].Means[model.Points], ShouldEqual, 120.0)
			})
		})

		Convey("When computing windows that include the current game", func() {
			rm := features.RollingMeans(games, []int{3}, features.IncludeCurrent)

			Convey("Then each window should end at the current game", func() {
				So(rm[0][0].Games, ShouldEqual, 1)
				So(rm[0][0].Means[model.Points], ShouldEqual, 100.0)
				So(rm[4][0].Means[model.Points], ShouldEqual, 130.0)
			})
		})

		Convey("When a later game's stats are perturbed", func() {
			before := features.RollingMeans(games, []int{3, 5, 10}, features.StrictlyPrior)
			perturbed := append([]model.GameRecord(nil), games...)
			perturbed[3].Stats[model.Points] = 999
			after := features.RollingMeans(perturbed, []int{3, 5, 10}, features.StrictlyPrior)

			Convey("Then features of games up to and including it should not change", func() {
				for i := 0; i <= 3; i++ {
					So(after[i], ShouldResemble, before[i])
				}
				So(after[4][0].Means[model.Points], ShouldNotEqual, before[4][0].Means[model.Points])
			})
		})
	})
}

func TestSchedule(t *testing.T) {
	Convey("Given games across two seasons", t, func() {
		games := []model.GameRecord{
			{Date: day(0), Season: 2022},
			{Date: day(1), Season: 2022},
			{Date: day(4), Season: 2022},
			{Date: day(200), Season: 2023},
			{Date: day(202), Season: 2023},
		}

		Convey("When computing rest days", func() {
			rest := features.RestDays(games, 2)

			Convey("Then the first game should use the default", func() {
				So(rest, ShouldResemble, []float64{2, 1, 3, 196, 2})
			})
		})

		Convey("When computing season progress", func() {
			progress := features.SeasonProgress(games, 82)

			Convey("Then the index should restart each season", func() {
				So(progress[0], ShouldEqual, 0.0)
				So(progress[2], ShouldAlmostEqual, 2.0/82.0)
				So(progress[3], ShouldEqual, 0.0)
				So(progress[4], ShouldAlmostEqual, 1.0/82.0)
			})
		})
	})
}

func TestExpandingAllowed(t *testing.T) {
	Convey("Given games with conceded box scores", t, func() {
		games := []model.GameRecord{{HasAllowed: true}, {HasAllowed: false}, {HasAllowed: true}, {}}
		games[0].Allowed[model.Points] = 90
		games[2].Allowed[model.Points] = 110

		allowed := features.ExpandingAllowed(games)

		Convey("Then each game should average only prior conceded scores", func() {
			So(allowed[0][model.Points], ShouldEqual, 0.0)
			So(allowed[1][model.Points], ShouldEqual, 90.0)
			So(allowed[2][model.Points], ShouldEqual, 90.0)
			So(allowed[3][model.Points], ShouldEqual, 100.0)
		})
	})
}

func TestGenerator(t *testing.T) {
	Convey("Given a default generator", t, func() {
		g, err := features.NewGenerator()
		So(err, ShouldBeNil)
		So(g.Boundary(), ShouldEqual, features.StrictlyPrior)

		Convey("When generating for a single-game timeline", func() {
			fv := g.Generate(timelineOf([]float64{100}, []bool{true}))

			Convey("Then every value should be the documented default", func() {
				So(len(fv), ShouldEqual, 1)
				So(fv[0].WinStreak, ShouldEqual, 0)
				So(fv[0].LossStreak, ShouldEqual, 0)
				So(fv[0].Momentum, ShouldEqual, 0.5)
				So(fv[0].Form, ShouldResemble, []model.FormRatio{{Window: 5, Ratio: 0.5}, {Window: 10, Ratio: 0.5}})
				So(fv[0].RestDays, ShouldEqual, features.DefaultRestDays)
				So(fv[0].BackToBack, ShouldBeFalse)
				So(fv[0].SeasonProgress, ShouldEqual, 0.0)
				So(len(fv[0].Rolling), ShouldEqual, 3)
				for _, r := range fv[0].Rolling {
					So(r.Games, ShouldEqual, 0)
				}
			})
		})

		Convey("When generating for a longer timeline", func() {
			tl := timelineOf([]float64{100, 90, 120, 80}, []bool{true, false, true, false})
			fv := g.Generate(tl)

			Convey("Then the vectors should follow the timeline", func() {
				So(len(fv), ShouldEqual, 4)
				So(fv[1].WinStreak, ShouldEqual, 1)
				So(fv[2].LossStreak, ShouldEqual, 1)
				So(fv[3].Rolling[0].Means[model.Points], ShouldAlmostEqual, 310.0/3.0)
				So(fv[1].RestDays, ShouldEqual, 2.0)
				So(fv[1].SeasonProgress, ShouldAlmostEqual, 1.0/82.0)
			})

			Convey("And generating twice should give identical output", func() {
				So(g.Generate(tl), ShouldResemble, fv)
			})
		})
	})

	Convey("Given generator options", t, func() {
		Convey("When a window is not positive", func() {
			_, err := features.NewGenerator(features.WithRollingWindows(3, 0))
			So(errors.Is(err, features.ErrInvalidWindow), ShouldBeTrue)
		})

		Convey("When the season length is not positive", func() {
			_, err := features.NewGenerator(features.WithSeasonLength(0))
			So(errors.Is(err, features.ErrInvalidSeasonLength), ShouldBeTrue)
		})

		Convey("When custom windows and boundary are set", func() {
			g, err := features.NewGenerator(
				features.WithRollingWindows(2),
				features.WithFormWindows(3),
				features.WithWindowBoundary(features.IncludeCurrent),
				features.WithDefaultRestDays(3),
			)
			So(err, ShouldBeNil)
			fv := g.Generate(timelineOf([]float64{100, 120}, []bool{true, true}))

			So(len(fv[0].Rolling), ShouldEqual, 1)
			So(fv[0].Rolling[0].Means[model.Points], ShouldEqual, 100.0)
			So(fv[1].Rolling[0].Means[model.Points], ShouldEqual, 110.0)
			So(fv[0].Form[0].Window, ShouldEqual, 3)
			So(fv[0].RestDays, ShouldEqual, 3.0)
		})

		Convey("When parsing boundaries", func() {
			b, err := features.ParseWindowBoundary("include_current")
			So(err, ShouldBeNil)
			So(b, ShouldEqual, features.IncludeCurrent)
			b, err = features.ParseWindowBoundary("")
			So(err, ShouldBeNil)
			So(b, ShouldEqual, features.StrictlyPrior)
			_, err = features.ParseWindowBoundary("tomorrow")
			So(err, ShouldEqual, features.ErrInvalidBoundary)
			So(features.IncludeCurrent.String(), ShouldEqual, "include_current")
		})
	})
}
