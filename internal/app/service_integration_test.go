package service_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/okian/formcast/internal/adapters/repository"
	service "github.com/okian/formcast/internal/app"
	"github.com/okian/formcast/internal/config"
	"github.com/okian/formcast/internal/datagen"
	"github.com/okian/formcast/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func league(t *testing.T, seed int64) []model.GameRecord {
	t.Helper()
	records, err := datagen.Generate(rand.New(rand.NewSource(seed)), datagen.Config{
		Teams:          6,
		Seasons:        4,
		GamesPerSeason: 16,
		FirstSeason:    2021,
		StartDate:      time.Date(2020, time.October, 20, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("generate league: %v", err)
	}
	return records
}

func TestService_Run(t *testing.T) {
	Convey("Given a synthetic league", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		records := league(t, 11)

		svc, err := service.New(service.WithWorkerCount(3), service.WithShardCount(4))
		So(err, ShouldBeNil)

		Convey("When running the pipeline", func() {
			res, err := svc.Run(ctx, records)

			Convey("Then every paired game should become a matchup row", func() {
				So(err, ShouldBeNil)
				So(res.Teams, ShouldEqual, 6)
				So(res.Games, ShouldEqual, len(records))
				So(len(res.Integrity), ShouldEqual, 0)
				So(len(res.Rows), ShouldEqual, len(records))
				for i, r := range res.Rows {
					So(r.ID, ShouldEqual, i)
				}
			})

			Convey("Then the season walk-forward should score the later seasons", func() {
				So(res.Report.Policy, ShouldEqual, "season")
				So(len(res.Report.Iterations), ShouldEqual, 2)
				So(res.Report.ValidPredictions, ShouldBeGreaterThan, 0)
				So(res.Report.OverallAccuracy, ShouldBeBetweenOrEqual, 0, 1)
				So(res.Report.ExcludedIntegrity, ShouldEqual, 0)
			})

			Convey("Then readers should expose the result", func() {
				last, err := svc.LastResult()
				So(err, ShouldBeNil)
				So(last, ShouldEqual, res)

				rows, err := svc.Matchups(ctx, "ATL", 3)
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 3)
				for _, r := range rows {
					So(r.Game.Team, ShouldEqual, "ATL")
				}

				first := res.Rows[0]
				entry, err := svc.Features(ctx, first.Game.Team, first.Game.Date)
				So(err, ShouldBeNil)
				So(entry.Features, ShouldResemble, first.Features)

				_, err = svc.Features(ctx, "ZZZ", first.Game.Date)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

				stats := svc.GetStats()
				So(stats["runs"], ShouldEqual, 1)
				So(stats["storedEntries"], ShouldEqual, len(records))
			})
		})

		Convey("When running twice on the same input", func() {
			a, errA := svc.Run(ctx, records)
			b, errB := svc.Run(ctx, records)

			Convey("Then the outputs should be identical", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(b.Rows, ShouldResemble, a.Rows)
				So(b.Report, ShouldResemble, a.Report)
				So(svc.GetStats()["runs"], ShouldEqual, 2)
			})
		})

		Convey("When running with a different worker count", func() {
			single, err := service.New(service.WithWorkerCount(1), service.WithShardCount(1))
			So(err, ShouldBeNil)

			a, errA := svc.Run(ctx, records)
			b, errB := single.Run(ctx, records)

			Convey("Then rows and report should not depend on parallelism", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(b.Rows, ShouldResemble, a.Rows)
				So(b.Report, ShouldResemble, a.Report)
			})
		})

		Convey("When the input holds a duplicate team-date", func() {
			dup := append(append([]model.GameRecord(nil), records...), records[0])
			res, err := svc.Run(ctx, dup)

			Convey("Then the run should fail with a data integrity error", func() {
				So(res, ShouldBeNil)
				So(errors.Is(err, model.ErrDataIntegrity), ShouldBeTrue)
				So(svc.GetStats()["failedRuns"], ShouldEqual, 1)
			})
		})

		Convey("When one side of a game is missing", func() {
			var partial []model.GameRecord
			var dropped model.GameRecord
			for i, r := range records {
				if i == len(records)/2 {
					dropped = r
					continue
				}
				partial = append(partial, r)
			}
			res, err := svc.Run(ctx, partial)

			Convey("Then the opponent's row should be dropped as missing_opponent", func() {
				So(err, ShouldBeNil)
				So(len(res.Integrity), ShouldEqual, 1)
				So(res.Integrity[0].Kind, ShouldEqual, model.KindMissingOpponent)
				So(res.Integrity[0].Team, ShouldEqual, dropped.Opponent)
				So(res.Report.ExcludedIntegrity, ShouldEqual, 1)
				So(len(res.Rows), ShouldEqual, len(partial)-1)
			})

			Convey("And records rejected while loading should be counted too", func() {
				res, err := svc.Run(ctx, partial, service.WithIngestDropped(3))
				So(err, ShouldBeNil)
				So(res.IngestDropped, ShouldEqual, 3)
				So(res.Report.ExcludedIntegrity, ShouldEqual, 4)
			})
		})
	})
}

func TestService_RunFromConfig(t *testing.T) {
	Convey("Given a fold walk-forward configuration", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.SplitPolicy = "fold"
		cfg.FoldCount = 4
		cfg.WorkerCount = 2
		cfg.TopK = 10

		svc, err := service.NewFromConfig(cfg)
		So(err, ShouldBeNil)

		Convey("When running the pipeline", func() {
			res, err := svc.Run(ctx, league(t, 5))

			Convey("Then the report should carry one iteration per fold", func() {
				So(err, ShouldBeNil)
				So(res.Report.Policy, ShouldEqual, "fold")
				So(len(res.Report.Iterations), ShouldEqual, 4)
				for _, it := range res.Report.Iterations {
					if !it.Skipped {
						So(it.Columns, ShouldBeLessThanOrEqualTo, 10)
					}
				}
			})
		})
	})

	Convey("Given a next-game join configuration", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.JoinMode = "next_game"

		svc, err := service.NewFromConfig(cfg)
		So(err, ShouldBeNil)

		Convey("When running the pipeline", func() {
			records := league(t, 9)
			res, err := svc.Run(ctx, records)

			Convey("Then each team's final game should have no successor", func() {
				So(err, ShouldBeNil)
				So(res.NoSuccessor, ShouldEqual, 6)
				So(len(res.Rows)+res.NoSuccessor+len(res.Integrity), ShouldEqual, len(records))
			})
		})
	})
}
