// Package timeline groups game records into per-team, date-ordered timelines.
package timeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/okian/formcast/internal/domain/dedupe"
	"github.com/okian/formcast/internal/domain/model"
)

// Build partitions records by team and orders each partition by date.
// Every duplicate (team, date) pair, every record without a team or date and
// every season that goes backwards in time within a team is reported; no
// timeline is returned when any is found.
func Build(ctx context.Context, records []model.GameRecord) (map[string]model.TeamTimeline, error) {
	seen := dedupe.NewInMemoryDeduper(dedupe.WithSizeHint(len(records)))
	byTeam := make(map[string][]model.GameRecord)
	var errs []error

	for i := range records {
		r := records[i]
		if r.Team == "" {
			errs = append(errs, model.NewIntegrityError(model.KindMalformedRecord, "", r.Date, "record "+strconv.Itoa(i)+" has no team"))
			continue
		}
		if r.Date.IsZero() {
			errs = append(errs, model.NewIntegrityError(model.KindMalformedDate, r.Team, r.Date, "record "+strconv.Itoa(i)+" has no date"))
			continue
		}
		r.Date = model.Day(r.Date)
		seen.SeenAndRecord(ctx, key(r.Team, r.Date))
		byTeam[r.Team] = append(byTeam[r.Team], r)
	}

	for _, k := range seen.Duplicates(ctx) {
		team, date := splitKey(k)
		errs = append(errs, model.NewIntegrityError(model.KindDuplicateGame, team, date,
			fmt.Sprintf("%d records share this team and date", seen.Occurrences(ctx, k))))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	out := make(map[string]model.TeamTimeline, len(byTeam))
	for team, games := range byTeam {
		out[team] = model.NewTeamTimeline(team, games)
	}
	for _, team := range Teams(out) {
		errs = append(errs, seasonOrder(out[team])...)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// seasonOrder reports every game whose season is lower than the game before it.
func seasonOrder(tl model.TeamTimeline) []error {
	var errs []error
	for i := 1; i < tl.Len(); i++ {
		prev, cur := tl.At(i-1), tl.At(i)
		if cur.Season < prev.Season {
			errs = append(errs, model.NewIntegrityError(model.KindSeasonOrder, tl.Team(), cur.Date,
				fmt.Sprintf("season %d follows season %d on %s", cur.Season, prev.Season, prev.Date.Format(time.DateOnly))))
		}
	}
	return errs
}

// Teams returns the team ids of timelines in sorted order.
func Teams(timelines map[string]model.TeamTimeline) []string {
	teams := make([]string, 0, len(timelines))
	for t := range timelines {
		teams = append(teams, t)
	}
	sort.Strings(teams)
	return teams
}

func key(team string, date time.Time) string {
	return date.Format(time.DateOnly) + "|" + team
}

func splitKey(k string) (string, time.Time) {
	const dateLen = len(time.DateOnly)
	d, _ := time.Parse(time.DateOnly, k[:dateLen])
	return k[dateLen+1:], d
}
