// Package ingest loads and writes team-game box scores in CSV form.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/okian/formcast/internal/domain/model"
	"github.com/okian/formcast/pkg/metrics"
)

// Accepted date layouts, tried in order.
var dateLayouts = []string{time.DateOnly, time.DateTime, "2006-01-02T15:04:05Z07:00", "01/02/2006"}

// statAliases maps every accepted header to a stat. Both the canonical names
// and the basketball-reference style names are accepted.
var statAliases = map[string]model.Stat{
	"pts":     model.Points,
	"fg_pct":  model.FieldGoalPct,
	"fg%":     model.FieldGoalPct,
	"fg3_pct": model.ThreePointPct,
	"3p%":     model.ThreePointPct,
	"ft_pct":  model.FreeThrowPct,
	"ft%":     model.FreeThrowPct,
	"trb":     model.Rebounds,
	"ast":     model.Assists,
	"stl":     model.Steals,
	"blk":     model.Blocks,
	"tov":     model.Turnovers,
	"pf":      model.Fouls,
}

const oppSuffix = "_opp"

// layout records where each field lives in a header.
type layout struct {
	gameID, team, opponent, date, season, won, home int
	stats, allowed                                  [model.NumStats]int
	hasAllowed                                      bool
}

func parseHeader(header []string) (layout, error) {
	l := layout{gameID: -1, home: -1}
	for i := range l.stats {
		l.stats[i], l.allowed[i] = -1, -1
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	find := func(names ...string) int {
		for _, n := range names {
			if i, ok := idx[n]; ok {
				return i
			}
		}
		return -1
	}

	l.gameID = find("game_id")
	l.team = find("team")
	l.opponent = find("opponent", "team_opp")
	l.date = find("date")
	l.season = find("season")
	l.won = find("won")
	l.home = find("home")

	required := []struct {
		name string
		col  int
	}{{"team", l.team}, {"opponent", l.opponent}, {"date", l.date}, {"season", l.season}, {"won", l.won}}
	for _, r := range required {
		if r.col < 0 {
			return layout{}, fmt.Errorf("%w: %s", ErrMissingColumn, r.name)
		}
	}

	for alias, stat := range statAliases {
		if i, ok := idx[alias]; ok {
			l.stats[stat] = i
		}
		if i, ok := idx[alias+oppSuffix]; ok {
			l.allowed[stat] = i
		}
	}
	l.hasAllowed = true
	for s := 0; s < model.NumStats; s++ {
		if l.stats[s] < 0 {
			return layout{}, fmt.Errorf("%w: %s", ErrMissingColumn, model.Stat(s))
		}
		if l.allowed[s] < 0 {
			l.hasAllowed = false
		}
	}
	return l, nil
}

// Read parses every data row of r. Rows that cannot be parsed are skipped and
// reported together in the returned error as *model.IntegrityError values, so
// callers receive every valid record even when the error is non-nil.
func Read(ctx context.Context, r io.Reader) ([]model.GameRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	l, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	var records []model.GameRecord
	var errs []error
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			errs = append(errs, model.NewIntegrityError(model.KindMalformedRecord, "", time.Time{},
				fmt.Sprintf("line %d: %v", line, err)))
			continue
		}
		rec, ierr := l.record(row, line)
		if ierr != nil {
			metrics.RecordIntegrityIssue(ierr.Kind)
			errs = append(errs, ierr)
			continue
		}
		records = append(records, rec)
	}

	metrics.RecordRecordsIngested(len(records))
	return records, errors.Join(errs...)
}

// Dropped returns how many rows a Read error reports as skipped.
func Dropped(err error) int {
	if err == nil {
		return 0
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		var ierr *model.IntegrityError
		if errors.As(err, &ierr) {
			return 1
		}
		return 0
	}
	n := 0
	for _, e := range joined.Unwrap() {
		var ierr *model.IntegrityError
		if errors.As(e, &ierr) {
			n++
		}
	}
	return n
}

// ReadFile opens path and reads it with Read.
func ReadFile(ctx context.Context, path string) ([]model.GameRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(ctx, f)
}

func (l layout) record(row []string, line int) (model.GameRecord, *model.IntegrityError) {
	get := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	bad := func(kind, team string, date time.Time, format string, args ...any) *model.IntegrityError {
		return model.NewIntegrityError(kind, team, date, fmt.Sprintf("line %d: ", line)+fmt.Sprintf(format, args...))
	}

	rec := model.GameRecord{
		GameID:   get(l.gameID),
		Team:     get(l.team),
		Opponent: get(l.opponent),
	}
	if rec.Team == "" || rec.Opponent == "" {
		return rec, bad(model.KindMalformedRecord, rec.Team, time.Time{}, "team and opponent are required")
	}

	date, err := parseDate(get(l.date))
	if err != nil {
		return rec, bad(model.KindMalformedDate, rec.Team, time.Time{}, "%v", err)
	}
	rec.Date = date

	if rec.Season, err = parseSeason(get(l.season)); err != nil {
		return rec, bad(model.KindMalformedRecord, rec.Team, date, "%v", err)
	}

	if rec.Won, err = parseBool(get(l.won)); err != nil {
		return rec, bad(model.KindMalformedRecord, rec.Team, date, "won: %v", err)
	}
	if l.home >= 0 {
		if rec.Home, err = parseBool(get(l.home)); err != nil {
			return rec, bad(model.KindMalformedRecord, rec.Team, date, "home: %v", err)
		}
	}

	// Allowed stats count only when the opponent columns exist and are filled in.
	rec.HasAllowed = l.hasAllowed
	if rec.HasAllowed {
		blank := true
		for s := 0; s < model.NumStats; s++ {
			if get(l.allowed[s]) != "" {
				blank = false
			}
		}
		rec.HasAllowed = !blank
	}

	for s := 0; s < model.NumStats; s++ {
		if rec.Stats[s], err = parseStat(get(l.stats[s])); err != nil {
			return rec, bad(model.KindMalformedRecord, rec.Team, date, "%s: %v", model.Stat(s), err)
		}
		if !rec.HasAllowed {
			continue
		}
		if rec.Allowed[s], err = parseStat(get(l.allowed[s])); err != nil {
			return rec, bad(model.KindMalformedRecord, rec.Team, date, "%s_opp: %v", model.Stat(s), err)
		}
	}
	return rec, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "1.0", "true", "t", "yes", "w":
		return true, nil
	case "0", "0.0", "false", "f", "no", "l":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", s)
	}
}

// parseSeason accepts whole numbers, including float-formatted ones such as "2017.0".
func parseSeason(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) ||
		f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("season %q is not a whole number", s)
	}
	return int(f), nil
}

// parseStat treats an empty cell as zero, the way the box-score exports leave missing percentages.
func parseStat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}

// Write emits records in the canonical column layout.
func Write(w io.Writer, records []model.GameRecord) error {
	cw := csv.NewWriter(w)

	header := []string{"game_id", "team", "opponent", "date", "season", "home", "won"}
	header = append(header, model.StatNames()...)
	for _, name := range model.StatNames() {
		header = append(header, name+oppSuffix)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.GameID,
			r.Team,
			r.Opponent,
			r.Date.Format(time.DateOnly),
			strconv.Itoa(r.Season),
			strconv.FormatBool(r.Home),
			strconv.FormatBool(r.Won),
		}
		for _, v := range r.Stats {
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		for _, v := range r.Allowed {
			if !r.HasAllowed {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write %s %s: %w", r.Team, r.Date.Format(time.DateOnly), err)
		}
	}

	cw.Flush()
	return cw.Error()
}
