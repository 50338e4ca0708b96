package backtest

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/formcast/internal/domain/model"
)

// Default split configuration constants.
const (
	DefaultSeasonStart = 2
	DefaultSeasonStep  = 1
	DefaultFolds       = 5
)

// Split is one chronological train/test cut, holding row positions.
type Split struct {
	Index int
	Name  string
	Train []int
	Test  []int
}

// Splitter produces chronological splits over rows ordered by date.
type Splitter interface {
	Name() string
	Splits(rows []model.MatchupRow) ([]Split, error)
}

// SeasonSplitter tests on one season at a time, training on every earlier season.
// Iterations start at the Start-th distinct season and advance by Step.
type SeasonSplitter struct {
	Start int
	Step  int
}

// Name returns "season".
func (SeasonSplitter) Name() string { return "season" }

// Splits implements Splitter.
func (s SeasonSplitter) Splits(rows []model.MatchupRow) ([]Split, error) {
	if s.Start < 0 || s.Step < 1 {
		return nil, fmt.Errorf("%w: season start %d step %d", ErrInvalidSplit, s.Start, s.Step)
	}
	if err := checkOrder(rows); err != nil {
		return nil, err
	}
	if err := checkSeasonOrder(rows); err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	var seasons []int
	for _, r := range rows {
		if !seen[r.Game.Season] {
			seen[r.Game.Season] = true
			seasons = append(seasons, r.Game.Season)
		}
	}
	sort.Ints(seasons)

	var out []Split
	for k := s.Start; k < len(seasons); k += s.Step {
		season := seasons[k]
		sp := Split{Index: len(out), Name: "season " + strconv.Itoa(season)}
		for i, r := range rows {
			switch {
			case r.Game.Season < season:
				sp.Train = append(sp.Train, i)
			case r.Game.Season == season:
				sp.Test = append(sp.Test, i)
			}
		}
		out = append(out, sp)
	}
	return out, nil
}

// FoldSplitter cuts the later part of the rows into Folds equal, consecutive
// test blocks; each block trains on every row before it. Block boundaries are
// moved forward past rows sharing a date so no date straddles a cut.
type FoldSplitter struct {
	Folds int
}

// Name returns "fold".
func (FoldSplitter) Name() string { return "fold" }

// Splits implements Splitter.
func (f FoldSplitter) Splits(rows []model.MatchupRow) ([]Split, error) {
	if f.Folds < 1 {
		return nil, fmt.Errorf("%w: %d folds", ErrInvalidSplit, f.Folds)
	}
	if err := checkOrder(rows); err != nil {
		return nil, err
	}

	n := len(rows)
	size := n / (f.Folds + 1)
	boundary := func(b int) int {
		for b > 0 && b < n && rows[b].Game.Date.Equal(rows[b-1].Game.Date) {
			b++
		}
		return b
	}

	out := make([]Split, 0, f.Folds)
	for k := 0; k < f.Folds; k++ {
		start := boundary(n - (f.Folds-k)*size)
		end := n
		if k < f.Folds-1 {
			end = boundary(n - (f.Folds-k-1)*size)
		}
		sp := Split{Index: k, Name: "fold " + strconv.Itoa(k+1)}
		sp.Train = positions(0, start)
		if end > start {
			sp.Test = positions(start, end)
		}
		out = append(out, sp)
	}
	return out, nil
}

// NewSplitter builds the splitter named by policy ("season" or "fold").
func NewSplitter(policy string, seasonStart, seasonStep, folds int) (Splitter, error) {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case "", "season":
		s := SeasonSplitter{Start: seasonStart, Step: seasonStep}
		if s.Start < 0 || s.Step < 1 {
			return nil, fmt.Errorf("%w: season start %d step %d", ErrInvalidSplit, s.Start, s.Step)
		}
		return s, nil
	case "fold":
		if folds < 1 {
			return nil, fmt.Errorf("%w: %d folds", ErrInvalidSplit, folds)
		}
		return FoldSplitter{Folds: folds}, nil
	default:
		return nil, fmt.Errorf("%w: unknown policy %q", ErrInvalidSplit, policy)
	}
}

func positions(from, to int) []int {
	if to <= from {
		return nil
	}
	out := make([]int, to-from)
	for i := range out {
		out[i] = from + i
	}
	return out
}

func checkOrder(rows []model.MatchupRow) error {
	for i := 1; i < len(rows); i++ {
		if rows[i].Game.Date.Before(rows[i-1].Game.Date) {
			return fmt.Errorf("%w: row %d", ErrUnorderedRows, i)
		}
	}
	return nil
}

// checkSeasonOrder rejects rows whose season decreases, or changes within a
// date, so that every earlier season ends before the next one starts.
func checkSeasonOrder(rows []model.MatchupRow) error {
	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1].Game, rows[i].Game
		switch {
		case cur.Season < prev.Season:
			return fmt.Errorf("%w: row %d season %d follows season %d", ErrUnorderedRows, i, cur.Season, prev.Season)
		case cur.Season != prev.Season && cur.Date.Equal(prev.Date):
			return fmt.Errorf("%w: row %d seasons %d and %d share a date", ErrUnorderedRows, i, prev.Season, cur.Season)
		}
	}
	return nil
}
