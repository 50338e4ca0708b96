// Package model contains domain models passed between layers.
package model

import (
	"sort"
	"time"
)

// Stat indexes one box-score statistic inside Stats.
type Stat int

// Box-score statistics tracked for every team-game.
const (
	Points Stat = iota
	FieldGoalPct
	ThreePointPct
	FreeThrowPct
	Rebounds
	Assists
	Steals
	Blocks
	Turnovers
	Fouls

	NumStats = int(Fouls) + 1
)

var statNames = [NumStats]string{
	"pts", "fg_pct", "fg3_pct", "ft_pct", "trb", "ast", "stl", "blk", "tov", "pf",
}

// String returns the canonical column name of the stat.
func (s Stat) String() string {
	if int(s) < 0 || int(s) >= NumStats {
		return "unknown"
	}
	return statNames[s]
}

// StatNames returns the canonical stat names in index order.
func StatNames() []string {
	out := make([]string, NumStats)
	copy(out, statNames[:])
	return out
}

// Stats is a fixed-size box score.
type Stats [NumStats]float64

// GameRecord is one team's participation in one game.
// The paired record for the opponent carries Team/Opponent swapped and the same Date.
type GameRecord struct {
	GameID   string
	Team     string
	Opponent string
	Date     time.Time // calendar day, UTC midnight
	Season   int
	Home     bool
	Won      bool
	Stats    Stats

	// Allowed is the opponent's box score in the same game, when known.
	Allowed    Stats
	HasAllowed bool
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TeamTimeline is the date-ordered sequence of a single team's games.
// It is immutable once built.
type TeamTimeline struct {
	team  string
	games []GameRecord
}

// NewTeamTimeline copies games and orders them by date.
// Callers are expected to have rejected duplicate dates beforehand.
func NewTeamTimeline(team string, games []GameRecord) TeamTimeline {
	cp := make([]GameRecord, len(games))
	copy(cp, games)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Date.Before(cp[j].Date) })
	return TeamTimeline{team: team, games: cp}
}

// Team returns the team id.
func (t TeamTimeline) Team() string { return t.team }

// Len returns the number of games.
func (t TeamTimeline) Len() int { return len(t.games) }

// At returns the i-th game.
func (t TeamTimeline) At(i int) GameRecord { return t.games[i] }

// Games returns a copy of the ordered games.
func (t TeamTimeline) Games() []GameRecord {
	cp := make([]GameRecord, len(t.games))
	copy(cp, t.games)
	return cp
}

// Outcomes returns the win/loss sequence.
func (t TeamTimeline) Outcomes() []bool {
	out := make([]bool, len(t.games))
	for i, g := range t.games {
		out[i] = g.Won
	}
	return out
}
