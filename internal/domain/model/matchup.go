package model

import (
	"encoding/json"
	"time"
)

// Label is the forward-looking outcome of a row: the result of the team's next game.
// The zero value is UnknownLabel.
type Label struct {
	won   bool
	known bool
}

// UnknownLabel marks a row without a successor game.
var UnknownLabel = Label{}

// KnownLabel returns a label carrying an outcome.
func KnownLabel(won bool) Label { return Label{won: won, known: true} }

// Known reports whether the label carries an outcome.
func (l Label) Known() bool { return l.known }

// Won returns the outcome and whether it is known.
func (l Label) Won() (won, ok bool) { return l.won, l.known }

// Class returns 1 for a win and 0 for a loss. ok is false for unknown labels.
func (l Label) Class() (class int, ok bool) {
	if !l.known {
		return 0, false
	}
	if l.won {
		return 1, true
	}
	return 0, true
}

// MarshalJSON encodes unknown labels as null.
func (l Label) MarshalJSON() ([]byte, error) {
	if !l.known {
		return []byte("null"), nil
	}
	return json.Marshal(l.won)
}

// UnmarshalJSON decodes null as UnknownLabel and a boolean as a known outcome.
func (l *Label) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = UnknownLabel
		return nil
	}
	var won bool
	if err := json.Unmarshal(data, &won); err != nil {
		return err
	}
	*l = KnownLabel(won)
	return nil
}

// TeamDate identifies one team's game on one calendar day.
type TeamDate struct {
	Team string
	Date time.Time
}

// MatchupRow is a game joined with its own features, its label and the opponent's features.
// Rows are terminal once handed to the backtest engine.
type MatchupRow struct {
	ID          int
	Game        GameRecord
	Features    FeatureVector
	Label       Label
	OpponentKey TeamDate
	Opponent    FeatureVector
}

// Names returns column names in the same order as Values.
func (r MatchupRow) Names() []string {
	own := r.Features.Names()
	opp := r.Opponent.Names()
	names := make([]string, 0, len(own)+len(opp)+1)
	names = append(names, own...)
	for _, n := range opp {
		names = append(names, n+"_opp")
	}
	return append(names, "home")
}

// Values flattens the row into the model input vector.
func (r MatchupRow) Values() []float64 {
	own := r.Features.Values()
	opp := r.Opponent.Values()
	out := make([]float64, 0, len(own)+len(opp)+1)
	out = append(out, own...)
	out = append(out, opp...)
	return append(out, boolFloat(r.Game.Home))
}
