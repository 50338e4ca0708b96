// Package types contains the backtest report types shared by the pipeline,
// the CLI and the HTTP API.
package types

import (
	"errors"
	"time"

	"github.com/okian/formcast/internal/domain/model"
)

// ErrNoResult is returned by readers before the pipeline has produced a result.
var ErrNoResult = errors.New("no pipeline result yet")

// Prediction is one scored test row.
type Prediction struct {
	RowID     int         `json:"row_id"`
	Team      string      `json:"team"`
	Opponent  string      `json:"opponent"`
	Date      time.Time   `json:"date"`
	Actual    model.Label `json:"actual"`
	Predicted int         `json:"predicted"`
	// Confidence is the signed decision value when the classifier exposes one.
	Confidence *float64 `json:"confidence,omitempty"`
	Iteration  int      `json:"iteration"`
}

// Correct reports whether the prediction matched a known label.
func (p Prediction) Correct() bool {
	class, ok := p.Actual.Class()
	return ok && class == p.Predicted
}

// IterationResult summarizes one walk-forward iteration.
type IterationResult struct {
	Index     int     `json:"index"`
	Name      string  `json:"name"`
	TrainRows int     `json:"train_rows"`
	TestRows  int     `json:"test_rows"`
	Scored    int     `json:"scored"`
	Correct   int     `json:"correct"`
	Accuracy  float64 `json:"accuracy"`
	Columns   int     `json:"columns,omitempty"`

	Skipped    bool   `json:"skipped"`
	SkipReason string `json:"skip_reason,omitempty"`
}

// Report is the outcome of a backtest run.
type Report struct {
	Policy string `json:"policy"`

	// OverallAccuracy is Correct / ValidPredictions over all iterations.
	OverallAccuracy       float64 `json:"overall_accuracy"`
	MeanIterationAccuracy float64 `json:"mean_iteration_accuracy"`
	ValidPredictions      int     `json:"valid_predictions"`
	Correct               int     `json:"correct"`

	// ExcludedUnknown counts test rows whose label has no successor game.
	ExcludedUnknown int `json:"excluded_unknown"`
	// ExcludedIntegrity counts rows dropped before the backtest by data integrity checks.
	ExcludedIntegrity int `json:"excluded_integrity"`

	// PerIterationAccuracy lists the accuracy of every scored iteration in order.
	PerIterationAccuracy []float64 `json:"per_iteration_accuracy"`

	Iterations  []IterationResult `json:"iterations"`
	Predictions []Prediction      `json:"predictions"`
}

// ScoredAccuracies derives the accuracy of every scored iteration from Iterations.
func (r Report) ScoredAccuracies() []float64 {
	out := make([]float64, 0, len(r.Iterations))
	for _, it := range r.Iterations {
		if !it.Skipped {
			out = append(out, it.Accuracy)
		}
	}
	return out
}

// ScoredIterations returns the number of iterations that produced predictions.
func (r Report) ScoredIterations() int {
	return len(r.ScoredAccuracies())
}

// Matchup is the wire shape of one aligned row shared by the HTTP API and the stream publisher.
type Matchup struct {
	ID               int                `json:"id"`
	GameID           string             `json:"game_id,omitempty"`
	Team             string             `json:"team"`
	Opponent         string             `json:"opponent"`
	Date             string             `json:"date"`
	Season           int                `json:"season"`
	Home             bool               `json:"home"`
	Won              bool               `json:"won"`
	Label            model.Label        `json:"label"`
	OpponentDate     string             `json:"opponent_date"`
	Features         map[string]float64 `json:"features"`
	OpponentFeatures map[string]float64 `json:"opponent_features"`
}

// NewMatchup converts a row to its wire shape.
func NewMatchup(r model.MatchupRow) Matchup {
	return Matchup{
		ID:               r.ID,
		GameID:           r.Game.GameID,
		Team:             r.Game.Team,
		Opponent:         r.Game.Opponent,
		Date:             r.Game.Date.Format(time.DateOnly),
		Season:           r.Game.Season,
		Home:             r.Game.Home,
		Won:              r.Game.Won,
		Label:            r.Label,
		OpponentDate:     r.OpponentKey.Date.Format(time.DateOnly),
		Features:         FeatureMap(r.Features),
		OpponentFeatures: FeatureMap(r.Opponent),
	}
}

// FeatureMap keys every feature value by its column name.
func FeatureMap(f model.FeatureVector) map[string]float64 {
	names, values := f.Names(), f.Values()
	out := make(map[string]float64, len(names))
	for i, n := range names {
		out[n] = values[i]
	}
	return out
}
