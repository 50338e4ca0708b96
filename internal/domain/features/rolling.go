// Package features derives pre-game attributes from a team's own timeline.
package features

import (
	"github.com/okian/formcast/internal/domain/model"
)

// WindowBoundary selects which games a rolling window may see.
type WindowBoundary int

const (
	// StrictlyPrior averages only games before the current one.
	StrictlyPrior WindowBoundary = iota
	// IncludeCurrent also averages the current game. It leaks the outcome being
	// predicted and exists to reproduce historical results.
	IncludeCurrent
)

// String returns the configuration name of the boundary.
func (b WindowBoundary) String() string {
	switch b {
	case StrictlyPrior:
		return "strictly_prior"
	case IncludeCurrent:
		return "include_current"
	default:
		return "unknown"
	}
}

// ParseWindowBoundary maps a configuration name to a WindowBoundary.
func ParseWindowBoundary(s string) (WindowBoundary, error) {
	switch s {
	case "", "strictly_prior":
		return StrictlyPrior, nil
	case "include_current":
		return IncludeCurrent, nil
	default:
		return StrictlyPrior, ErrInvalidBoundary
	}
}

// RollingMeans computes per-stat simple moving averages for every game and window.
// The result is indexed [game][window] in the order windows were given.
// With fewer than W eligible games the window shrinks; with none, Games is 0 and
// the means stay zero.
func RollingMeans(games []model.GameRecord, windows []int, boundary WindowBoundary) [][]model.WindowMeans {
	n := len(games)
	// prefix[i] holds the stat sums of games[0:i].
	prefix := make([]model.Stats, n+1)
	for i, g := range games {
		prefix[i+1] = prefix[i]
		for s := 0; s < model.NumStats; s++ {
			prefix[i+1][s] += g.Stats[s]
		}
	}

	out := make([][]model.WindowMeans, n)
	for i := 0; i < n; i++ {
		end := i
		if boundary == IncludeCurrent {
			end = i + 1
		}
		row := make([]model.WindowMeans, len(windows))
		for w, size := range windows {
			start := max(end-size, 0)
			wm := model.WindowMeans{Window: size, Games: end - start}
			if wm.Games > 0 {
				for s := 0; s < model.NumStats; s++ {
					wm.Means[s] = (prefix[end][s] - prefix[start][s]) / float64(wm.Games)
				}
			}
			row[w] = wm
		}
		out[i] = row
	}
	return out
}

// ExpandingAllowed computes, for each game, the mean box score conceded over all
// strictly prior games that carry one.
func ExpandingAllowed(games []model.GameRecord) []model.Stats {
	out := make([]model.Stats, len(games))
	var sum model.Stats
	count := 0
	for i, g := range games {
		if count > 0 {
			for s := 0; s < model.NumStats; s++ {
				out[i][s] = sum[s] / float64(count)
			}
		}
		if g.HasAllowed {
			for s := 0; s < model.NumStats; s++ {
				sum[s] += g.Allowed[s]
			}
			count++
		}
	}
	return out
}
