// Package align attaches forward-looking labels and opponent features to every
// team-game, producing the matchup rows consumed by the backtest.
package align

import (
	"fmt"
	"strings"

	"github.com/okian/formcast/internal/domain/model"
)

// LabelScope decides where a timeline stops having successor games.
type LabelScope int

const (
	// ScopeTimeline leaves only the final game of a team unlabelled.
	ScopeTimeline LabelScope = iota
	// ScopeSeason also leaves the last game of every season unlabelled.
	ScopeSeason
)

func (s LabelScope) String() string {
	switch s {
	case ScopeTimeline:
		return "timeline"
	case ScopeSeason:
		return "season"
	default:
		return "unknown"
	}
}

// ParseLabelScope parses "timeline" (default when empty) or "season".
func ParseLabelScope(s string) (LabelScope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "timeline":
		return ScopeTimeline, nil
	case "season":
		return ScopeSeason, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidScope, s)
	}
}

// Labels returns, for every game, the outcome of the team's next game.
func Labels(tl model.TeamTimeline, scope LabelScope) []model.Label {
	out := make([]model.Label, tl.Len())
	for i := 0; i+1 < tl.Len(); i++ {
		next := tl.At(i + 1)
		if scope == ScopeSeason && next.Season != tl.At(i).Season {
			continue
		}
		out[i] = model.KnownLabel(next.Won)
	}
	return out
}
