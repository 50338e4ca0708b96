package features

import (
	"fmt"

	"github.com/okian/formcast/internal/domain/model"
)

// Defaults for feature generation.
const (
	DefaultSeasonLength   = 82
	DefaultRestDays       = 2.0
	backToBackMaxRestDays = 1.0
)

// DefaultRollingWindows and DefaultFormWindows are the window sizes used when none are configured.
var (
	DefaultRollingWindows = []int{3, 5, 10}
	DefaultFormWindows    = []int{5, 10}
)

// Generator computes FeatureVectors from a TeamTimeline. It holds no state
// between calls and is safe for concurrent use.
type Generator struct {
	rollingWindows  []int
	formWindows     []int
	boundary        WindowBoundary
	seasonLength    int
	defaultRestDays float64
}

// NewGenerator validates options and returns a Generator.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		rollingWindows:  append([]int(nil), DefaultRollingWindows...),
		formWindows:     append([]int(nil), DefaultFormWindows...),
		boundary:        StrictlyPrior,
		seasonLength:    DefaultSeasonLength,
		defaultRestDays: DefaultRestDays,
	}
	for _, opt := range opts {
		opt(g)
	}

	for _, w := range append(append([]int(nil), g.rollingWindows...), g.formWindows...) {
		if w <= 0 {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, w)
		}
	}
	if g.boundary != StrictlyPrior && g.boundary != IncludeCurrent {
		return nil, ErrInvalidBoundary
	}
	if g.seasonLength <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSeasonLength, g.seasonLength)
	}
	return g, nil
}

// Boundary returns the configured rolling window boundary.
func (g *Generator) Boundary() WindowBoundary { return g.boundary }

// Generate returns one FeatureVector per game of tl, in timeline order.
func (g *Generator) Generate(tl model.TeamTimeline) []model.FeatureVector {
	games := tl.Games()
	outcomes := tl.Outcomes()

	rolling := RollingMeans(games, g.rollingWindows, g.boundary)
	win, loss := Streaks(outcomes)
	forms := make([][]float64, len(g.formWindows))
	for i, w := range g.formWindows {
		forms[i] = FormRatios(outcomes, w)
	}
	momentum := Momentum(outcomes)
	rest := RestDays(games, g.defaultRestDays)
	progress := SeasonProgress(games, g.seasonLength)
	allowed := ExpandingAllowed(games)

	out := make([]model.FeatureVector, len(games))
	for i := range games {
		form := make([]model.FormRatio, len(g.formWindows))
		for k, w := range g.formWindows {
			form[k] = model.FormRatio{Window: w, Ratio: forms[k][i]}
		}
		out[i] = model.FeatureVector{
			Rolling:           rolling[i],
			WinStreak:         win[i],
			LossStreak:        loss[i],
			Form:              form,
			Momentum:          momentum[i],
			RestDays:          rest[i],
			BackToBack:        rest[i] <= backToBackMaxRestDays,
			SeasonProgress:    progress[i],
			OpponentAggregate: allowed[i],
		}
	}
	return out
}
