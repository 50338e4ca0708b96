package features

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithRollingWindows sets the rolling-average window sizes.
func WithRollingWindows(windows ...int) Option {
	return func(g *Generator) {
		if len(windows) > 0 {
			g.rollingWindows = append([]int(nil), windows...)
		}
	}
}

// WithFormWindows sets the recent-form window sizes.
func WithFormWindows(windows ...int) Option {
	return func(g *Generator) {
		if len(windows) > 0 {
			g.formWindows = append([]int(nil), windows...)
		}
	}
}

// WithWindowBoundary selects which games rolling windows may include.
func WithWindowBoundary(b WindowBoundary) Option {
	return func(g *Generator) {
		g.boundary = b
	}
}

// WithSeasonLength sets the canonical number of games per season.
func WithSeasonLength(n int) Option {
	return func(g *Generator) {
		g.seasonLength = n
	}
}

// WithDefaultRestDays sets the rest-day value used for a team's first game.
func WithDefaultRestDays(days float64) Option {
	return func(g *Generator) {
		if days >= 0 {
			g.defaultRestDays = days
		}
	}
}
