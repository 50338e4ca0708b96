package datagen

import (
	"errors"
	"fmt"
	"time"
)

// Config holds configuration for a synthetic league.
type Config struct {
	Teams          int       // Number of teams, at least 2
	Seasons        int       // Number of consecutive seasons
	GamesPerSeason int       // Target games per team per season
	FirstSeason    int       // Season number of the first season
	StartDate      time.Time // Opening day of the first season
}

// ErrInvalidConfig is returned for configurations that cannot produce a league.
var ErrInvalidConfig = errors.New("invalid league configuration")

// DefaultConfig returns a small league suited for demos and tests.
func DefaultConfig() Config {
	return Config{
		Teams:          defaultTeams,
		Seasons:        defaultSeasons,
		GamesPerSeason: defaultGamesPerSeason,
		FirstSeason:    defaultFirstSeason,
		StartDate:      time.Date(defaultFirstSeason-1, time.October, 18, 0, 0, 0, 0, time.UTC),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.Teams < 2:
		return fmt.Errorf("%w: teams %d", ErrInvalidConfig, c.Teams)
	case c.Seasons < 1:
		return fmt.Errorf("%w: seasons %d", ErrInvalidConfig, c.Seasons)
	case c.GamesPerSeason < 1:
		return fmt.Errorf("%w: games per season %d", ErrInvalidConfig, c.GamesPerSeason)
	case c.StartDate.IsZero():
		return fmt.Errorf("%w: start date not set", ErrInvalidConfig)
	}
	return nil
}
