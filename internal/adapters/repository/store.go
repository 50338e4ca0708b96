// Package repository holds the keyed feature store that every pipeline stage
// after feature generation reads from.
package repository

import (
	"context"
	"time"

	"github.com/okian/formcast/internal/domain/model"
)

// Entry is one team-game together with its pre-game features.
type Entry struct {
	Record   model.GameRecord
	Features model.FeatureVector
}

// Key returns the (team, date) key of the entry.
func (e Entry) Key() model.TeamDate {
	return model.TeamDate{Team: e.Record.Team, Date: e.Record.Date}
}

// Store provides keyed access to computed features.
type Store interface {
	// Put inserts entries. Returns ErrDuplicate if a (team, date) key already exists.
	Put(ctx context.Context, entries ...Entry) error

	// Get returns the entry for a team on a date.
	// Returns ErrNotFound if there is none.
	Get(ctx context.Context, team string, date time.Time) (Entry, error)

	// Timeline returns a team's entries ordered by date.
	// Returns ErrNotFound if the team is unknown.
	Timeline(ctx context.Context, team string) ([]Entry, error)

	// Teams returns all team ids in sorted order.
	Teams(ctx context.Context) []string

	// Count returns the number of entries stored.
	Count(ctx context.Context) int
}
