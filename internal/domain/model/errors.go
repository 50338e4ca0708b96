package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrDataIntegrity is the sentinel kind matched by every IntegrityError.
var ErrDataIntegrity = errors.New("data integrity")

// Integrity error kinds.
const (
	KindDuplicateGame    = "duplicate_game"
	KindMissingOpponent  = "missing_opponent"
	KindOpponentMismatch = "opponent_mismatch"
	KindMalformedDate    = "malformed_date"
	KindMalformedRecord  = "malformed_record"
	KindSeasonOrder      = "season_order"
)

// IntegrityError describes a record that cannot be used as-is.
type IntegrityError struct {
	Kind   string
	Team   string
	Date   time.Time
	Detail string
}

// NewIntegrityError builds an IntegrityError.
func NewIntegrityError(kind, team string, date time.Time, detail string) *IntegrityError {
	return &IntegrityError{Kind: kind, Team: team, Date: date, Detail: detail}
}

func (e *IntegrityError) Error() string {
	day := "-"
	if !e.Date.IsZero() {
		day = e.Date.Format(time.DateOnly)
	}
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s team=%s date=%s", ErrDataIntegrity, e.Kind, e.Team, day)
	}
	return fmt.Sprintf("%s: %s team=%s date=%s: %s", ErrDataIntegrity, e.Kind, e.Team, day, e.Detail)
}

// Is makes errors.Is(err, ErrDataIntegrity) hold.
func (e *IntegrityError) Is(target error) bool { return target == ErrDataIntegrity }
