package align

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/okian/formcast/internal/adapters/repository"
	"github.com/okian/formcast/internal/domain/model"
	"github.com/okian/formcast/pkg/logger"
	"github.com/okian/formcast/pkg/metrics"
)

// JoinMode selects which opponent row is attached to a game.
type JoinMode int

const (
	// JoinSameGame attaches the opponent's pre-game features for the same game.
	JoinSameGame JoinMode = iota
	// JoinNextGame attaches the next opponent's pre-game features for the
	// team's next game, pairing each row with the matchup its label describes.
	JoinNextGame
)

func (m JoinMode) String() string {
	switch m {
	case JoinSameGame:
		return "same_game"
	case JoinNextGame:
		return "next_game"
	default:
		return "unknown"
	}
}

// ParseJoinMode parses "same_game" (default when empty) or "next_game".
func ParseJoinMode(s string) (JoinMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "same_game":
		return JoinSameGame, nil
	case "next_game":
		return JoinNextGame, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidJoinMode, s)
	}
}

// Reader is the keyed feature lookup the aligner needs.
type Reader interface {
	Get(ctx context.Context, team string, date time.Time) (repository.Entry, error)
	Timeline(ctx context.Context, team string) ([]repository.Entry, error)
	Teams(ctx context.Context) []string
}

// Result holds the aligned rows and everything that was left out.
type Result struct {
	Rows []model.MatchupRow

	// Integrity lists rows dropped because the opponent join failed.
	Integrity []*model.IntegrityError

	// NoSuccessor counts rows dropped in next-game mode because the team has no later game.
	NoSuccessor int
}

// Dropped returns the number of rows left out of Rows.
func (r Result) Dropped() int { return len(r.Integrity) + r.NoSuccessor }

// Aligner builds matchup rows from a populated feature store.
type Aligner struct {
	scope  LabelScope
	mode   JoinMode
	logger logger.Logger
}

// NewAligner creates an Aligner with label scope timeline and same-game joins.
func NewAligner(opts ...Option) *Aligner {
	a := &Aligner{
		scope:  ScopeTimeline,
		mode:   JoinSameGame,
		logger: logger.Get().Named("align"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Align labels every stored game, joins its opponent and returns rows ordered
// by (date, team) with ID equal to position.
func (a *Aligner) Align(ctx context.Context, store Reader) (Result, error) {
	var res Result

	for _, team := range store.Teams(ctx) {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		entries, err := store.Timeline(ctx, team)
		if err != nil {
			return Result{}, fmt.Errorf("load timeline %s: %w", team, err)
		}
		games := make([]model.GameRecord, len(entries))
		for i, e := range entries {
			games[i] = e.Record
		}
		labels := Labels(model.NewTeamTimeline(team, games), a.scope)

		for i, e := range entries {
			row := model.MatchupRow{Game: e.Record, Features: e.Features, Label: labels[i]}

			var opp repository.Entry
			var ierr *model.IntegrityError
			switch a.mode {
			case JoinNextGame:
				if i+1 >= len(entries) {
					res.NoSuccessor++
					metrics.RecordMatchupRowDropped("no_successor")
					continue
				}
				opp, ierr, err = a.join(ctx, store, entries[i+1].Record)
			default:
				opp, ierr, err = a.join(ctx, store, e.Record)
			}
			if err != nil {
				return Result{}, err
			}
			if ierr != nil {
				res.Integrity = append(res.Integrity, ierr)
				metrics.RecordMatchupRowDropped(ierr.Kind)
				metrics.RecordIntegrityIssue(ierr.Kind)
				a.logger.Warn(ctx, "matchup row dropped",
					logger.String("kind", ierr.Kind),
					logger.String("team", ierr.Team),
					logger.String("date", ierr.Date.Format(time.DateOnly)),
					logger.String("detail", ierr.Detail),
				)
				continue
			}

			row.OpponentKey = opp.Key()
			row.Opponent = opp.Features
			res.Rows = append(res.Rows, row)
		}
	}

	sort.SliceStable(res.Rows, func(i, j int) bool {
		di, dj := res.Rows[i].Game.Date, res.Rows[j].Game.Date
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return res.Rows[i].Game.Team < res.Rows[j].Game.Team
	})
	for i := range res.Rows {
		res.Rows[i].ID = i
	}

	metrics.RecordMatchupRows(len(res.Rows))
	if dropped := res.Dropped(); dropped > 0 {
		a.logger.Warn(ctx, "alignment dropped rows",
			logger.Int("integrity", len(res.Integrity)),
			logger.Int("no_successor", res.NoSuccessor),
		)
	}
	a.logger.Info(ctx, "alignment complete",
		logger.Int("rows", len(res.Rows)),
		logger.String("join_mode", a.mode.String()),
		logger.String("label_scope", a.scope.String()),
	)
	return res, nil
}

// join looks up the opponent's side of game g.
func (a *Aligner) join(ctx context.Context, store Reader, g model.GameRecord) (repository.Entry, *model.IntegrityError, error) {
	opp, err := store.Get(ctx, g.Opponent, g.Date)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Entry{}, model.NewIntegrityError(model.KindMissingOpponent, g.Team, g.Date,
			fmt.Sprintf("no record for opponent %s", g.Opponent)), nil
	}
	if err != nil {
		return repository.Entry{}, nil, fmt.Errorf("lookup opponent %s: %w", g.Opponent, err)
	}
	if opp.Record.Opponent != g.Team {
		return repository.Entry{}, model.NewIntegrityError(model.KindOpponentMismatch, g.Team, g.Date,
			fmt.Sprintf("%s played %s on that date", g.Opponent, opp.Record.Opponent)), nil
	}
	return opp, nil, nil
}
