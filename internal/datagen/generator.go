// Package datagen generates deterministic synthetic leagues of paired
// team-game records for demos and tests.
package datagen

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/okian/formcast/internal/domain/model"
)

// Generate builds a league schedule and box scores from rng. The same seed
// and configuration always yield the same records. Both sides of every game
// are emitted, ordered by date then team.
func Generate(rng *rand.Rand, cfg Config) ([]model.GameRecord, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	teams := TeamNames(cfg.Teams)
	strength := make(map[string]float64, len(teams))
	for _, t := range teams {
		strength[t] = rng.NormFloat64() * strengthSpread
	}

	var out []model.GameRecord
	for s := 0; s < cfg.Seasons; s++ {
		season := cfg.FirstSeason + s
		opening := cfg.StartDate.AddDate(0, 0, s*daysBetweenSeasons)
		played := make(map[string]int, len(teams))

		for day := 0; day < maxSeasonDays; day++ {
			var pending []string
			for _, t := range teams {
				if played[t] < cfg.GamesPerSeason {
					pending = append(pending, t)
				}
			}
			if len(pending) < 2 {
				break
			}

			rng.Shuffle(len(pending), func(i, j int) { pending[i], pending[j] = pending[j], pending[i] })
			date := model.Day(opening.AddDate(0, 0, day))
			for i := 0; i+1 < len(pending); i += 2 {
				if rng.Float64() > playProbability {
					continue
				}
				home, away := pending[i], pending[i+1]
				h, a, err := playGame(rng, home, away, strength)
				if err != nil {
					return nil, err
				}
				h.Date, a.Date = date, date
				h.Season, a.Season = season, season
				out = append(out, h, a)
				played[home]++
				played[away]++
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Team < out[j].Team
	})
	return out, nil
}

// TeamNames returns n team codes, falling back to numbered names past the built-in list.
func TeamNames(n int) []string {
	out := make([]string, n)
	for i := range out {
		if i < len(teamCodes) {
			out[i] = teamCodes[i]
			continue
		}
		out[i] = fmt.Sprintf("T%02d", i)
	}
	sort.Strings(out)
	return out
}

// playGame produces both sides of one game.
func playGame(rng *rand.Rand, home, away string, strength map[string]float64) (model.GameRecord, model.GameRecord, error) {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return model.GameRecord{}, model.GameRecord{}, fmt.Errorf("game id: %w", err)
	}

	diff := strength[home] - strength[away] + homeAdvantage
	hs := boxScore(rng, diff/2)
	as := boxScore(rng, -diff/2)
	if hs[model.Points] == as[model.Points] {
		// No ties in basketball: decide overtime on a coin flip.
		if rng.Intn(2) == 0 {
			hs[model.Points]++
		} else {
			as[model.Points]++
		}
	}

	h := model.GameRecord{
		GameID: id.String(), Team: home, Opponent: away, Home: true,
		Won: hs[model.Points] > as[model.Points], Stats: hs, Allowed: as, HasAllowed: true,
	}
	a := model.GameRecord{
		GameID: id.String(), Team: away, Opponent: home, Home: false,
		Won: as[model.Points] > hs[model.Points], Stats: as, Allowed: hs, HasAllowed: true,
	}
	return h, a, nil
}

func boxScore(rng *rand.Rand, edge float64) model.Stats {
	var s model.Stats
	s[model.Points] = math.Round(basePoints + edge + rng.NormFloat64()*pointsSpread)
	s[model.FieldGoalPct] = pct(baseFieldGoalPct + edge/400 + rng.NormFloat64()*pctSpread)
	s[model.ThreePointPct] = pct(baseThreePct + edge/400 + rng.NormFloat64()*pctSpread)
	s[model.FreeThrowPct] = pct(baseFreeThrowPct + rng.NormFloat64()*pctSpread)
	s[model.Rebounds] = count(baseRebounds + edge/4 + rng.NormFloat64()*countSpread)
	s[model.Assists] = count(baseAssists + edge/4 + rng.NormFloat64()*countSpread)
	s[model.Steals] = count(baseSteals + rng.NormFloat64()*countSpread/2)
	s[model.Blocks] = count(baseBlocks + rng.NormFloat64()*countSpread/2)
	s[model.Turnovers] = count(baseTurnovers - edge/6 + rng.NormFloat64()*countSpread)
	s[model.Fouls] = count(baseFouls + rng.NormFloat64()*countSpread)
	return s
}

func pct(v float64) float64 {
	return math.Round(math.Min(1, math.Max(0, v))*1000) / 1000
}

func count(v float64) float64 {
	return math.Max(0, math.Round(v))
}
