package features

import (
	"math"

	"github.com/okian/formcast/internal/domain/model"
)

const hoursPerDay = 24

// RestDays returns whole days since each game's predecessor; the first game gets firstGame.
func RestDays(games []model.GameRecord, firstGame float64) []float64 {
	out := make([]float64, len(games))
	for i := range games {
		if i == 0 {
			out[i] = firstGame
			continue
		}
		out[i] = math.Round(games[i].Date.Sub(games[i-1].Date).Hours() / hoursPerDay)
	}
	return out
}

// SeasonProgress returns each game's zero-based index within its season divided by seasonLength.
func SeasonProgress(games []model.GameRecord, seasonLength int) []float64 {
	out := make([]float64, len(games))
	idx := 0
	for i, g := range games {
		if i > 0 && g.Season != games[i-1].Season {
			idx = 0
		}
		out[i] = float64(idx) / float64(seasonLength)
		idx++
	}
	return out
}
