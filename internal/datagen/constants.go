package datagen

// League defaults.
const (
	defaultTeams          = 8
	defaultSeasons        = 4
	defaultGamesPerSeason = 40
	defaultFirstSeason    = 2020
)

// Schedule shape.
const (
	daysBetweenSeasons = 365
	playProbability    = 0.55 // chance that a drawn pair plays on a given day
	maxSeasonDays      = 300
)

// Box-score model constants.
const (
	basePoints       = 108.0
	pointsSpread     = 9.0
	strengthSpread   = 6.0
	homeAdvantage    = 2.5
	baseFieldGoalPct = 0.46
	baseThreePct     = 0.35
	baseFreeThrowPct = 0.77
	pctSpread        = 0.04
	baseRebounds     = 44.0
	baseAssists      = 24.0
	baseSteals       = 7.5
	baseBlocks       = 5.0
	baseTurnovers    = 13.5
	baseFouls        = 19.5
	countSpread      = 3.0
)

var teamCodes = []string{
	"ATL", "BOS", "BRK", "CHI", "CHO", "CLE", "DAL", "DEN", "DET", "GSW",
	"HOU", "IND", "LAC", "LAL", "MEM", "MIA", "MIL", "MIN", "NOP", "NYK",
	"OKC", "ORL", "PHI", "PHO", "POR", "SAC", "SAS", "TOR", "UTA", "WAS",
}
