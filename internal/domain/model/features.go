package model

import "strconv"

// WindowMeans holds rolling stat means over one window size.
// Games is the number of games actually averaged; zero means no history.
type WindowMeans struct {
	Window int
	Games  int
	Means  Stats
}

// FormRatio is the share of wins over the last Window games.
type FormRatio struct {
	Window int
	Ratio  float64
}

// FeatureVector holds the pre-game attributes derived for one GameRecord.
type FeatureVector struct {
	Rolling        []WindowMeans
	WinStreak      int
	LossStreak     int
	Form           []FormRatio
	Momentum       float64
	RestDays       float64
	BackToBack     bool
	SeasonProgress float64

	// OpponentAggregate is the expanding mean of box scores conceded in prior games.
	OpponentAggregate Stats
}

// Names returns column names in the same order as Values.
func (f FeatureVector) Names() []string {
	names := make([]string, 0, f.width())
	for _, r := range f.Rolling {
		suffix := "_avg_" + strconv.Itoa(r.Window)
		for s := 0; s < NumStats; s++ {
			names = append(names, statNames[s]+suffix)
		}
	}
	names = append(names, "win_streak", "loss_streak")
	for _, fr := range f.Form {
		names = append(names, "recent_form_"+strconv.Itoa(fr.Window))
	}
	names = append(names, "momentum_score", "rest_days", "back_to_back", "season_progress")
	for s := 0; s < NumStats; s++ {
		names = append(names, "opp_"+statNames[s]+"_avg")
	}
	return names
}

// Values flattens the vector into a numeric row.
func (f FeatureVector) Values() []float64 {
	out := make([]float64, 0, f.width())
	for _, r := range f.Rolling {
		out = append(out, r.Means[:]...)
	}
	out = append(out, float64(f.WinStreak), float64(f.LossStreak))
	for _, fr := range f.Form {
		out = append(out, fr.Ratio)
	}
	out = append(out, f.Momentum, f.RestDays, boolFloat(f.BackToBack), f.SeasonProgress)
	out = append(out, f.OpponentAggregate[:]...)
	return out
}

func (f FeatureVector) width() int {
	return len(f.Rolling)*NumStats + 2 + len(f.Form) + 4 + NumStats
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
