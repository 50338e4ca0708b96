package features

// Momentum weights applied to the three most recent prior outcomes, newest first.
var momentumWeights = [3]float64{0.5, 0.3, 0.2}

const neutralRatio = 0.5

// Streaks returns, for every game, the win and loss streak entering it.
// The streak entering game i is the run of identical outcomes ending at i-1.
func Streaks(outcomes []bool) (win, loss []int) {
	win = make([]int, len(outcomes))
	loss = make([]int, len(outcomes))
	run := 0
	for i := 1; i < len(outcomes); i++ {
		if i > 1 && outcomes[i-1] == outcomes[i-2] {
			run++
		} else {
			run = 1
		}
		if outcomes[i-1] {
			win[i] = run
		} else {
			loss[i] = run
		}
	}
	return win, loss
}

// FormRatios returns the share of wins among the last min(window, i) games before
// each game i, or 0.5 when there are none.
func FormRatios(outcomes []bool, window int) []float64 {
	out := make([]float64, len(outcomes))
	wins := 0
	for i := range outcomes {
		if i > 0 && outcomes[i-1] {
			wins++
		}
		if i > window && outcomes[i-window-1] {
			wins--
		}
		n := min(i, window)
		if n == 0 {
			out[i] = neutralRatio
			continue
		}
		out[i] = float64(wins) / float64(n)
	}
	return out
}

// Momentum returns a recency-weighted average of prior outcomes for every game.
// With three or more prior games it weights games i-1, i-2, i-3 by 0.5, 0.3, 0.2;
// with fewer it is the plain mean of what exists, and 0.5 with none.
func Momentum(outcomes []bool) []float64 {
	out := make([]float64, len(outcomes))
	wins := 0
	for i := range outcomes {
		switch {
		case i == 0:
			out[i] = neutralRatio
		case i < len(momentumWeights):
			out[i] = float64(wins) / float64(i)
		default:
			var num, den float64
			for k, w := range momentumWeights {
				num += w * outcome(outcomes[i-1-k])
				den += w
			}
			out[i] = num / den
		}
		if outcomes[i] {
			wins++
		}
	}
	return out
}

func outcome(won bool) float64 {
	if won {
		return 1
	}
	return 0
}
