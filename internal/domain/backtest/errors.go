package backtest

import "errors"

// Sentinel kinds for backtest errors.
var (
	ErrNoScoredIterations = errors.New("no backtest iteration produced a score")
	ErrInvalidSplit       = errors.New("invalid split configuration")
	ErrUnorderedRows      = errors.New("rows are not in chronological order")
)
