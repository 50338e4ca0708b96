package selection

import "errors"

// Sentinel kinds for selection errors.
var (
	ErrEmptyTrainingSet = errors.New("empty training set")
	ErrShape            = errors.New("matrix shape mismatch")
	ErrInvalidLabel     = errors.New("label must be 0 or 1")
	ErrInvalidK         = errors.New("k must be positive")
)
