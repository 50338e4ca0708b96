package features

import "errors"

// Sentinel errors for feature configuration.
var (
	ErrInvalidWindow       = errors.New("window sizes must be positive")
	ErrInvalidBoundary     = errors.New("unknown window boundary")
	ErrInvalidSeasonLength = errors.New("season length must be positive")
)
