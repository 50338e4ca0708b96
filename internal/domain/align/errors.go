package align

import "errors"

// Sentinel kinds for alignment errors.
var (
	ErrInvalidScope    = errors.New("invalid label scope")
	ErrInvalidJoinMode = errors.New("invalid join mode")
)
