package classifier

import "errors"

// Sentinel kinds for classifier errors.
var (
	ErrNotFitted    = errors.New("classifier not fitted")
	ErrShape        = errors.New("matrix shape mismatch")
	ErrEmpty        = errors.New("no training rows")
	ErrSingular     = errors.New("normal equations are singular")
	ErrInvalidLabel = errors.New("label must be 0 or 1")
)
