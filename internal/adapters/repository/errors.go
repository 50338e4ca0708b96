package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound  = errors.New("feature entry not found")
	ErrDuplicate = errors.New("feature entry already stored")
)
