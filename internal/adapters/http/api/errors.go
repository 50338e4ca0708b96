package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrBadLimit   = errors.New("limit must be a positive integer")
	ErrBadDate    = errors.New("date must be YYYY-MM-DD")
)
