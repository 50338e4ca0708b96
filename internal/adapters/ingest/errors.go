package ingest

import "errors"

// Sentinel kinds for ingest errors.
var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyInput    = errors.New("empty input")
)
