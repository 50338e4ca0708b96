package publisher

import "errors"

// ErrNilClient is returned when no stream client is supplied.
var ErrNilClient = errors.New("publisher: nil stream client")
