package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrNilRoster = errors.New("nil roster")
)
