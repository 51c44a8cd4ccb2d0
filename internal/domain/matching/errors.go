package matching

import "errors"

// Sentinel kinds for matching errors.
var (
	ErrNilRoster = errors.New("nil roster")
	ErrStopped   = errors.New("matching stopped")
)
