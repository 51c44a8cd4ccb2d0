package service

import "errors"

var (
	// ErrMissingInput is returned when a run lacks the responses or roster path.
	ErrMissingInput = errors.New("missing input file")
)
