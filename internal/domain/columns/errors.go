package columns

import "errors"

var (
	// ErrColumnNotFound is returned when neither a keyword nor a positional
	// fallback yields a column.
	ErrColumnNotFound = errors.New("column not found")

	// ErrMalformedRow is returned when a resolved column is missing from a row.
	ErrMalformedRow = errors.New("malformed row")
)
