package table

import "errors"

var (
	// ErrUnsupportedFormat is returned for file types other than xlsx, xlsm and csv.
	ErrUnsupportedFormat = errors.New("unsupported table format")

	// ErrOutputLocked is returned when another run holds the output lock.
	ErrOutputLocked = errors.New("output file is locked by another run")

	// ErrNoHeader is returned when a sheet has no header row.
	ErrNoHeader = errors.New("table has no header row")
)
