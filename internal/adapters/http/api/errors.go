package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrMissingFile   = errors.New("missing upload file")
	ErrUploadTooBig  = errors.New("upload too large")
	ErrUnknownFormat = errors.New("unknown result format")
)
