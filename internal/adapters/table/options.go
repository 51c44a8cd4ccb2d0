package table

import "github.com/okian/gradematch/pkg/logger"

// Option applies a configuration option to the Writer.
type Option func(*Writer)

// WithPassThreshold sets the slot value at or above which a cell is coloured as passing.
func WithPassThreshold(threshold float64) Option {
	return func(w *Writer) {
		w.passThreshold = threshold
	}
}

// WithLogger sets the structured logger.
func WithLogger(l logger.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}
