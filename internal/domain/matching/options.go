package matching

import (
	"github.com/okian/gradematch/internal/domain/similarity"
	"github.com/okian/gradematch/pkg/logger"
)

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithSimilarity replaces the fuzzy-tier similarity function.
func WithSimilarity(fn similarity.Func) Option {
	return func(m *Matcher) {
		if fn != nil {
			m.similarity = fn
		}
	}
}

// WithFuzzyThreshold sets the minimum similarity the fuzzy tier accepts.
func WithFuzzyThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.fuzzyThreshold = threshold
	}
}

// WithLineLogger receives one human-readable line per unmatched response.
func WithLineLogger(fn func(line string)) Option {
	return func(m *Matcher) {
		m.lineLog = fn
	}
}

// WithProgress receives the completed percentage (0-100) after every response.
func WithProgress(fn func(percent int)) Option {
	return func(m *Matcher) {
		m.progress = fn
	}
}

// WithLogger sets the structured logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}
