package service

import (
	"github.com/okian/gradematch/internal/domain/columns"
	"github.com/okian/gradematch/internal/domain/similarity"
	"github.com/okian/gradematch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithResolver replaces the keyword column resolver.
func WithResolver(r columns.Resolver) Option {
	return func(s *Service) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithSimilarity replaces the fuzzy-tier similarity function.
func WithSimilarity(f similarity.Func) Option {
	return func(s *Service) {
		if f != nil {
			s.similarity = f
		}
	}
}

// WithFuzzyThreshold sets the minimum similarity accepted by the fuzzy tier.
func WithFuzzyThreshold(threshold float64) Option {
	return func(s *Service) {
		s.fuzzyThreshold = threshold
	}
}

// WithPassThreshold sets the passing slot value used for SCORE and cell colours.
func WithPassThreshold(threshold float64) Option {
	return func(s *Service) {
		s.passThreshold = threshold
	}
}

// WithFallbackScore sets the SCORE granted when only a later slot passes.
func WithFallbackScore(score float64) Option {
	return func(s *Service) {
		s.fallbackScore = score
	}
}

// WithOutputName sets the file name written next to the roster by default.
func WithOutputName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.outputName = name
		}
	}
}
