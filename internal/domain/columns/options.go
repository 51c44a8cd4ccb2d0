package columns

import "github.com/okian/gradematch/pkg/logger"

// Option applies a configuration option to the KeywordResolver.
type Option func(*KeywordResolver)

// WithKeywords replaces the keyword lists. Empty lists keep their defaults.
func WithKeywords(k Keywords) Option {
	return func(r *KeywordResolver) {
		if len(k.Name) > 0 {
			r.keywords.Name = k.Name
		}
		if len(k.Score) > 0 {
			r.keywords.Score = k.Score
		}
		if len(k.Identifier) > 0 {
			r.keywords.Identifier = k.Identifier
		}
		if len(k.Time) > 0 {
			r.keywords.Time = k.Time
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l logger.Logger) Option {
	return func(r *KeywordResolver) {
		if l != nil {
			r.logger = l
		}
	}
}
