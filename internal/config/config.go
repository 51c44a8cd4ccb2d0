// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the structured log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address of the upload server, e.g. ":9080".
	Addr string `koanf:"addr"`

	// FuzzyThreshold is the minimum name similarity (0-100) the fuzzy tier accepts.
	FuzzyThreshold float64 `koanf:"fuzzy_threshold"`

	// PassThreshold is the slot value at or above which a score counts as passing.
	PassThreshold float64 `koanf:"pass_threshold"`

	// FallbackScore is the final score granted when only a later slot passes.
	FallbackScore float64 `koanf:"fallback_score"`

	// OutputName is the file name written next to the roster when no output path is given.
	OutputName string `koanf:"output_name"`

	// MaxUploadMB caps the multipart body accepted by POST /v1/match.
	MaxUploadMB int `koanf:"max_upload_mb"`

	// AllowedOrigins lists CORS origins for the upload API.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// Column autodetection keywords, matched as lowercase substrings of header names.
	NameKeywords       []string `koanf:"name_keywords"`
	ScoreKeywords      []string `koanf:"score_keywords"`
	IdentifierKeywords []string `koanf:"identifier_keywords"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		FuzzyThreshold:     65,
		PassThreshold:      80,
		FallbackScore:      78,
		OutputName:         "hasil_pencocokan.xlsx",
		MaxUploadMB:        20,
		AllowedOrigins:     []string{"*"},
		NameKeywords:       []string{"nama", "name"},
		ScoreKeywords:      []string{"score", "nilai", "skor"},
		IdentifierKeywords: []string{"absen", "no", "nomor", "nis", "id"},
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.FuzzyThreshold < 0 || c.FuzzyThreshold > 100:
		return fmt.Errorf("%w: fuzzy_threshold must be within 0-100, got %v", ErrInvalidConfig, c.FuzzyThreshold)
	case c.PassThreshold < 0 || c.PassThreshold > 100:
		return fmt.Errorf("%w: pass_threshold must be within 0-100, got %v", ErrInvalidConfig, c.PassThreshold)
	case strings.TrimSpace(c.OutputName) == "":
		return fmt.Errorf("%w: output_name must not be empty", ErrInvalidConfig)
	case c.MaxUploadMB <= 0:
		return fmt.Errorf("%w: max_upload_mb must be positive", ErrInvalidConfig)
	case len(c.NameKeywords) == 0:
		return fmt.Errorf("%w: name_keywords must not be empty", ErrInvalidConfig)
	case len(c.ScoreKeywords) == 0:
		return fmt.Errorf("%w: score_keywords must not be empty", ErrInvalidConfig)
	case len(c.IdentifierKeywords) == 0:
		return fmt.Errorf("%w: identifier_keywords must not be empty", ErrInvalidConfig)
	}
	return nil
}
