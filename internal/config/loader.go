package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvPrefix     = "GRADEMATCH_"
	EnvConfigPath = EnvPrefix + "CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML or TOML by extension): path, or GRADEMATCH_CONFIG when path is empty
//  3. env (prefix GRADEMATCH_)
func Load(_ context.Context, path string) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// GRADEMATCH_FUZZY_THRESHOLD -> fuzzy_threshold (flat keys, underscores kept).
	// List keys take comma-separated values.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		if isListKey(key) {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	// Lists are decoded into nil slices so a shorter override does not
	// inherit trailing default elements.
	cfg := *base
	cfg.AllowedOrigins, cfg.NameKeywords, cfg.ScoreKeywords, cfg.IdentifierKeywords = nil, nil, nil, nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if !k.Exists("allowed_origins") {
		cfg.AllowedOrigins = base.AllowedOrigins
	}
	if !k.Exists("name_keywords") {
		cfg.NameKeywords = base.NameKeywords
	}
	if !k.Exists("score_keywords") {
		cfg.ScoreKeywords = base.ScoreKeywords
	}
	if !k.Exists("identifier_keywords") {
		cfg.IdentifierKeywords = base.IdentifierKeywords
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".toml":
		return TOMLParser(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported config file type %q", ErrLoadConfig, filepath.Ext(path))
	}
}

func isListKey(key string) bool {
	return key == "allowed_origins" || strings.HasSuffix(key, "_keywords")
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
