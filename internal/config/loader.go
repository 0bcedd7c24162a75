package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// listKeys are env keys whose values are comma-separated lists.
var listKeys = map[string]struct{}{
	"tokens":        {},
	"whitelist":     {},
	"blacklist":     {},
	"exclude_repos": {},
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if GRS_CONFIG is set
//  3. env (prefix GRS_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("GRS_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: GRS_ADDR, GRS_TOKENS, GRS_BATCH_YEARS, ...
	// Keys keep their underscores to match the koanf tags on the struct;
	// list-valued keys split on commas.
	envProvider := env.ProviderWithValue("GRS_", ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, "GRS_"))
		if _, ok := listKeys[key]; ok {
			parts := strings.Split(value, ",")
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			return key, out
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.BatchYears < 1 {
		return nil, fmt.Errorf("%w: batch_years must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
