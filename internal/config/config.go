// Package config loads runtime configuration from the environment and
// validates it before anything else starts. A bad configuration is fatal
// at startup, never discovered mid-run.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jmadden91/stratlab/internal/strategy"
)

type Config struct {
	AlpacaKeyID     string
	AlpacaSecretKey string
	AlpacaBaseURL   string

	DataDir      string
	UniversePath string

	// LookbackDays is the history window for the main pass.
	LookbackDays int
	// RerunLookbackDays is the wider window for zero-trade symbols.
	RerunLookbackDays int

	// Strategies limits the run to named variants; empty means all.
	Strategies []string
}

// Load reads the environment. Missing credentials or an unknown strategy
// name is a configuration error.
func Load() (*Config, error) {
	cfg := &Config{
		AlpacaKeyID:       os.Getenv("APCA_API_KEY_ID"),
		AlpacaSecretKey:   os.Getenv("APCA_API_SECRET_KEY"),
		AlpacaBaseURL:     os.Getenv("STRATLAB_BASE_URL"),
		DataDir:           envOr("STRATLAB_DATA_DIR", "data"),
		UniversePath:      envOr("STRATLAB_UNIVERSE", "data/universe.csv"),
		LookbackDays:      60,
		RerunLookbackDays: 365,
	}

	if cfg.AlpacaKeyID == "" || cfg.AlpacaSecretKey == "" {
		return nil, errors.New("config: APCA_API_KEY_ID and APCA_API_SECRET_KEY must be set")
	}

	if v := os.Getenv("STRATLAB_LOOKBACK_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 1 {
			return nil, fmt.Errorf("config: invalid STRATLAB_LOOKBACK_DAYS %q", v)
		}
		cfg.LookbackDays = days
	}

	if v := os.Getenv("STRATLAB_STRATEGIES"); v != "" {
		for _, name := range strings.Split(v, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, err := strategy.Get(name); err != nil {
				return nil, fmt.Errorf("config: %w (known: %s)", err, strings.Join(strategy.Names(), ", "))
			}
			cfg.Strategies = append(cfg.Strategies, name)
		}
	}

	return cfg, nil
}

// Variants resolves the configured strategy subset, or every registered
// variant when no subset was named.
func (c *Config) Variants() []strategy.Variant {
	if len(c.Strategies) == 0 {
		return strategy.All()
	}
	variants := make([]strategy.Variant, 0, len(c.Strategies))
	for _, name := range c.Strategies {
		v, err := strategy.Get(name)
		if err != nil {
			continue // validated at Load
		}
		variants = append(variants, v)
	}
	return variants
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
