// Package config loads defaults from a YAML file and vendor credentials from
// the environment (optionally seeded from a .env file).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/contactkeval/option-heatmap/internal/pricing"
	"github.com/contactkeval/option-heatmap/internal/scale"
	"github.com/contactkeval/option-heatmap/internal/tenor"
)

// APIKeyEnv names the environment variable holding the Polygon API key.
const APIKeyEnv = "POLYGON_API_KEY"

// Config struct
type Config struct {
	Market    pricing.MarketParams `yaml:"market"`              // default market inputs
	Purchase  pricing.Purchase     `yaml:"purchase,omitempty"`  // prices paid, default at-the-money
	Quotes    map[string]float64   `yaml:"quotes,omitempty"`    // ticker spots used without an API key
	TauUnit   tenor.Unit           `yaml:"tau_unit,omitempty"`  // unit of market.tau, default years
	DayCount  tenor.Convention     `yaml:"day_count,omitempty"` // used when tau_unit is days
	Palette   scale.PaletteKey     `yaml:"palette,omitempty"`   // heatmap palette
	OutputDir string               `yaml:"output_dir,omitempty"`
	Verbosity int                  `yaml:"verbosity,omitempty"` // 0=errors,1=info,2=debug,3=trace
	Server    ServerConfig         `yaml:"server"`
	EnvFile   string               `yaml:"env_file,omitempty"` // .env file to load, default .env

	// APIKey comes from the environment only.
	APIKey string `yaml:"-"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// Default mirrors the interactive app's starting inputs.
func Default() Config {
	return Config{
		Market:    pricing.MarketParams{Strike: 10, Spot: 10, Rate: 0.05, Vol: 0.30, Tau: 1},
		TauUnit:   tenor.Years,
		DayCount:  tenor.Days365,
		Palette:   scale.DefaultPalette,
		OutputDir: ".",
		Verbosity: 1,
		Server:    ServerConfig{Addr: ":8080"},
		EnvFile:   ".env",
	}
}

// Load reads path over the defaults. An empty path or a missing file yields
// the defaults. The env file is loaded afterwards; existing environment
// variables are not overridden.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// defaults only
		case err != nil:
			return Config{}, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
			}
		}
	}

	if cfg.EnvFile != "" {
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s file: %w", cfg.EnvFile, err)
		}
	}
	cfg.APIKey = os.Getenv(APIKeyEnv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the enumerated fields. Market values are checked where
// they are used, since flags may still override them.
func (c Config) Validate() error {
	if _, err := scale.Lookup(c.Palette); err != nil {
		return fmt.Errorf("config palette: %w", err)
	}
	if _, err := tenor.ParseUnit(string(c.TauUnit)); err != nil {
		return fmt.Errorf("config tau_unit: %w", err)
	}
	if _, err := tenor.ParseConvention(string(c.DayCount)); err != nil {
		return fmt.Errorf("config day_count: %w", err)
	}
	if err := c.Purchase.Validate(); err != nil {
		return fmt.Errorf("config purchase: %w", err)
	}
	return nil
}
