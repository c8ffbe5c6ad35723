// Package config loads the backstep YAML configuration and applies
// environment variable overrides.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for backstep.
type Config struct {
	Storage    Storage    `yaml:"storage"`
	Simulation Simulation `yaml:"simulation"`
	Logging    Logging    `yaml:"logging"`
	Alpaca     Alpaca     `yaml:"alpaca"`
	Fetch      Fetch      `yaml:"fetch"`
}

// Storage holds paths for the bar cache and the dataset catalog.
type Storage struct {
	DataDir     string `yaml:"data_dir"`
	CatalogPath string `yaml:"catalog_path"`
}

// Simulation defines the execution simulation parameters.
type Simulation struct {
	Cash    float64 `yaml:"cash"`
	FeeBps  float64 `yaml:"fee_bps"`
	SlipBps float64 `yaml:"slip_bps"`
	Policy  string  `yaml:"policy"` // next_open | bar_inclusive
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | text
}

// Alpaca holds credentials and endpoint for the Alpaca market-data API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	DataURL   string `yaml:"data_url"`
}

// Fetch holds parameters for the daily-bar fetch job.
type Fetch struct {
	StartDate       string `yaml:"start_date"`
	BatchSize       int    `yaml:"batch_size"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
}

// Default returns the configuration used when no file is given: the
// simulation defaults match the standard manual-backtest setup (100k cash,
// 1 bp fee, 2 bps slippage, fills at the next open).
func Default() *Config {
	return &Config{
		Storage: Storage{
			DataDir:     "data",
			CatalogPath: "data/catalog.db",
		},
		Simulation: Simulation{
			Cash:    100000,
			FeeBps:  1,
			SlipBps: 2,
			Policy:  "next_open",
		},
		Logging: Logging{Level: "info", Format: "text"},
		Fetch:   Fetch{StartDate: "2020-01-01", BatchSize: 200, RateLimitPerMin: 200},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path into the defaults
// and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BACKSTEP_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("BACKSTEP_CATALOG_PATH"); v != "" {
		cfg.Storage.CatalogPath = v
	}
	if v := os.Getenv("BACKSTEP_CASH"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Simulation.Cash = f
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}

	// Standard Alpaca env vars (highest priority — canonical names used by SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}
