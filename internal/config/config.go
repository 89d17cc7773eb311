// Package config loads bmxshop configuration from ~/.bmxshop/config.yaml
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all bmxshop configuration.
type Config struct {
	// API configures the connection to the shop backend.
	API APIConfig `yaml:"api"`

	// Storage configures local state persistence.
	Storage StorageConfig `yaml:"storage"`

	// Payment configures the checkout provider.
	Payment PaymentConfig `yaml:"payment"`

	// UI settings for the interactive storefront.
	UI UIConfig `yaml:"ui"`

	// Logging controls diagnostic output.
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the backend REST client.
type APIConfig struct {
	// BaseURL is the root of the shop API, e.g. http://localhost:8080.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds every API request.
	Timeout time.Duration `yaml:"timeout"`

	// ProbeTimeout bounds the lightweight availability probe.
	ProbeTimeout time.Duration `yaml:"probe_timeout"`

	// ProbeFreshness is how long a probe result is reused without
	// hitting the network again.
	ProbeFreshness time.Duration `yaml:"probe_freshness"`
}

// StorageConfig configures where local state (cart, session, order
// history) lives.
type StorageConfig struct {
	// Dir defaults to ~/.bmxshop.
	Dir string `yaml:"dir"`

	// WatchExternal reloads cart/session state when another bmxshop
	// process writes it.
	WatchExternal bool `yaml:"watch_external"`
}

// PaymentConfig configures the third-party checkout widget.
type PaymentConfig struct {
	Provider       string `yaml:"provider"` // stripe, static
	PublishableKey string `yaml:"publishable_key"`
	Currency       string `yaml:"currency"`
	MerchantName   string `yaml:"merchant_name"`
}

// UIConfig holds interactive UI settings.
type UIConfig struct {
	Theme string `yaml:"theme"` // light, dark, auto
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		API: APIConfig{
			BaseURL:        "http://localhost:8080",
			Timeout:        15 * time.Second,
			ProbeTimeout:   5 * time.Second,
			ProbeFreshness: 10 * time.Second,
		},
		Storage: StorageConfig{
			Dir: filepath.Join(home, ".bmxshop"),
		},
		Payment: PaymentConfig{
			Provider:     "stripe",
			Currency:     "eur",
			MerchantName: "RN BMX Shop",
		},
		UI: UIConfig{
			Theme: "auto",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads config.yaml from the storage dir (if present), applies
// environment overrides, and validates the result. A missing file is
// not an error; defaults apply.
func Load() (Config, error) {
	cfg := Default()

	path := filepath.Join(cfg.Storage.Dir, "config.yaml")
	if override := os.Getenv("BMXSHOP_CONFIG"); override != "" {
		path = override
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults apply.
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnvOverrides applies BMXSHOP_* environment variables on top of
// the file values. Environment always wins.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BMXSHOP_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("BMXSHOP_API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.API.Timeout = d
		}
	}
	if v := os.Getenv("BMXSHOP_STATE_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("BMXSHOP_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("BMXSHOP_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("BMXSHOP_STRIPE_KEY"); v != "" {
		c.Payment.PublishableKey = v
		if c.Payment.Provider == "" {
			c.Payment.Provider = "stripe"
		}
	}
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("config: api.base_url must not be empty")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config: api.timeout must be positive, got %s", c.API.Timeout)
	}
	if c.API.ProbeFreshness <= 0 {
		return fmt.Errorf("config: api.probe_freshness must be positive, got %s", c.API.ProbeFreshness)
	}
	if c.Storage.Dir == "" {
		return fmt.Errorf("config: storage.dir must not be empty")
	}
	return nil
}

// Save writes the configuration back to the storage dir.
func (c Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.Storage.Dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.Storage.Dir, "config.yaml"), data, 0644)
}
