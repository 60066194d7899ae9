// Package config loads service configuration from an optional YAML file
// overlaid with ARISAN_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds everything the server needs at startup.
type Config struct {
	Addr   string `yaml:"addr"   envconfig:"ADDR"`
	Env    string `yaml:"env"    envconfig:"ENV"` // development | production
	DBPath string `yaml:"dbPath" envconfig:"DB_PATH"`

	// Remote JSON document store (JSONBin-style). Unset APIKey means the
	// remote adapter runs in noop mode.
	BinBaseURL string `yaml:"binBaseUrl" envconfig:"BIN_BASE_URL"`
	BinID      string `yaml:"binId"      envconfig:"BIN_ID"`
	BinAPIKey  string `yaml:"binApiKey"  envconfig:"BIN_API_KEY"`

	// Email notifications.
	ResendKey string `yaml:"resendKey" envconfig:"RESEND_KEY"`
	EmailFrom string `yaml:"emailFrom" envconfig:"EMAIL_FROM"`
	ReplyTo   string `yaml:"replyTo"   envconfig:"REPLY_TO"`

	// Image host collaborator for gallery uploads.
	ImageHostURL string `yaml:"imageHostUrl" envconfig:"IMAGE_HOST_URL"`
	ImageHostKey string `yaml:"imageHostKey" envconfig:"IMAGE_HOST_KEY"`

	// Sync cadence.
	PullInterval   time.Duration `yaml:"pullInterval"   envconfig:"PULL_INTERVAL"`
	OutboxInterval time.Duration `yaml:"outboxInterval" envconfig:"OUTBOX_INTERVAL"`

	// CSRF secret, 64 hex chars. Required in production.
	CSRFKey string `yaml:"csrfKey" envconfig:"CSRF_KEY"`
}

// Default returns the development configuration.
func Default() Config {
	return Config{
		Addr:           ":8080",
		Env:            "development",
		DBPath:         "arisan.db",
		BinBaseURL:     "https://api.jsonbin.io/v3",
		EmailFrom:      "Arisan Mingguan <onboarding@resend.dev>",
		PullInterval:   5 * time.Minute,
		OutboxInterval: 30 * time.Second,
	}
}

// Load reads the YAML file at path (skipped when path is empty or the
// file does not exist), then overlays ARISAN_* environment variables.
// PRE: none
// POST: Returns a fully-populated config or an error
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("arisan", &cfg); err != nil {
		return cfg, fmt.Errorf("process environment: %w", err)
	}

	if cfg.Env == "production" && cfg.CSRFKey == "" {
		return cfg, fmt.Errorf("ARISAN_CSRF_KEY is required in production")
	}
	return cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}
