// Package config resolves settings from defaults, an optional YAML file and
// environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port       string        `yaml:"port"`
	LogLevel   string        `yaml:"log_level"`
	CatalogURL string        `yaml:"catalog_url"`
	Timeout    time.Duration `yaml:"timeout"`

	Slot    SlotConfig    `yaml:"slot"`
	Notify  NotifyConfig  `yaml:"notify"`
	Metrics MetricsConfig `yaml:"metrics"`

	// RateLimit is requests per IP per minute; zero disables limiting.
	RateLimit int `yaml:"rate_limit"`

	// CatalogPort and CatalogDSN configure the catalog service binary; a
	// non-empty DSN switches it from the seeded memory store to Postgres.
	CatalogPort string `yaml:"catalog_port"`
	CatalogDSN  string `yaml:"catalog_dsn"`
}

type SlotConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type NotifyConfig struct {
	TTL      time.Duration `yaml:"ttl"`
	Capacity int           `yaml:"capacity"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
}

func Default() Config {
	return Config{
		Port:        "8080",
		LogLevel:    "info",
		CatalogURL:  "http://localhost:3333",
		CatalogPort: "3333",
		Timeout:     3 * time.Second,
		Slot: SlotConfig{
			Driver: "file",
			DSN:    ".rocketshoes",
		},
		Notify: NotifyConfig{
			TTL:      5 * time.Second,
			Capacity: 20,
		},
		Metrics:   MetricsConfig{Enabled: true},
		RateLimit: 120,
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An explicit path must exist. When path is empty CONFIG_FILE is used, and a
// missing file there falls back to defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	optional := false
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
		optional = true
	}
	if path != "" {
		if err := mergeFile(&cfg, path, optional); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string, optional bool) error {
	raw, err := os.ReadFile(path)
	if optional && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Port = getenv("PORT", cfg.Port)
	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
	cfg.CatalogURL = getenv("CATALOG_URL", cfg.CatalogURL)
	cfg.CatalogPort = getenv("CATALOG_PORT", cfg.CatalogPort)
	cfg.CatalogDSN = getenv("CATALOG_DSN", cfg.CatalogDSN)
	cfg.Slot.Driver = getenv("SLOT_DRIVER", cfg.Slot.Driver)
	cfg.Slot.DSN = getenv("SLOT_DSN", cfg.Slot.DSN)
	cfg.Metrics.Token = getenv("METRICS_TOKEN", cfg.Metrics.Token)

	var err error
	if cfg.Timeout, err = getenvDuration("CATALOG_TIMEOUT", cfg.Timeout); err != nil {
		return err
	}
	if cfg.Notify.TTL, err = getenvDuration("NOTIFY_TTL", cfg.Notify.TTL); err != nil {
		return err
	}
	if cfg.RateLimit, err = getenvInt("RATE_LIMIT", cfg.RateLimit); err != nil {
		return err
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func getenvDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}
