package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"beertime/internal/logging"
)

// Config is the application's configuration model.
// It captures storage, the logical-day rule, entry defaults and the local servers.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Day     DayConfig     `yaml:"day"`
	Entry   EntryConfig   `yaml:"entry"`
	Graph   GraphConfig   `yaml:"graph"`
	Server  ServerConfig  `yaml:"server"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
}

type DayConfig struct {
	// Events before this wall-clock hour count toward the previous day
	CutoffHour int `yaml:"cutoffHour"`
	// IANA zone name, "Local" uses the process zone
	Timezone string `yaml:"timezone"`
}

type EntryConfig struct {
	DefaultAmount float64 `yaml:"defaultAmount"`
	// Prefilled value for the custom amount entry
	CustomAmount float64 `yaml:"customAmount"`
}

type GraphConfig struct {
	WeeksPerPage int `yaml:"weeksPerPage"`
}

type ServerConfig struct {
	Addr  string  `yaml:"addr"`
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Storage: StorageConfig{DBPath: "./beertime.db"},
		Day:     DayConfig{CutoffHour: 3, Timezone: "Local"},
		Entry:   EntryConfig{DefaultAmount: 1.0, CustomAmount: 1.4},
		Graph:   GraphConfig{WeeksPerPage: 15},
		Server:  ServerConfig{Addr: "127.0.0.1:8787", RPS: 5, Burst: 20},
		Metrics: MetricsConfig{Addr: ""},
	}
}

// ResolveEnv fills in config fields from environment variables if set.
func (c *Config) ResolveEnv() {
	if v := os.Getenv("BEERTIME_DB"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("BEERTIME_TZ"); v != "" {
		c.Day.Timezone = v
	}
	if v := os.Getenv("BEERTIME_CUTOFF"); v != "" {
		h, err := strconv.Atoi(v)
		if err != nil {
			logging.Warn("config_bad_cutoff", map[string]any{"value": v, "error": err.Error()})
		} else {
			c.Day.CutoffHour = h
		}
	}
	if v := os.Getenv("BEERTIME_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = os.Getenv("METRICS_ADDR")
	}
}

// Validate reports configuration values that cannot be used.
func (c Config) Validate() error {
	if c.Day.CutoffHour < 0 || c.Day.CutoffHour > 23 {
		return fmt.Errorf("day.cutoffHour must be within 0..23, got %d", c.Day.CutoffHour)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Entry.DefaultAmount <= 0 {
		return errors.New("entry.defaultAmount must be positive")
	}
	return nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	switch c.Day.Timezone {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Day.Timezone)
	if err != nil {
		return nil, fmt.Errorf("day.timezone: %w", err)
	}
	return loc, nil
}

// Load reads YAML config from path, starting from defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	return cfg, nil
}

// LoadOrDefault is Load that treats a missing file as the default config.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
		cfg.ResolveEnv()
		return cfg, nil
	}
	return cfg, err
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
