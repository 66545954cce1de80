package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the complete tracker configuration
type Config struct {
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Assets     AssetsConfig     `json:"assets" yaml:"assets"`
	Storage    StorageConfig    `json:"storage" yaml:"storage"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
	Log        LogConfig        `json:"log" yaml:"log"`
	Display    DisplayConfig    `json:"display" yaml:"display"`
}

// SimulationConfig drives the price random walk
type SimulationConfig struct {
	Interval       string `json:"interval" yaml:"interval"` // e.g. "1s", "5s"
	UpdatesEnabled bool   `json:"updates_enabled" yaml:"updates_enabled"`
	// Seed makes the walk reproducible; 0 picks a random seed.
	Seed uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// ParseInterval converts the interval string to time.Duration
func (s SimulationConfig) ParseInterval() (time.Duration, error) {
	if s.Interval == "" {
		return time.Second, nil
	}
	return time.ParseDuration(s.Interval)
}

// AssetsConfig says where the reference JSON files come from. With neither
// field set the bundled copies are used.
type AssetsConfig struct {
	Dir     string `json:"dir,omitempty" yaml:"dir,omitempty"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// StorageConfig selects the key-value store for persisted local state
type StorageConfig struct {
	Type string `json:"type" yaml:"type"` // "memory", "file" or "sqlite"
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type      string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	FillsFile string `json:"fills_file,omitempty" yaml:"fills_file,omitempty"`
	CashFile  string `json:"cash_file,omitempty" yaml:"cash_file,omitempty"`
	DBPath    string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"` // debug, info, warn, error
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

type DisplayConfig struct {
	Currency string `json:"currency" yaml:"currency"`
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (YAML for .yaml/.yml, JSON otherwise)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	d, err := c.Simulation.ParseInterval()
	if err != nil {
		return fmt.Errorf("simulation.interval: %w", err)
	}
	if d < time.Second {
		return fmt.Errorf("simulation.interval must be at least 1s")
	}
	if c.Assets.Dir != "" && c.Assets.BaseURL != "" {
		return fmt.Errorf("assets.dir and assets.base_url are mutually exclusive")
	}

	switch c.Storage.Type {
	case "", "memory":
	case "file", "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path required for %s type", c.Storage.Type)
		}
	default:
		return fmt.Errorf("storage.type must be 'memory', 'file' or 'sqlite' (empty means memory)")
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.FillsFile == "" || c.Journal.CashFile == "" {
			return fmt.Errorf("journal fills_file and cash_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	switch c.Log.Level {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log.level: %s", c.Log.Level)
	}

	if c.Display.Currency == "" {
		return fmt.Errorf("display.currency is required")
	}
	if money.GetCurrency(c.Display.Currency) == nil {
		return fmt.Errorf("unknown display.currency: %s", c.Display.Currency)
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Interval:       "1s",
			UpdatesEnabled: true,
		},
		Storage: StorageConfig{
			Type: "file",
			Path: "./stakesim-state.json",
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
		Display: DisplayConfig{
			Currency: "USD",
		},
	}
}

// Environment variables read by LoadEnv.
const (
	EnvAssetsDir   = "STAKESIM_ASSETS_DIR"
	EnvAssetsURL   = "STAKESIM_ASSETS_URL"
	EnvStorageType = "STAKESIM_STORAGE_TYPE"
	EnvStoragePath = "STAKESIM_STORAGE_PATH"
	EnvLogLevel    = "STAKESIM_LOG_LEVEL"
	EnvInterval    = "STAKESIM_INTERVAL"
	EnvUpdates     = "STAKESIM_UPDATES_ENABLED"
)

// LoadEnv reads the given dotenv files (".env" when none are named) into the
// process environment and applies STAKESIM_* overrides to c. Missing dotenv
// files are not an error. Variables already set in the environment win over
// the files.
func (c *Config) LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	set := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvAssetsDir, &c.Assets.Dir)
	set(EnvAssetsURL, &c.Assets.BaseURL)
	set(EnvStorageType, &c.Storage.Type)
	set(EnvStoragePath, &c.Storage.Path)
	set(EnvLogLevel, &c.Log.Level)
	set(EnvInterval, &c.Simulation.Interval)

	if v, ok := os.LookupEnv(EnvUpdates); ok && v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvUpdates, err)
		}
		c.Simulation.UpdatesEnabled = on
	}
	return nil
}
