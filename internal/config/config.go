package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// State drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all configuration for the runebound CLI.
type Config struct {
	// ContentDir is the directory of .cue and .yaml content.
	ContentDir string `yaml:"content_dir"`

	State  StateConfig  `yaml:"state"`
	Random RandomConfig `yaml:"random"`
	Event  EventConfig  `yaml:"event"`
	Log    LogConfig    `yaml:"log"`
}

// StateConfig selects the persisted game state backend.
type StateConfig struct {
	Driver string `yaml:"driver"` // sqlite, postgres or memory
	Path   string `yaml:"path"`   // SQLite file
	DSN    string `yaml:"dsn"`    // PostgreSQL connection string
}

// RandomConfig seeds the random source. A nil Seed means a fresh seed per run.
type RandomConfig struct {
	Seed *uint64 `yaml:"seed"`
}

// EventConfig configures Event evaluation.
type EventConfig struct {
	// Namespace prefixes switch, variable and timestamp keys.
	Namespace string `yaml:"namespace"`
}

// LogConfig configures slog output.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns Config with sensible defaults.
func Default() Config {
	return Config{
		ContentDir: "content",
		State: StateConfig{
			Driver: DriverSQLite,
			Path:   "runebound.db",
		},
		Event: EventConfig{
			Namespace: "event:",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks field combinations that YAML decoding cannot.
func (c Config) Validate() error {
	switch c.State.Driver {
	case DriverSQLite:
		if c.State.Path == "" {
			return fmt.Errorf("state.path is required for driver %q", c.State.Driver)
		}
	case DriverPostgres:
		if c.State.DSN == "" {
			return fmt.Errorf("state.dsn is required for driver %q", c.State.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown state.driver %q (want sqlite, postgres or memory)", c.State.Driver)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses Level. An empty level is info.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
