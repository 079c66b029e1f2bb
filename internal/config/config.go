// Package config loads application settings from TOML files, an optional
// .env file and FINANCE_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultDescription is stored when a transaction is recorded without one.
const DefaultDescription = "No description provided"

// Config holds all configuration for the finance manager.
type Config struct {
	Environment string         `toml:"environment"`
	Database    DatabaseConfig `toml:"database"`
	Logging     LoggingConfig  `toml:"logging"`
	App         AppConfig      `toml:"app"`
}

// DatabaseConfig describes how to reach the store.
type DatabaseConfig struct {
	Driver       string `toml:"driver"`
	DSN          string `toml:"dsn"` // file path for sqlite, connection URL for postgres
	MaxOpenConns int    `toml:"max_open_conns"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// AppConfig holds behaviour settings for the console session.
type AppConfig struct {
	DefaultDescription string `toml:"default_description"`
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Database: DatabaseConfig{
			Driver:       DriverSQLite,
			DSN:          "finance.db",
			MaxOpenConns: 4,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
		App: AppConfig{
			DefaultDescription: DefaultDescription,
		},
	}
}

// LoadEnvFile loads a .env file for local development. A missing file is
// not an error.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load reads the given TOML files in order (later files override earlier
// ones), then applies environment overrides. Missing files are skipped.
func Load(paths ...string) (*Config, error) {
	cfg := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FINANCE_ENV"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("FINANCE_DB_DRIVER"); v != "" {
		cfg.Database.Driver = strings.ToLower(v)
	}
	// DB_PATH is kept for the adduser tool and older setups.
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("FINANCE_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("FINANCE_DB_MAX_OPEN_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Database.MaxOpenConns = n
		}
	}
	if v := os.Getenv("FINANCE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errors []string

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.DSN == "" {
			errors = append(errors, "sqlite database path cannot be empty")
		} else if c.Database.DSN == ":memory:" {
			if c.IsProduction() {
				errors = append(errors, "in-memory sqlite database is not allowed in production: records would be lost on exit")
			}
		} else {
			dir := filepath.Dir(c.Database.DSN)
			if dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create sqlite database directory '%s': %v", dir, err))
				}
			}
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			errors = append(errors, "postgres connection URL cannot be empty")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid database driver '%s': must be one of %v",
			c.Database.Driver, []string{DriverSQLite, DriverPostgres}))
	}

	if c.Database.MaxOpenConns < 1 {
		errors = append(errors, fmt.Sprintf("invalid max open connections %d: must be at least 1", c.Database.MaxOpenConns))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error", "disabled":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.Logging.Level))
	}

	if strings.TrimSpace(c.App.DefaultDescription) == "" {
		errors = append(errors, "default description cannot be empty")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
