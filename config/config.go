// Package config loads budgetd configuration from a TOML file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

// Config holds all budgetd configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Budget   BudgetConfig   `toml:"budget"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DatabaseConfig holds persistence settings.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// BudgetConfig holds engine settings.
type BudgetConfig struct {
	// Timezone is the IANA name used to evaluate "today".
	// Empty means the system's local timezone.
	Timezone string `toml:"timezone,omitempty"`

	// OverspendTolerance is how far the projected end-of-period balance
	// may drift below zero before the overspend trigger fires.
	// Decimal string; default is one cent.
	OverspendTolerance string `toml:"overspend_tolerance,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // human, json
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: "budget.db"},
		Budget:   BudgetConfig{OverspendTolerance: "0.01"},
		Log:      LogConfig{Level: "info", Format: "human"},
	}
}

// Load reads the config file at path, returning defaults when path is
// empty or the file does not exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Budget.Timezone != "" {
		if _, err := time.LoadLocation(c.Budget.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", c.Budget.Timezone, err)
		}
	}
	if c.Budget.OverspendTolerance != "" {
		if _, err := decimal.NewFromString(c.Budget.OverspendTolerance); err != nil {
			return fmt.Errorf("invalid overspend_tolerance %q: %w", c.Budget.OverspendTolerance, err)
		}
	}
	return nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Budget.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Budget.Timezone)
}

// Tolerance resolves the configured overspend tolerance.
func (c Config) Tolerance() decimal.Decimal {
	if c.Budget.OverspendTolerance == "" {
		return decimal.New(1, -2)
	}
	d, err := decimal.NewFromString(c.Budget.OverspendTolerance)
	if err != nil {
		return decimal.New(1, -2)
	}
	return d
}
