// Package config provides configuration management for btscan.
//
// The config file supplies session defaults (mode, duration, adapter,
// output locations); command-line flags always override it, and a missing
// file simply yields the built-in defaults.
//
// Config file locations (priority order):
//  1. $BTSCAN_CONFIG
//  2. ./btscan.yaml
//  3. $XDG_CONFIG_HOME/btscan/config.yaml
//  4. ~/.config/btscan/config.yaml
//  5. /etc/btscan/config.yaml
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the session defaults loadable from a YAML file
type Config struct {
	Version int `yaml:"version"`

	// Mode is the default transport selection: ble, classic or both
	Mode string `yaml:"mode"`
	// Seconds is the default scan duration per mode
	Seconds int `yaml:"seconds"`
	// Adapter optionally selects the hardware interface (e.g. "hci0")
	Adapter string `yaml:"adapter,omitempty"`

	Output OutputConfig `yaml:"output"`
}

// OutputConfig holds default output sinks. Empty paths leave a sink
// disabled; with no sink configured anywhere a timestamped JSON file is
// written to the working directory.
type OutputConfig struct {
	JSON string `yaml:"json,omitempty"`
	CSV  string `yaml:"csv,omitempty"`
	// Database enables the append-only SQLite session log
	Database string `yaml:"database,omitempty"`
}

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Mode:    "ble",
		Seconds: 20,
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Mode == "" {
		c.Mode = "ble"
	}
	if c.Seconds == 0 {
		c.Seconds = 20
	}
}

// Validate rejects values no session could run with
func (c *Config) Validate() error {
	switch c.Mode {
	case "ble", "classic", "both":
	default:
		return fmt.Errorf("invalid mode %q (want ble, classic or both)", c.Mode)
	}
	if c.Seconds < 0 {
		return fmt.Errorf("invalid seconds %d (must be non-negative)", c.Seconds)
	}
	return nil
}
