// Package config handles loading and validation of leadtrackd.yaml configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config path used when none is given on the command line.
const DefaultFile = "leadtrackd.yaml"

// ServerConfig holds the HTTP listen address parts.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Config is the full leadtrackd configuration. Every field has a working
// default so the dashboard runs without a config file.
type Config struct {
	DataDir            string       `yaml:"dataDir"`
	ImportFile         string       `yaml:"importFile"`
	Server             ServerConfig `yaml:"server"`
	ActivityWindowDays int          `yaml:"activityWindowDays"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		DataDir:            "data",
		ImportFile:         "incoming_leads.csv",
		Server:             ServerConfig{Host: "localhost", Port: 8080},
		ActivityWindowDays: 30,
	}
}

// Load reads and parses the config file at path. A missing file is not an
// error; the defaults are returned instead.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func validate(cfg *Config) error {
	if cfg.DataDir == "" {
		return fmt.Errorf("dataDir is required")
	}
	if cfg.ImportFile == "" {
		return fmt.Errorf("importFile is required")
	}
	if cfg.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if cfg.ActivityWindowDays < 1 {
		return fmt.Errorf("activityWindowDays must be positive")
	}
	return nil
}
