// Package config loads server configuration from a YAML file with
// environment overrides
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration
type Config struct {
	// Port the HTTP API listens on
	Port int `yaml:"port"`
	// SnapshotPath is where the in-memory store persists between runs.
	// Empty disables snapshots.
	SnapshotPath string `yaml:"snapshot_path"`
	// DatabaseURL switches persistence to PostgreSQL when set
	DatabaseURL string `yaml:"database_url"`
	// CORSOrigins lists allowed cross-origin callers; empty disables CORS
	CORSOrigins []string `yaml:"cors_origins"`
	// LogLevel is DEBUG, INFO, WARN, or ERROR
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Port:         8080,
		SnapshotPath: "./data/chains.snap",
		LogLevel:     "INFO",
	}
}

// Load reads a YAML config file and applies environment overrides.
// A missing path yields defaults (plus overrides).
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("SNAPSHOT_PATH"); v != "" {
		cfg.SnapshotPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSOrigins = origins
	}
}
