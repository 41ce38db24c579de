// Package config provides configuration loading and validation for the engine and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents the engine configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or must be
// provided via CLI flags.
type Config struct {
	DatabaseURL    string `json:"database_url,omitempty"`    // PostgreSQL connection URL
	AgentsPath     string `json:"agents_path,omitempty"`     // Path to agents.json
	ArtifactDir    string `json:"artifact_dir,omitempty"`    // Directory for rendered artifacts
	CallTimeoutSec int    `json:"call_timeout_sec,omitempty"` // Default per-call backend timeout
	ReviewTTLMin   int    `json:"review_ttl_min,omitempty"`  // Idle TTL before an awaiting_review request is failed
	SweepMin       int    `json:"sweep_min,omitempty"`       // Reaper sweep interval
	Verbose        bool   `json:"verbose,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.CallTimeoutSec < 0 {
		return fmt.Errorf("config error: 'call_timeout_sec' must be non-negative")
	}
	if c.ReviewTTLMin < 0 {
		return fmt.Errorf("config error: 'review_ttl_min' must be non-negative")
	}
	if c.AgentsPath != "" {
		if _, err := os.Stat(c.AgentsPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: agents config not found: %s", c.AgentsPath)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.AgentsPath == "" {
		result.AgentsPath = defaults.AgentsPath
	}
	if result.ArtifactDir == "" {
		result.ArtifactDir = defaults.ArtifactDir
	}
	if result.CallTimeoutSec == 0 {
		result.CallTimeoutSec = defaults.CallTimeoutSec
	}
	if result.ReviewTTLMin == 0 {
		result.ReviewTTLMin = defaults.ReviewTTLMin
	}
	if result.SweepMin == 0 {
		result.SweepMin = defaults.SweepMin
	}

	return result
}

// CallTimeout returns the per-call backend timeout as a duration.
func (c *Config) CallTimeout() time.Duration {
	if c.CallTimeoutSec <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.CallTimeoutSec) * time.Second
}

// ReviewTTL returns the review idle TTL as a duration.
func (c *Config) ReviewTTL() time.Duration {
	if c.ReviewTTLMin <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.ReviewTTLMin) * time.Minute
}

// SweepInterval returns the reaper sweep interval as a duration.
func (c *Config) SweepInterval() time.Duration {
	if c.SweepMin <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.SweepMin) * time.Minute
}
