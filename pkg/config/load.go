package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults,
// and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies SATURN_SECTION_FIELD environment overrides on top. Overrides
// always take precedence over file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies SATURN_SECTION_FIELD environment variables.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("SATURN_BOUNDARIES_PATH"); val != "" {
		cfg.Boundaries.Path = val
	}
	if val := os.Getenv("SATURN_BOUNDARIES_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Boundaries.Watch = b
		}
	}
	if val := os.Getenv("SATURN_BOUNDARIES_COUNTER_DB_PATH"); val != "" {
		cfg.Boundaries.CounterDBPath = val
	}
	if val := os.Getenv("SATURN_AUDIT_CAPACITY"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.Capacity = i
		}
	}
	if val := os.Getenv("SATURN_AUDIT_SQLITE_PATH"); val != "" {
		cfg.Audit.SQLitePath = val
	}
	if val := os.Getenv("SATURN_APPROVAL_BATCH_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Approval.BatchInterval = d
		}
	}
	if val := os.Getenv("SATURN_ROLLBACK_CAPACITY"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Rollback.Capacity = i
		}
	}
	if val := os.Getenv("SATURN_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("SATURN_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
}
