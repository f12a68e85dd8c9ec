package config

import "time"

// ApplyDefaults fills zero-valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Audit.Capacity == 0 {
		cfg.Audit.Capacity = 10000
	}
	if cfg.Approval.BatchInterval == 0 {
		cfg.Approval.BatchInterval = 4 * time.Hour
	}
	if cfg.Rollback.Capacity == 0 {
		cfg.Rollback.Capacity = 100
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
