package config

import "fmt"

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validFormats = map[string]bool{
	"json": true,
	"text": true,
}

// Validate rejects configurations the runtime cannot operate with.
func Validate(cfg *Config) error {
	if cfg.Audit.Capacity < 1 {
		return fmt.Errorf("audit.capacity must be at least 1, got %d", cfg.Audit.Capacity)
	}
	if cfg.Approval.BatchInterval < 0 {
		return fmt.Errorf("approval.batchInterval must not be negative")
	}
	if cfg.Rollback.Capacity < 1 {
		return fmt.Errorf("rollback.capacity must be at least 1, got %d", cfg.Rollback.Capacity)
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", cfg.Logging.Level)
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be json or text; got %q", cfg.Logging.Format)
	}
	if cfg.Boundaries.Watch && cfg.Boundaries.Path == "" {
		return fmt.Errorf("boundaries.watch requires boundaries.path")
	}
	return nil
}
