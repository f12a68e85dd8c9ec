// Package config loads and validates the Saturn runtime configuration
// from YAML, with defaults and SATURN_SECTION_FIELD environment
// overrides.
package config

import "time"

// Config is the full runtime configuration.
type Config struct {
	// Boundaries configures the limits document.
	Boundaries BoundariesConfig `yaml:"boundaries"`

	// Audit configures the outcome ledger.
	Audit AuditConfig `yaml:"audit"`

	// Approval configures the review queue.
	Approval ApprovalConfig `yaml:"approval"`

	// Rollback configures the checkpoint store.
	Rollback RollbackConfig `yaml:"rollback"`

	// Logging configures slog output.
	Logging LoggingConfig `yaml:"logging"`
}

// BoundariesConfig locates and controls the boundaries document.
type BoundariesConfig struct {
	// Path is the boundaries YAML file. Empty means built-in defaults.
	Path string `yaml:"path"`

	// Watch enables hot reload of the boundaries file.
	Watch bool `yaml:"watch"`

	// CounterDBPath persists usage counters across restarts. Empty
	// disables persistence.
	CounterDBPath string `yaml:"counterDbPath"`
}

// AuditConfig controls the audit ledger.
type AuditConfig struct {
	// Capacity is the ring buffer size.
	Capacity int `yaml:"capacity"`

	// SQLitePath mirrors entries to a SQLite file. Empty disables the
	// mirror.
	SQLitePath string `yaml:"sqlitePath"`
}

// ApprovalConfig controls the review queue.
type ApprovalConfig struct {
	// BatchInterval is how often the batch-ready event fires.
	BatchInterval time.Duration `yaml:"batchInterval"`
}

// RollbackConfig controls the checkpoint store.
type RollbackConfig struct {
	// Capacity is the maximum number of live checkpoints.
	Capacity int `yaml:"capacity"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is "json" or "text".
	Format string `yaml:"format"`
}
