package audit

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Sink mirrors audit entries to durable storage.
type Sink interface {
	Store(e *Entry) error
	Close() error
}

const auditSchema = `
CREATE TABLE IF NOT EXISTS audit_entries (
	id          TEXT PRIMARY KEY,
	action_id   TEXT NOT NULL,
	action_type TEXT NOT NULL,
	engine      TEXT NOT NULL,
	route       TEXT NOT NULL,
	approver    TEXT,
	outcome     TEXT NOT NULL,
	cost        REAL NOT NULL DEFAULT 0,
	revenue     REAL NOT NULL DEFAULT 0,
	error       TEXT,
	feedback    TEXT,
	timestamp   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_action_id ON audit_entries(action_id);
CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_entries(timestamp);
`

// SQLiteSink mirrors the ledger to a SQLite file.
type SQLiteSink struct {
	db     *sql.DB
	insert *sql.Stmt
	logger *slog.Logger
}

// NewSQLiteSink opens (or creates) the audit database at path.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	if path == "" {
		return nil, fmt.Errorf("audit sink path cannot be empty")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database %q: %w", path, err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec(auditSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create audit schema: %w", err)
	}

	insert, err := db.Prepare(`
		INSERT OR REPLACE INTO audit_entries (
			id, action_id, action_type, engine, route, approver,
			outcome, cost, revenue, error, feedback, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare audit insert: %w", err)
	}

	logger := slog.Default().With("component", "audit.sqlite")
	logger.Info("audit sink initialized", "path", path)

	return &SQLiteSink{db: db, insert: insert, logger: logger}, nil
}

// Store persists one entry.
func (s *SQLiteSink) Store(e *Entry) error {
	var errVal, feedbackVal interface{}
	if e.Error != "" {
		errVal = e.Error
	}
	if e.Feedback != "" {
		feedbackVal = e.Feedback
	}

	_, err := s.insert.Exec(
		e.ID, e.ActionID, e.ActionType, e.Engine,
		string(e.Route), string(e.Approver), string(e.Outcome),
		e.Cost, e.Revenue, errVal, feedbackVal,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to store audit entry: %w", err)
	}
	return nil
}

// Close releases the prepared statement and database handle.
func (s *SQLiteSink) Close() error {
	if err := s.insert.Close(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}
