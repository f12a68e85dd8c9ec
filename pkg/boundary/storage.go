package boundary

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// counterSchema holds the single current counter row. The table is a
// one-row upsert target, not a history.
const counterSchema = `
CREATE TABLE IF NOT EXISTS boundary_counters (
	id           INTEGER PRIMARY KEY CHECK (id = 1),
	day          TEXT NOT NULL,
	week         TEXT NOT NULL,
	daily_spend  REAL NOT NULL,
	daily_volume REAL NOT NULL,
	daily_posts  INTEGER NOT NULL,
	weekly_blogs INTEGER NOT NULL,
	updated_at   TEXT NOT NULL
);
`

// SQLiteCounterStore persists boundary counters in a SQLite file so
// daily and weekly limits survive process restarts.
type SQLiteCounterStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteCounterStore opens (or creates) the counter database at
// path and prepares the schema.
func NewSQLiteCounterStore(path string) (*SQLiteCounterStore, error) {
	if path == "" {
		return nil, fmt.Errorf("counter store path cannot be empty")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open counter store %q: %w", path, err)
	}

	// Single writer; keep the pool tiny.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec(counterSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create counter schema: %w", err)
	}

	return &SQLiteCounterStore{
		db:     db,
		logger: slog.Default().With("component", "boundary.storage"),
	}, nil
}

// Load returns the persisted counters, or nil when none were saved yet.
func (s *SQLiteCounterStore) Load() (*Counters, error) {
	row := s.db.QueryRow(`
		SELECT day, week, daily_spend, daily_volume, daily_posts, weekly_blogs
		FROM boundary_counters WHERE id = 1
	`)

	var c Counters
	err := row.Scan(&c.Day, &c.Week, &c.DailySpend, &c.DailyVolume, &c.DailyPosts, &c.WeeklyBlogs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load counters: %w", err)
	}
	return &c, nil
}

// Save upserts the current counters.
func (s *SQLiteCounterStore) Save(c *Counters) error {
	_, err := s.db.Exec(`
		INSERT INTO boundary_counters (id, day, week, daily_spend, daily_volume, daily_posts, weekly_blogs, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			day = excluded.day,
			week = excluded.week,
			daily_spend = excluded.daily_spend,
			daily_volume = excluded.daily_volume,
			daily_posts = excluded.daily_posts,
			weekly_blogs = excluded.weekly_blogs,
			updated_at = excluded.updated_at
	`, c.Day, c.Week, c.DailySpend, c.DailyVolume, c.DailyPosts, c.WeeklyBlogs,
		time.Now().UTC().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to save counters: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteCounterStore) Close() error {
	return s.db.Close()
}
