package boundary

import (
	"log/slog"
	"sync"
)

// Store holds the boundaries currently in force and serializes
// replacements. Components read the current document on every check,
// so a replacement takes effect on the next routed action.
type Store struct {
	mu      sync.RWMutex
	current *Boundaries
	logger  *slog.Logger
}

// NewStore creates a store seeded with the given boundaries, or the
// built-in defaults when nil.
func NewStore(initial *Boundaries) *Store {
	if initial == nil {
		initial = Default()
	}
	return &Store{
		current: initial,
		logger:  slog.Default().With("component", "boundary.store"),
	}
}

// Current returns the boundaries in force. The returned value must be
// treated as read-only.
func (s *Store) Current() *Boundaries {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Replace applies a partial document onto the current boundaries.
func (s *Store) Replace(doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	previous := s.current.Version
	s.current = Apply(s.current, doc)
	version := s.current.Version
	s.mu.Unlock()

	s.logger.Info("boundaries replaced",
		"previous_version", previous,
		"version", version,
	)
	return nil
}

// LoadFile loads a boundaries document from disk and applies it.
func (s *Store) LoadFile(path string) error {
	doc, err := LoadDocument(path)
	if err != nil {
		return err
	}
	return s.Replace(doc)
}
