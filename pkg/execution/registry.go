package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"meridian-hq/saturn/pkg/action"
)

// ErrNoHandler is returned when no registered handler matches an
// action type.
var ErrNoHandler = errors.New("no handler registered")

// Handler performs an action in the real world and returns its result.
type Handler func(ctx context.Context, a *action.Action) (interface{}, error)

// Registry maps action type patterns to handlers.
//
// Lookup tries exact matches first, then single-level prefix wildcards
// of the form "prefix:*". The first registered exact match always wins
// over any wildcard; wildcards are tried in registration order.
type Registry struct {
	mu        sync.RWMutex
	exact     map[string]Handler
	wildcards []wildcardEntry
	logger    *slog.Logger
}

type wildcardEntry struct {
	prefix  string
	handler Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{
		exact:  make(map[string]Handler),
		logger: slog.Default().With("component", "execution.registry"),
	}
}

// Register binds a handler to a type pattern. A trailing ":*" makes
// the pattern a prefix wildcard. Re-registering an exact pattern is a
// no-op: the first registration wins.
func (r *Registry) Register(pattern string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prefix, ok := strings.CutSuffix(pattern, ":*"); ok {
		r.wildcards = append(r.wildcards, wildcardEntry{prefix: prefix, handler: handler})
		r.logger.Debug("wildcard handler registered", "pattern", pattern)
		return
	}

	if _, exists := r.exact[pattern]; exists {
		r.logger.Warn("duplicate handler registration ignored", "pattern", pattern)
		return
	}
	r.exact[pattern] = handler
	r.logger.Debug("handler registered", "pattern", pattern)
}

// HasHandler reports whether some handler matches the action type.
func (r *Registry) HasHandler(actionType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(actionType) != nil
}

// Execute dispatches the action to its handler. An unmatched type
// returns ErrNoHandler.
func (r *Registry) Execute(ctx context.Context, a *action.Action) (interface{}, error) {
	r.mu.RLock()
	handler := r.lookup(a.Type)
	r.mu.RUnlock()

	if handler == nil {
		return nil, fmt.Errorf("%w for action type %q", ErrNoHandler, a.Type)
	}
	return handler(ctx, a)
}

// lookup resolves a type to a handler. Caller must hold r.mu.
func (r *Registry) lookup(actionType string) Handler {
	if handler, ok := r.exact[actionType]; ok {
		return handler
	}
	for _, entry := range r.wildcards {
		if strings.HasPrefix(actionType, entry.prefix+":") {
			return entry.handler
		}
	}
	return nil
}
