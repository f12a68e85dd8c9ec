// Package rollback provides checkpoints and compensating actions for
// reversible executions.
//
// A checkpoint is a pre-execution snapshot plus a compensating
// function chosen by an ordered rule table on the action type. At most
// one live checkpoint exists per action id; past capacity the oldest
// checkpoint is evicted, and eviction runs only after a create, never
// during a restore.
package rollback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"meridian-hq/saturn/pkg/action"
	"meridian-hq/saturn/pkg/clock"
)

// DefaultCapacity is the default maximum number of live checkpoints.
const DefaultCapacity = 100

// ErrNoCheckpoint is returned by Restore when no checkpoint exists for
// the action id. Reversibility was already decided by the caller, so a
// missing checkpoint is a contract violation meant to surface loudly.
var ErrNoCheckpoint = errors.New("no checkpoint available")

// CompensateFunc undoes the effect of a failed execution using the
// checkpoint taken before it ran.
type CompensateFunc func(ctx context.Context, cp *Checkpoint) error

// Checkpoint is a pre-execution snapshot bound to an optional
// compensating function.
type Checkpoint struct {
	// ActionID keys the checkpoint.
	ActionID string

	// ActionType is the type string of the checkpointed action.
	ActionType string

	// Plan names the compensating rule that was bound, if any.
	Plan string

	// Snapshot is a copy of the action parameters at checkpoint time.
	Snapshot map[string]interface{}

	// TakenAt is when the checkpoint was created.
	TakenAt time.Time

	compensate CompensateFunc
}

// Compensable reports whether a compensating function is bound.
func (cp *Checkpoint) Compensable() bool {
	return cp.compensate != nil
}

// Rule binds a compensating function to action types matching any of
// its fragments. Rules are dispatched in order; the first match wins.
type Rule struct {
	// Name labels the rule ("revert_commit").
	Name string

	// Fragments are the type-string substrings the rule matches.
	Fragments []string

	// Compensate is the bound compensating function.
	Compensate CompensateFunc
}

func (r *Rule) matches(actionType string) bool {
	lower := strings.ToLower(actionType)
	for _, fragment := range r.Fragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// Manager is the stateful checkpoint store.
type Manager struct {
	mu          sync.Mutex
	checkpoints map[string]*Checkpoint
	order       []string
	capacity    int
	rules       []Rule
	clock       clock.Clock
	logger      *slog.Logger
}

// NewManager creates a manager with the default compensating rules.
// A capacity of zero means DefaultCapacity.
func NewManager(capacity int, clk clock.Clock) *Manager {
	return NewManagerWithRules(capacity, defaultRules(), clk)
}

// NewManagerWithRules creates a manager with a custom rule table, for
// callers that bind real compensating behavior.
func NewManagerWithRules(capacity int, rules []Rule, clk clock.Clock) *Manager {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if clk == nil {
		clk = clock.System()
	}
	return &Manager{
		checkpoints: make(map[string]*Checkpoint),
		capacity:    capacity,
		rules:       rules,
		clock:       clk,
		logger:      slog.Default().With("component", "rollback.manager"),
	}
}

// defaultRules is the built-in ordered dispatch table. The default
// compensating functions record their intent; embedding programs
// replace them with functions that do the real work.
func defaultRules() []Rule {
	logger := slog.Default().With("component", "rollback.manager")
	logged := func(what string) CompensateFunc {
		return func(_ context.Context, cp *Checkpoint) error {
			logger.Info(what, "action_id", cp.ActionID, "action_type", cp.ActionType)
			return nil
		}
	}
	return []Rule{
		{Name: "revert_commit", Fragments: []string{"commit", "push"}, Compensate: logged("reverting commit")},
		{Name: "rollback_staging", Fragments: []string{"deploy_staging", "staging_deploy", "deploy:staging"}, Compensate: logged("rolling back staging deploy")},
		{Name: "restore_config", Fragments: []string{"config"}, Compensate: logged("restoring previous config")},
	}
}

// CreateCheckpoint snapshots the action and binds a compensating
// function via the rule table. Any existing checkpoint for the same id
// is replaced. Capacity eviction (oldest first) runs after every
// create.
func (m *Manager) CreateCheckpoint(a *action.Action) *Checkpoint {
	cp := &Checkpoint{
		ActionID:   a.ID,
		ActionType: a.Type,
		Snapshot:   copyParams(a.Params),
		TakenAt:    m.clock.Now(),
	}

	for i := range m.rules {
		if m.rules[i].matches(a.Type) {
			cp.Plan = m.rules[i].Name
			cp.compensate = m.rules[i].Compensate
			break
		}
	}

	m.mu.Lock()
	if _, exists := m.checkpoints[a.ID]; exists {
		m.removeFromOrder(a.ID)
	}
	m.checkpoints[a.ID] = cp
	m.order = append(m.order, a.ID)

	for len(m.checkpoints) > m.capacity {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.checkpoints, oldest)
		m.logger.Warn("checkpoint evicted at capacity", "action_id", oldest)
	}
	m.mu.Unlock()

	m.logger.Debug("checkpoint created",
		"action_id", a.ID,
		"action_type", a.Type,
		"plan", cp.Plan,
	)

	return cp
}

// Restore runs the compensating function for the action's checkpoint
// and deletes the checkpoint. It returns whether compensation actually
// ran.
//
// A missing checkpoint returns ErrNoCheckpoint: this call means the
// caller already decided the action was reversible, so the absence is
// a logic error, not a soft condition. A checkpoint with no bound
// function logs a warning, is still deleted, and returns (false, nil).
func (m *Manager) Restore(ctx context.Context, actionID string) (bool, error) {
	m.mu.Lock()
	cp, ok := m.checkpoints[actionID]
	if ok {
		delete(m.checkpoints, actionID)
		m.removeFromOrder(actionID)
	}
	m.mu.Unlock()

	if !ok {
		return false, fmt.Errorf("%w for action %s", ErrNoCheckpoint, actionID)
	}

	if cp.compensate == nil {
		m.logger.Warn("no rollback function bound, discarding checkpoint",
			"action_id", actionID,
			"action_type", cp.ActionType,
		)
		return false, nil
	}

	if err := cp.compensate(ctx, cp); err != nil {
		return false, fmt.Errorf("rollback of action %s failed: %w", actionID, err)
	}

	m.logger.Info("action rolled back",
		"action_id", actionID,
		"plan", cp.Plan,
	)
	return true, nil
}

// Discard removes the checkpoint for an action without compensating,
// typically after a successful execution.
func (m *Manager) Discard(actionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.checkpoints[actionID]; ok {
		delete(m.checkpoints, actionID)
		m.removeFromOrder(actionID)
	}
}

// Has reports whether a live checkpoint exists for the action id.
func (m *Manager) Has(actionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.checkpoints[actionID]
	return ok
}

// Len returns the number of live checkpoints.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.checkpoints)
}

// removeFromOrder drops the id from the eviction order. Caller must
// hold m.mu.
func (m *Manager) removeFromOrder(actionID string) {
	for i, id := range m.order {
		if id == actionID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}

func copyParams(params map[string]interface{}) map[string]interface{} {
	if params == nil {
		return nil
	}
	out := make(map[string]interface{}, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
