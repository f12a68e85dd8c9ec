// Package escalation holds actions that require synchronous human
// attention before anything may run. The manager only tracks the
// pending set and emits an "escalated" event with a formatted risk
// breakdown; delivering that notification to a human is an external
// concern.
package escalation

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"meridian-hq/saturn/pkg/action"
	"meridian-hq/saturn/pkg/clock"
	"meridian-hq/saturn/pkg/events"
)

// Manager tracks escalated actions awaiting a human decision.
type Manager struct {
	mu      sync.Mutex
	pending map[string]*action.Action
	bus     *events.Bus
	clock   clock.Clock
	logger  *slog.Logger
}

// NewManager creates an empty escalation manager.
func NewManager(bus *events.Bus, clk clock.Clock) *Manager {
	if clk == nil {
		clk = clock.System()
	}
	return &Manager{
		pending: make(map[string]*action.Action),
		bus:     bus,
		clock:   clk,
		logger:  slog.Default().With("component", "escalation.manager"),
	}
}

// Notify inserts the action into the pending set and emits an
// "escalated" event carrying a fully formatted risk and violation
// breakdown. Delivery of the notification is fire-and-forget.
func (m *Manager) Notify(a *action.Action, violations []string) {
	m.mu.Lock()
	m.pending[a.ID] = a
	count := len(m.pending)
	m.mu.Unlock()

	summary := FormatBreakdown(a, violations)

	m.logger.Warn("action escalated for human attention",
		"action_id", a.ID,
		"action_type", a.Type,
		"engine", a.Engine,
		"pending", count,
	)

	m.bus.Publish(events.Event{
		Type:   events.TypeEscalated,
		Action: a,
		Payload: map[string]interface{}{
			"summary":    summary,
			"violations": violations,
		},
	})
}

// Resolve removes the action from the pending set and stamps the human
// decision onto it. An unknown id is a logged no-op returning false,
// never an error.
func (m *Manager) Resolve(id string, approved bool, feedback string) (*action.Action, bool) {
	m.mu.Lock()
	a, ok := m.pending[id]
	if ok {
		delete(m.pending, id)
	}
	m.mu.Unlock()

	if !ok {
		m.logger.Warn("resolve for unknown escalation", "action_id", id)
		return nil, false
	}

	now := m.clock.Now()
	a.Feedback = feedback
	a.Approver = action.ApproverHuman
	if approved {
		a.Transition(action.StatusApproved, now)
		m.bus.Publish(events.Event{Type: events.TypeApproved, Action: a})
	} else {
		a.Transition(action.StatusRejected, now)
		m.bus.Publish(events.Event{Type: events.TypeRejected, Action: a})
	}

	return a, true
}

// Pending returns a snapshot of the actions awaiting attention.
func (m *Manager) Pending() []*action.Action {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*action.Action, 0, len(m.pending))
	for _, a := range m.pending {
		out = append(out, a)
	}
	return out
}

// Len returns the number of pending escalations.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// FormatBreakdown renders a human-readable escalation notice with the
// full risk factor breakdown and any boundary violations.
func FormatBreakdown(a *action.Action, violations []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "ESCALATION: %s [%s]\n", a.Type, a.ID)
	if a.Description != "" {
		fmt.Fprintf(&b, "  %s\n", a.Description)
	}
	fmt.Fprintf(&b, "  engine: %s\n", a.Engine)

	if a.Risk != nil {
		fmt.Fprintf(&b, "  risk: %s (score %d)\n", a.Risk.Level, a.Risk.Score)
		for _, f := range a.Risk.Factors {
			marker := ""
			if f.Exceeded {
				marker = " EXCEEDED"
			}
			fmt.Fprintf(&b, "    - %s: %.1f / %.1f (weight %.1f)%s\n",
				f.Name, f.Value, f.Threshold, f.Weight, marker)
		}
		if a.Risk.EstimatedCost > 0 {
			fmt.Fprintf(&b, "  estimated cost: %.2f (max loss %.2f)\n",
				a.Risk.EstimatedCost, a.Risk.EstimatedMaxLoss)
		}
		fmt.Fprintf(&b, "  reversible: %t (%s)\n", a.Risk.Reversible, a.Risk.RollbackHint)
	}

	if len(violations) > 0 {
		b.WriteString("  violations:\n")
		for _, v := range violations {
			fmt.Fprintf(&b, "    - %s\n", v)
		}
	}

	return b.String()
}
