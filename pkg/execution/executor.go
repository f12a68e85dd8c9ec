package execution

import (
	"context"
	"log/slog"
	"sync"

	"meridian-hq/saturn/pkg/action"
	"meridian-hq/saturn/pkg/clock"
	"meridian-hq/saturn/pkg/events"
	"meridian-hq/saturn/pkg/rollback"
)

// Executor runs approved actions through the handler registry.
type Executor struct {
	registry *Registry
	rollback *rollback.Manager
	bus      *events.Bus
	clock    clock.Clock
	logger   *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewExecutor wires an executor. The rollback manager may be nil, in
// which case no action is treated as recoverable.
func NewExecutor(registry *Registry, rb *rollback.Manager, bus *events.Bus, clk clock.Clock) *Executor {
	if clk == nil {
		clk = clock.System()
	}
	return &Executor{
		registry: registry,
		rollback: rb,
		bus:      bus,
		clock:    clk,
		logger:   slog.Default().With("component", "execution.executor"),
		inflight: make(map[string]struct{}),
	}
}

// Execute runs the action and returns whether it succeeded.
//
// Preconditions: the action must be routed auto and carry an approver;
// otherwise Execute refuses with false and mutates nothing. A second
// concurrent call for the same id is refused immediately.
//
// For reversible actions a checkpoint is created before the handler
// runs. On success the action is marked executed and the checkpoint
// discarded. On failure the action is marked failed and, only if
// reversible, a best-effort rollback is attempted: if a compensating
// function ran, the status moves to rolled_back; a rollback error is
// logged and left alone.
func (e *Executor) Execute(ctx context.Context, a *action.Action) bool {
	if a.Route != action.RouteAuto || a.Approver == "" {
		e.logger.Warn("refusing execution of unapproved action",
			"action_id", a.ID,
			"route", string(a.Route),
			"approver", string(a.Approver),
		)
		return false
	}

	e.mu.Lock()
	if _, busy := e.inflight[a.ID]; busy {
		e.mu.Unlock()
		e.logger.Warn("refusing concurrent execution", "action_id", a.ID)
		return false
	}
	e.inflight[a.ID] = struct{}{}
	e.mu.Unlock()

	// Held for the handler's full duration, released on every exit path.
	defer func() {
		e.mu.Lock()
		delete(e.inflight, a.ID)
		e.mu.Unlock()
	}()

	reversible := e.rollback != nil && a.Risk != nil && a.Risk.Reversible
	if reversible {
		e.rollback.CreateCheckpoint(a)
	}

	result, err := e.registry.Execute(ctx, a)
	now := e.clock.Now()

	if err == nil {
		a.Result = result
		a.Transition(action.StatusExecuted, now)
		if reversible {
			e.rollback.Discard(a.ID)
		}

		e.logger.Info("action executed",
			"action_id", a.ID,
			"action_type", a.Type,
		)
		e.bus.Publish(events.Event{Type: events.TypeExecuted, Action: a})
		return true
	}

	a.Error = err.Error()
	a.Transition(action.StatusFailed, now)

	e.logger.Error("action execution failed",
		"action_id", a.ID,
		"action_type", a.Type,
		"error", err,
	)
	e.bus.Publish(events.Event{Type: events.TypeFailed, Action: a, Error: a.Error})

	if reversible {
		e.attemptRollback(ctx, a)
	}
	return false
}

// attemptRollback compensates a failed reversible action best-effort.
// Failure here is logged, never propagated; the action stays failed
// unless a compensating function actually ran.
func (e *Executor) attemptRollback(ctx context.Context, a *action.Action) {
	compensated, err := e.rollback.Restore(ctx, a.ID)
	if err != nil {
		e.logger.Error("rollback attempt failed",
			"action_id", a.ID,
			"error", err,
		)
		return
	}
	if !compensated {
		// Checkpoint existed but nothing was bound; already warned by
		// the rollback manager.
		return
	}

	a.Transition(action.StatusRolledBack, e.clock.Now())
	e.bus.Publish(events.Event{Type: events.TypeRolledBack, Action: a})
}

// ExecuteBatch runs the actions strictly sequentially, partitioning
// them into succeeded and failed. Sequential execution bounds the
// blast radius of a bad batch and keeps the audit order deterministic.
func (e *Executor) ExecuteBatch(ctx context.Context, actions []*action.Action) (succeeded, failed []*action.Action) {
	for _, a := range actions {
		if e.Execute(ctx, a) {
			succeeded = append(succeeded, a)
		} else {
			failed = append(failed, a)
		}
	}
	return succeeded, failed
}

// InFlight returns the number of executions currently running.
func (e *Executor) InFlight() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.inflight)
}
