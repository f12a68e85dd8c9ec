package execution

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"meridian-hq/saturn/pkg/action"
	"meridian-hq/saturn/pkg/clock"
	"meridian-hq/saturn/pkg/events"
	"meridian-hq/saturn/pkg/rollback"
)

var execTime = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func approvedAction(id, actionType string) *action.Action {
	return &action.Action{
		ID:       id,
		Type:     actionType,
		Route:    action.RouteAuto,
		Status:   action.StatusApproved,
		Approver: action.ApproverAuto,
		Risk:     &action.RiskAssessment{Level: action.RiskSafe, Reversible: true},
	}
}

func newTestExecutor(registry *Registry) (*Executor, *events.Bus, *rollback.Manager) {
	bus := events.NewBus()
	clk := clock.NewFake(execTime)
	rb := rollback.NewManager(10, clk)
	return NewExecutor(registry, rb, bus, clk), bus, rb
}

func TestExecutor_SuccessfulExecution(t *testing.T) {
	registry := NewRegistry()
	registry.Register("expense:pay", func(ctx context.Context, a *action.Action) (interface{}, error) {
		return map[string]interface{}{"receipt": "r-123"}, nil
	})
	executor, bus, rb := newTestExecutor(registry)

	var published []events.Type
	bus.SubscribeFunc(func(evt events.Event) { published = append(published, evt.Type) })

	a := approvedAction("a1", "expense:pay")
	if !executor.Execute(context.Background(), a) {
		t.Fatal("Expected execution to succeed")
	}

	if a.Status != action.StatusExecuted {
		t.Errorf("Expected executed status, got %s", a.Status)
	}
	result, _ := a.Result.(map[string]interface{})
	if result["receipt"] != "r-123" {
		t.Errorf("Expected handler result stored, got %v", a.Result)
	}
	if rb.Has("a1") {
		t.Error("Expected checkpoint discarded after success")
	}
	if len(published) != 1 || published[0] != events.TypeExecuted {
		t.Errorf("Expected one executed event, got %v", published)
	}
}

func TestExecutor_RefusesUnapprovedAction(t *testing.T) {
	registry := NewRegistry()
	called := false
	registry.Register("expense:pay", func(ctx context.Context, a *action.Action) (interface{}, error) {
		called = true
		return nil, nil
	})
	executor, _, _ := newTestExecutor(registry)

	queued := &action.Action{ID: "a1", Type: "expense:pay", Route: action.RouteQueue, Approver: action.ApproverHuman}
	if executor.Execute(context.Background(), queued) {
		t.Error("Expected refusal for a non-auto route")
	}

	noApprover := &action.Action{ID: "a2", Type: "expense:pay", Route: action.RouteAuto}
	if executor.Execute(context.Background(), noApprover) {
		t.Error("Expected refusal without an approver")
	}

	if called {
		t.Error("Expected the handler to never run")
	}
	if queued.Status == action.StatusExecuted || noApprover.Status == action.StatusExecuted {
		t.Error("Expected refused actions untouched")
	}
}

func TestExecutor_FailureRollsBackReversibleAction(t *testing.T) {
	registry := NewRegistry()
	registry.Register("git:commit", func(ctx context.Context, a *action.Action) (interface{}, error) {
		return nil, errors.New("remote rejected the push")
	})
	executor, bus, _ := newTestExecutor(registry)

	var published []events.Type
	bus.SubscribeFunc(func(evt events.Event) { published = append(published, evt.Type) })

	a := approvedAction("a1", "git:commit")
	if executor.Execute(context.Background(), a) {
		t.Fatal("Expected execution to fail")
	}

	// The default commit rule compensates, so the failure ends as
	// rolled_back rather than failed.
	if a.Status != action.StatusRolledBack {
		t.Errorf("Expected rolled_back status, got %s", a.Status)
	}
	if a.Error == "" {
		t.Error("Expected the handler error recorded")
	}
	want := []events.Type{events.TypeFailed, events.TypeRolledBack}
	if len(published) != 2 || published[0] != want[0] || published[1] != want[1] {
		t.Errorf("Expected %v, got %v", want, published)
	}
}

func TestExecutor_FailureWithoutCompensationStaysFailed(t *testing.T) {
	registry := NewRegistry()
	registry.Register("expense:pay", func(ctx context.Context, a *action.Action) (interface{}, error) {
		return nil, errors.New("card declined")
	})
	executor, _, _ := newTestExecutor(registry)

	// No rollback rule matches an expense: the checkpoint carries no
	// compensating function, so the status stays failed.
	a := approvedAction("a1", "expense:pay")
	if executor.Execute(context.Background(), a) {
		t.Fatal("Expected execution to fail")
	}
	if a.Status != action.StatusFailed {
		t.Errorf("Expected failed status, got %s", a.Status)
	}
}

func TestExecutor_IrreversibleFailureSkipsRollback(t *testing.T) {
	registry := NewRegistry()
	registry.Register("treasury:transfer", func(ctx context.Context, a *action.Action) (interface{}, error) {
		return nil, errors.New("insufficient funds")
	})
	executor, _, rb := newTestExecutor(registry)

	a := approvedAction("a1", "treasury:transfer")
	a.Risk.Reversible = false

	executor.Execute(context.Background(), a)

	if a.Status != action.StatusFailed {
		t.Errorf("Expected failed status, got %s", a.Status)
	}
	if rb.Has("a1") {
		t.Error("Expected no checkpoint for an irreversible action")
	}
}

func TestExecutor_MissingHandlerFails(t *testing.T) {
	executor, _, _ := newTestExecutor(NewRegistry())

	a := approvedAction("a1", "unknown:thing")
	if executor.Execute(context.Background(), a) {
		t.Fatal("Expected execution to fail without a handler")
	}
	if a.Status != action.StatusFailed {
		t.Errorf("Expected failed status, got %s", a.Status)
	}
}

func TestExecutor_RefusesConcurrentSameID(t *testing.T) {
	registry := NewRegistry()
	started := make(chan struct{})
	release := make(chan struct{})
	registry.Register("slow:op", func(ctx context.Context, a *action.Action) (interface{}, error) {
		close(started)
		<-release
		return nil, nil
	})
	executor, _, _ := newTestExecutor(registry)

	first := approvedAction("a1", "slow:op")
	second := approvedAction("a1", "slow:op")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		executor.Execute(context.Background(), first)
	}()

	<-started
	if executor.InFlight() != 1 {
		t.Errorf("Expected 1 in flight, got %d", executor.InFlight())
	}
	if executor.Execute(context.Background(), second) {
		t.Error("Expected concurrent execution of the same id to be refused")
	}

	close(release)
	wg.Wait()

	if executor.InFlight() != 0 {
		t.Errorf("Expected 0 in flight after completion, got %d", executor.InFlight())
	}
}

func TestExecutor_ExecuteBatchPartitions(t *testing.T) {
	registry := NewRegistry()
	registry.Register("ok:op", func(ctx context.Context, a *action.Action) (interface{}, error) {
		return nil, nil
	})
	registry.Register("bad:op", func(ctx context.Context, a *action.Action) (interface{}, error) {
		return nil, errors.New("boom")
	})
	executor, _, _ := newTestExecutor(registry)

	actions := []*action.Action{
		approvedAction("a1", "ok:op"),
		approvedAction("a2", "bad:op"),
		approvedAction("a3", "ok:op"),
	}
	succeeded, failed := executor.ExecuteBatch(context.Background(), actions)

	if len(succeeded) != 2 {
		t.Errorf("Expected 2 succeeded, got %d", len(succeeded))
	}
	if len(failed) != 1 || failed[0].ID != "a2" {
		t.Errorf("Expected a2 to fail, got %v", failed)
	}
}
