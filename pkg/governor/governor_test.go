package governor

import (
	"context"
	"errors"
	"testing"
	"time"

	"meridian-hq/saturn/pkg/action"
	"meridian-hq/saturn/pkg/audit"
	"meridian-hq/saturn/pkg/clock"
	"meridian-hq/saturn/pkg/events"
	"meridian-hq/saturn/pkg/execution"
)

// midday avoids the default quiet hours (02:00-06:00 UTC).
var midday = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func newTestGovernor(t *testing.T, registry *execution.Registry) *Governor {
	t.Helper()
	g, err := New(nil, registry, WithClock(clock.NewFake(midday)))
	if err != nil {
		t.Fatalf("Failed to build governor: %v", err)
	}
	return g
}

func okHandler(result interface{}) execution.Handler {
	return func(ctx context.Context, a *action.Action) (interface{}, error) {
		return result, nil
	}
}

func TestGovernor_ProcessActionAutoExecutes(t *testing.T) {
	registry := execution.NewRegistry()
	registry.Register("trading:*", okHandler(map[string]interface{}{"revenue": 40.0}))
	g := newTestGovernor(t, registry)

	a := &action.Action{
		Type:   "trading:dca:buy",
		Engine: "trading",
		Params: map[string]interface{}{"amount": 25.0, "token": "SOL"},
	}
	decision, err := g.ProcessAction(context.Background(), a)
	if err != nil {
		t.Fatalf("ProcessAction failed: %v", err)
	}

	if decision.Route != action.RouteAuto {
		t.Fatalf("Expected auto route, got %s (%s)", decision.Route, decision.Reason)
	}
	if a.Status != action.StatusExecuted {
		t.Errorf("Expected executed status, got %s", a.Status)
	}
	if a.ID == "" {
		t.Error("Expected an id to be filled at intake")
	}
	if got := g.Counters().DailySpend; got != 25 {
		t.Errorf("Expected spend recorded once, got %v", got)
	}

	entries := g.AuditEntries(nil)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 audit entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Route != action.RouteAuto || e.Outcome != action.StatusExecuted {
		t.Errorf("Unexpected audit entry: %+v", e)
	}
	if e.Cost != 25 {
		t.Errorf("Expected cost 25 from the assessment, got %v", e.Cost)
	}
	if e.Revenue != 40 {
		t.Errorf("Expected revenue 40 from the handler result, got %v", e.Revenue)
	}
}

func TestGovernor_ProcessActionAutoFailure(t *testing.T) {
	registry := execution.NewRegistry()
	registry.Register("trading:*", func(ctx context.Context, a *action.Action) (interface{}, error) {
		return nil, errors.New("exchange unreachable")
	})
	g := newTestGovernor(t, registry)

	a := &action.Action{
		Type:   "trading:dca:buy",
		Engine: "trading",
		Params: map[string]interface{}{"amount": 25.0, "token": "SOL"},
	}
	if _, err := g.ProcessAction(context.Background(), a); err != nil {
		t.Fatalf("ProcessAction failed: %v", err)
	}

	if a.Status != action.StatusFailed {
		t.Errorf("Expected failed status, got %s", a.Status)
	}
	// Failed executions never count against usage limits.
	if got := g.Counters().DailySpend; got != 0 {
		t.Errorf("Expected no spend recorded, got %v", got)
	}

	entries := g.AuditEntries(&audit.Filter{Outcome: action.StatusFailed})
	if len(entries) != 1 {
		t.Fatalf("Expected 1 failed audit entry, got %d", len(entries))
	}
	if entries[0].Cost != 0 {
		t.Errorf("Expected no cost on failure, got %v", entries[0].Cost)
	}
}

func TestGovernor_QueueThenApprove(t *testing.T) {
	registry := execution.NewRegistry()
	registry.Register("expense:*", okHandler(nil))
	g := newTestGovernor(t, registry)

	a := &action.Action{
		Type:   "expense:pay",
		Engine: "treasury",
		Params: map[string]interface{}{"amount": 75.0},
	}
	decision, err := g.ProcessAction(context.Background(), a)
	if err != nil {
		t.Fatalf("ProcessAction failed: %v", err)
	}
	if decision.Route != action.RouteQueue {
		t.Fatalf("Expected queue route, got %s (%s)", decision.Route, decision.Reason)
	}
	if len(g.PendingApprovals()) != 1 {
		t.Fatalf("Expected 1 pending approval, got %d", len(g.PendingApprovals()))
	}

	if !g.ApproveAction(context.Background(), a.ID, "fine this once") {
		t.Fatal("Expected approval to succeed")
	}
	if a.Status != action.StatusExecuted {
		t.Errorf("Expected executed after approval, got %s", a.Status)
	}
	if a.Approver != action.ApproverHuman {
		t.Errorf("Expected human approver, got %s", a.Approver)
	}
	if len(g.PendingApprovals()) != 0 {
		t.Error("Expected the queue drained after approval")
	}

	// One pending entry from routing, one executed entry recorded
	// against the original queue route.
	entries := g.AuditEntries(nil)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 audit entries, got %d", len(entries))
	}
	if entries[0].Outcome != action.StatusExecuted || entries[0].Route != action.RouteQueue {
		t.Errorf("Unexpected newest entry: %+v", entries[0])
	}
	if entries[0].Feedback != "fine this once" {
		t.Errorf("Expected feedback on the outcome entry, got %q", entries[0].Feedback)
	}
}

func TestGovernor_RejectAction(t *testing.T) {
	g := newTestGovernor(t, execution.NewRegistry())

	a := &action.Action{
		Type:   "expense:pay",
		Engine: "treasury",
		Params: map[string]interface{}{"amount": 75.0},
	}
	if _, err := g.ProcessAction(context.Background(), a); err != nil {
		t.Fatal(err)
	}

	if !g.RejectAction(a.ID, "not in budget") {
		t.Fatal("Expected rejection to succeed")
	}
	if a.Status != action.StatusRejected {
		t.Errorf("Expected rejected status, got %s", a.Status)
	}
	if g.RejectAction(a.ID, "again") {
		t.Error("Expected second rejection to be a no-op")
	}
	if g.ApproveAction(context.Background(), "missing", "") {
		t.Error("Expected unknown id to be a no-op")
	}
}

func TestGovernor_EscalateThenResolve(t *testing.T) {
	registry := execution.NewRegistry()
	registry.Register("deploy:*", okHandler(nil))
	g := newTestGovernor(t, registry)

	a := &action.Action{Type: "deploy:production", Engine: "devops"}
	decision, err := g.ProcessAction(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Route != action.RouteEscalate {
		t.Fatalf("Expected escalate route, got %s (%s)", decision.Route, decision.Reason)
	}
	if len(g.PendingEscalations()) != 1 {
		t.Fatalf("Expected 1 pending escalation, got %d", len(g.PendingEscalations()))
	}

	if !g.ResolveEscalation(context.Background(), a.ID, true, "deploy approved") {
		t.Fatal("Expected resolution to succeed")
	}
	if a.Status != action.StatusExecuted {
		t.Errorf("Expected executed after approval, got %s", a.Status)
	}
	if len(g.PendingEscalations()) != 0 {
		t.Error("Expected escalations drained")
	}

	if g.ResolveEscalation(context.Background(), a.ID, true, "") {
		t.Error("Expected re-resolution to be a no-op")
	}
}

func TestGovernor_ResolveEscalationRejected(t *testing.T) {
	g := newTestGovernor(t, execution.NewRegistry())

	a := &action.Action{Type: "deploy:production", Engine: "devops"}
	if _, err := g.ProcessAction(context.Background(), a); err != nil {
		t.Fatal(err)
	}

	if !g.ResolveEscalation(context.Background(), a.ID, false, "too risky today") {
		t.Fatal("Expected resolution to succeed")
	}
	if a.Status != action.StatusRejected {
		t.Errorf("Expected rejected status, got %s", a.Status)
	}

	entries := g.AuditEntries(&audit.Filter{Outcome: action.StatusRejected})
	if len(entries) != 1 {
		t.Fatalf("Expected 1 rejected entry, got %d", len(entries))
	}
	if entries[0].Feedback != "too risky today" {
		t.Errorf("Expected feedback recorded, got %q", entries[0].Feedback)
	}
}

func TestGovernor_ProcessActionValidation(t *testing.T) {
	g := newTestGovernor(t, execution.NewRegistry())

	if _, err := g.ProcessAction(context.Background(), nil); err == nil {
		t.Error("Expected an error for a nil action")
	}
	if _, err := g.ProcessAction(context.Background(), &action.Action{}); err == nil {
		t.Error("Expected an error for an empty type")
	}
}

func TestGovernor_EventsObservable(t *testing.T) {
	registry := execution.NewRegistry()
	registry.Register("trading:*", okHandler(nil))
	g := newTestGovernor(t, registry)

	var seen []events.Type
	g.SubscribeFunc(func(evt events.Event) { seen = append(seen, evt.Type) })

	a := &action.Action{
		Type:   "trading:dca:buy",
		Engine: "trading",
		Params: map[string]interface{}{"amount": 25.0, "token": "SOL"},
	}
	if _, err := g.ProcessAction(context.Background(), a); err != nil {
		t.Fatal(err)
	}

	want := []events.Type{events.TypeAutoExecuted, events.TypeExecuted}
	if len(seen) != len(want) {
		t.Fatalf("Expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, seen)
			break
		}
	}
}

func TestGovernor_DailySummaryCountsRoutes(t *testing.T) {
	registry := execution.NewRegistry()
	registry.Register("trading:*", okHandler(nil))
	g := newTestGovernor(t, registry)

	ctx := context.Background()
	g.ProcessAction(ctx, &action.Action{
		Type: "trading:dca:buy", Engine: "trading",
		Params: map[string]interface{}{"amount": 25.0, "token": "SOL"},
	})
	g.ProcessAction(ctx, &action.Action{
		Type: "expense:pay", Engine: "treasury",
		Params: map[string]interface{}{"amount": 75.0},
	})
	g.ProcessAction(ctx, &action.Action{Type: "deploy:production", Engine: "devops"})

	d := g.DailySummary()
	if d.AutoExecuted != 1 || d.Queued != 1 || d.Escalated != 1 {
		t.Errorf("Unexpected daily summary: %+v", d)
	}
	if d.Cost != 25 {
		t.Errorf("Expected cost 25, got %v", d.Cost)
	}
}

func TestGovernor_StartStop(t *testing.T) {
	g := newTestGovernor(t, execution.NewRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := g.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	g.Stop()
}
