package routing

import (
	"testing"
	"time"

	"meridian-hq/saturn/pkg/action"
	"meridian-hq/saturn/pkg/boundary"
	"meridian-hq/saturn/pkg/clock"
	"meridian-hq/saturn/pkg/escalation"
	"meridian-hq/saturn/pkg/events"
	"meridian-hq/saturn/pkg/risk"
)

// midday avoids the default quiet hours (02:00-06:00 UTC).
var midday = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

type routerFixture struct {
	router     *Router
	checker    *boundary.Checker
	escalation *escalation.Manager
	bus        *events.Bus
	events     *[]events.Event
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	clk := clock.NewFake(midday)
	bus := events.NewBus()
	store := boundary.NewStore(nil)
	checker := boundary.NewChecker(store, clk)
	esc := escalation.NewManager(bus, clk)
	router := NewRouter(risk.NewClassifier(clk), checker, store, esc, bus, clk)

	var published []events.Event
	bus.SubscribeFunc(func(evt events.Event) { published = append(published, evt) })

	return &routerFixture{
		router:     router,
		checker:    checker,
		escalation: esc,
		bus:        bus,
		events:     &published,
	}
}

func (f *routerFixture) lastEvent() *events.Event {
	if len(*f.events) == 0 {
		return nil
	}
	return &(*f.events)[len(*f.events)-1]
}

func TestRouter_SafeActionRoutesAuto(t *testing.T) {
	f := newRouterFixture(t)

	a := &action.Action{
		ID:   "a1",
		Type: "trading:dca:buy",
		Params: map[string]interface{}{
			"amount": 25.0,
			"token":  "SOL",
		},
	}
	decision := f.router.Route(a)

	if decision.Route != action.RouteAuto {
		t.Fatalf("Expected auto route, got %s (%s)", decision.Route, decision.Reason)
	}
	if a.Status != action.StatusApproved {
		t.Errorf("Expected approved status, got %s", a.Status)
	}
	if a.Approver != action.ApproverAuto {
		t.Errorf("Expected auto approver, got %s", a.Approver)
	}
	if evt := f.lastEvent(); evt == nil || evt.Type != events.TypeAutoExecuted {
		t.Errorf("Expected auto_executed event, got %+v", evt)
	}
}

func TestRouter_WarningRoutesQueue(t *testing.T) {
	f := newRouterFixture(t)

	a := &action.Action{
		ID:     "a2",
		Type:   "expense:pay",
		Params: map[string]interface{}{"amount": 75.0},
	}
	decision := f.router.Route(a)

	if decision.Route != action.RouteQueue {
		t.Fatalf("Expected queue route, got %s (%s)", decision.Route, decision.Reason)
	}
	if a.Status != action.StatusPending {
		t.Errorf("Expected pending status, got %s", a.Status)
	}
	if evt := f.lastEvent(); evt == nil || evt.Type != events.TypeQueued {
		t.Errorf("Expected queued event, got %+v", evt)
	}
}

func TestRouter_ModerateRiskRoutesQueue(t *testing.T) {
	f := newRouterFixture(t)

	a := &action.Action{ID: "a3", Type: "social:post"}
	decision := f.router.Route(a)

	if decision.Route != action.RouteQueue {
		t.Fatalf("Expected queue route, got %s (%s)", decision.Route, decision.Reason)
	}
	if decision.Risk.Level != action.RiskModerate {
		t.Errorf("Expected moderate risk, got %s", decision.Risk.Level)
	}
	if decision.Reason != "moderate risk requires review" {
		t.Errorf("Unexpected reason %q", decision.Reason)
	}
}

func TestRouter_ViolationRoutesEscalate(t *testing.T) {
	f := newRouterFixture(t)

	a := &action.Action{ID: "a4", Type: "deploy:production"}
	decision := f.router.Route(a)

	if decision.Route != action.RouteEscalate {
		t.Fatalf("Expected escalate route, got %s (%s)", decision.Route, decision.Reason)
	}
	if a.Status != action.StatusPending {
		t.Errorf("Expected pending status, got %s", a.Status)
	}
	if f.escalation.Len() != 1 {
		t.Errorf("Expected 1 pending escalation, got %d", f.escalation.Len())
	}
	if evt := f.lastEvent(); evt == nil || evt.Type != events.TypeEscalated {
		t.Errorf("Expected escalated event, got %+v", evt)
	}
}

func TestRouter_ViolationBeatsLowRisk(t *testing.T) {
	f := newRouterFixture(t)

	// A tiny amount on a disallowed token is safe by score but
	// still a hard violation.
	a := &action.Action{
		ID:     "a5",
		Type:   "trading:buy",
		Params: map[string]interface{}{"amount": 5.0, "token": "DOGE"},
	}
	decision := f.router.Route(a)

	if decision.Route != action.RouteEscalate {
		t.Fatalf("Expected escalate route, got %s (%s)", decision.Route, decision.Reason)
	}
	if decision.Risk.Level != action.RiskSafe {
		t.Errorf("Expected safe risk despite escalation, got %s", decision.Risk.Level)
	}
}

func TestRouter_SetsFreshAssessment(t *testing.T) {
	f := newRouterFixture(t)

	a := &action.Action{
		ID:   "a6",
		Type: "expense:pay",
		Risk: &action.RiskAssessment{Score: 99, Level: action.RiskCritical},
		Params: map[string]interface{}{
			"amount": 10.0,
		},
	}
	decision := f.router.Route(a)

	if a.Risk.Score == 99 {
		t.Error("Expected a fresh assessment to replace the stale one")
	}
	if a.Risk != decision.Risk {
		t.Error("Expected the action to carry the decision's assessment")
	}
	if a.Risk.Level != action.RiskSafe {
		t.Errorf("Expected recomputed safe level, got %s", a.Risk.Level)
	}
}

func TestRouter_NeverTouchesCounters(t *testing.T) {
	f := newRouterFixture(t)

	a := &action.Action{
		ID:     "a7",
		Type:   "expense:pay",
		Params: map[string]interface{}{"amount": 40.0},
	}
	f.router.Route(a)
	f.router.Route(a)

	if got := f.checker.Counters().DailySpend; got != 0 {
		t.Errorf("Expected routing to never record spend, got %v", got)
	}
}
