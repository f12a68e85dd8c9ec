// Package routing implements the three-way routing decision: given an
// action, classify its risk, check it against the boundaries in force,
// and choose between immediate execution, batched human review, and
// synchronous escalation.
//
// The router never executes anything and never rolls anything back; it
// labels the action and performs routing-time bookkeeping only.
// Counter recording belongs to the caller, after a verified successful
// run.
package routing

import (
	"log/slog"

	"meridian-hq/saturn/pkg/action"
	"meridian-hq/saturn/pkg/boundary"
	"meridian-hq/saturn/pkg/clock"
	"meridian-hq/saturn/pkg/escalation"
	"meridian-hq/saturn/pkg/events"
	"meridian-hq/saturn/pkg/risk"
)

// Decision is the outcome of one routing pass.
type Decision struct {
	// Route is the chosen route.
	Route action.Route

	// Risk is the fresh assessment computed for this pass.
	Risk *action.RiskAssessment

	// Check is the boundary check result for this pass.
	Check *boundary.CheckResult

	// Reason explains which precedence rule selected the route.
	Reason string
}

// Router composes the classifier, the boundary checker and the
// escalation manager into a single routing pass.
type Router struct {
	classifier *risk.Classifier
	checker    *boundary.Checker
	store      *boundary.Store
	escalation *escalation.Manager
	bus        *events.Bus
	clock      clock.Clock
	logger     *slog.Logger
}

// NewRouter wires a router from its collaborators.
func NewRouter(classifier *risk.Classifier, checker *boundary.Checker, store *boundary.Store, esc *escalation.Manager, bus *events.Bus, clk clock.Clock) *Router {
	if clk == nil {
		clk = clock.System()
	}
	return &Router{
		classifier: classifier,
		checker:    checker,
		store:      store,
		escalation: esc,
		bus:        bus,
		clock:      clk,
		logger:     slog.Default().With("component", "routing.router"),
	}
}

// Route runs one full routing pass over the action: classify,
// boundary-check, select by first-match precedence, then dispatch the
// routing-time bookkeeping. The action's Risk and Route fields are
// set; execution and enqueueing are left to the caller.
//
// Precedence, first match wins:
//
//  1. critical risk OR any hard violation  -> escalate
//  2. high risk OR any warning             -> queue
//  3. safe risk AND nothing crossed        -> auto
//  4. otherwise (moderate, nothing crossed) -> queue
func (r *Router) Route(a *action.Action) *Decision {
	bounds := r.store.Current()
	assessment := r.classifier.Assess(a, bounds)
	check := r.checker.Check(a)

	a.Risk = assessment

	var (
		route  action.Route
		reason string
	)
	switch {
	case assessment.Level == action.RiskCritical || check.Violated():
		route = action.RouteEscalate
		reason = selectEscalateReason(assessment, check)
	case assessment.Level == action.RiskHigh || check.NeedsReview():
		route = action.RouteQueue
		reason = selectQueueReason(assessment, check)
	case assessment.Level == action.RiskSafe && check.WithinLimits():
		route = action.RouteAuto
		reason = "safe risk within limits"
	default:
		route = action.RouteQueue
		reason = "moderate risk requires review"
	}

	a.Route = route
	now := r.clock.Now()

	switch route {
	case action.RouteAuto:
		a.Approver = action.ApproverAuto
		a.Transition(action.StatusApproved, now)
		r.bus.Publish(events.Event{Type: events.TypeAutoExecuted, Action: a})

	case action.RouteQueue:
		a.Transition(action.StatusPending, now)
		r.bus.Publish(events.Event{Type: events.TypeQueued, Action: a})

	case action.RouteEscalate:
		a.Transition(action.StatusPending, now)
		// The escalation manager performs the blocking notification.
		r.escalation.Notify(a, check.Violations)
	}

	r.logger.Info("action routed",
		"action_id", a.ID,
		"action_type", a.Type,
		"route", string(route),
		"risk_level", string(assessment.Level),
		"risk_score", assessment.Score,
		"violations", len(check.Violations),
		"warnings", len(check.Warnings),
		"reason", reason,
	)

	return &Decision{
		Route:  route,
		Risk:   assessment,
		Check:  check,
		Reason: reason,
	}
}

func selectEscalateReason(assessment *action.RiskAssessment, check *boundary.CheckResult) string {
	if check.Violated() {
		return "boundary violation: " + check.Violations[0]
	}
	return "critical risk"
}

func selectQueueReason(assessment *action.RiskAssessment, check *boundary.CheckResult) string {
	if assessment.Level == action.RiskHigh {
		return "high risk requires review"
	}
	return "boundary warning: " + check.Warnings[0]
}
