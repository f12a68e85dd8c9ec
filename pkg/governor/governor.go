// Package governor wires the full governance pipeline behind a single
// facade: intake, risk classification, boundary checks, routing,
// execution, approvals, escalations and the audit ledger.
package governor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"meridian-hq/saturn/pkg/action"
	"meridian-hq/saturn/pkg/approval"
	"meridian-hq/saturn/pkg/audit"
	"meridian-hq/saturn/pkg/boundary"
	"meridian-hq/saturn/pkg/clock"
	"meridian-hq/saturn/pkg/config"
	"meridian-hq/saturn/pkg/escalation"
	"meridian-hq/saturn/pkg/events"
	"meridian-hq/saturn/pkg/execution"
	"meridian-hq/saturn/pkg/risk"
	"meridian-hq/saturn/pkg/rollback"
	"meridian-hq/saturn/pkg/routing"
)

// Governor is the single entry point for processing actions through
// the governance pipeline. All components share one event bus and one
// clock; callers interact only with the facade.
type Governor struct {
	cfg *config.Config

	bus        *events.Bus
	clock      clock.Clock
	store      *boundary.Store
	checker    *boundary.Checker
	classifier *risk.Classifier
	escalation *escalation.Manager
	queue      *approval.Queue
	scheduler  *approval.BatchScheduler
	rollback   *rollback.Manager
	registry   *execution.Registry
	executor   *execution.Executor
	router     *routing.Router
	audit      *audit.Logger
	metrics    *Metrics

	watcher      *boundary.Watcher
	summaryCron  *cron.Cron
	counterStore boundary.CounterStore

	logger *slog.Logger
}

// Option customizes governor construction.
type Option func(*Governor)

// WithClock overrides the clock used by every component. Tests use
// this to drive rollovers and expiry deterministically.
func WithClock(clk clock.Clock) Option {
	return func(g *Governor) { g.clock = clk }
}

// WithMetrics attaches Prometheus metrics. Without it the governor
// runs metric-free.
func WithMetrics(m *Metrics) Option {
	return func(g *Governor) { g.metrics = m }
}

// New builds a governor from configuration and a handler registry.
// The registry may be empty; actions without handlers fail execution
// and are recorded as such.
func New(cfg *config.Config, registry *execution.Registry, opts ...Option) (*Governor, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	config.ApplyDefaults(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if registry == nil {
		registry = execution.NewRegistry()
	}

	g := &Governor{
		cfg:      cfg,
		bus:      events.NewBus(),
		clock:    clock.System(),
		registry: registry,
		logger:   slog.Default().With("component", "governor"),
	}
	for _, opt := range opts {
		opt(g)
	}

	g.store = boundary.NewStore(boundary.Default())
	if cfg.Boundaries.Path != "" {
		if err := g.store.LoadFile(cfg.Boundaries.Path); err != nil {
			return nil, fmt.Errorf("loading boundaries: %w", err)
		}
	}

	checkerOpts := []boundary.CheckerOption{}
	if cfg.Boundaries.CounterDBPath != "" {
		cs, err := boundary.NewSQLiteCounterStore(cfg.Boundaries.CounterDBPath)
		if err != nil {
			return nil, fmt.Errorf("opening counter store: %w", err)
		}
		g.counterStore = cs
		checkerOpts = append(checkerOpts, boundary.WithCounterStore(cs))
	}
	g.checker = boundary.NewChecker(g.store, g.clock, checkerOpts...)

	g.classifier = risk.NewClassifier(g.clock)
	g.escalation = escalation.NewManager(g.bus, g.clock)
	g.queue = approval.NewQueue(g.bus, g.clock)
	g.scheduler = approval.NewBatchScheduler(g.queue, g.bus, cfg.Approval.BatchInterval)
	g.rollback = rollback.NewManager(cfg.Rollback.Capacity, g.clock)
	g.executor = execution.NewExecutor(g.registry, g.rollback, g.bus, g.clock)
	g.router = routing.NewRouter(g.classifier, g.checker, g.store, g.escalation, g.bus, g.clock)

	auditOpts := []audit.LoggerOption{}
	if cfg.Audit.SQLitePath != "" {
		sink, err := audit.NewSQLiteSink(cfg.Audit.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening audit sink: %w", err)
		}
		auditOpts = append(auditOpts, audit.WithSink(sink))
	}
	g.audit = audit.NewLogger(cfg.Audit.Capacity, g.clock, auditOpts...)

	return g, nil
}

// Start launches the background machinery: the boundaries file
// watcher (when configured), the approval batch scheduler and the
// daily summary cron. Safe to skip entirely for synchronous use.
func (g *Governor) Start(ctx context.Context) error {
	if g.cfg.Boundaries.Watch && g.cfg.Boundaries.Path != "" {
		w, err := boundary.NewWatcher(g.store, boundary.WatcherConfig{Path: g.cfg.Boundaries.Path})
		if err != nil {
			return fmt.Errorf("starting boundaries watcher: %w", err)
		}
		g.watcher = w
		go func() {
			if err := w.Watch(ctx); err != nil {
				g.logger.Error("boundaries watcher stopped", "error", err)
			}
		}()
	}

	if err := g.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("starting batch scheduler: %w", err)
	}

	g.summaryCron = cron.New()
	if _, err := g.summaryCron.AddFunc("0 0 * * *", g.emitDailySummary); err != nil {
		return fmt.Errorf("scheduling daily summary: %w", err)
	}
	g.summaryCron.Start()

	g.logger.Info("governor started",
		"boundaries_watch", g.watcher != nil,
		"batch_interval", g.cfg.Approval.BatchInterval)
	return nil
}

// Stop tears down background machinery and flushes the audit sink.
func (g *Governor) Stop() {
	if g.watcher != nil {
		if err := g.watcher.Stop(); err != nil {
			g.logger.Warn("stopping boundaries watcher", "error", err)
		}
		g.watcher = nil
	}
	g.scheduler.Stop()
	if g.summaryCron != nil {
		g.summaryCron.Stop()
		g.summaryCron = nil
	}
	if err := g.audit.Close(); err != nil {
		g.logger.Warn("closing audit logger", "error", err)
	}
	if g.counterStore != nil {
		if err := g.counterStore.Close(); err != nil {
			g.logger.Warn("closing counter store", "error", err)
		}
	}
	g.logger.Info("governor stopped")
}

// ProcessAction runs one action through the full pipeline: fill
// intake defaults, route, then carry out the route's side effects.
// Auto-routed actions execute immediately; queued actions wait for
// ApproveAction or the batch review; escalated actions wait for
// ResolveEscalation. The returned decision carries the assessment and
// check for the caller's benefit.
func (g *Governor) ProcessAction(ctx context.Context, a *action.Action) (*routing.Decision, error) {
	if a == nil {
		return nil, fmt.Errorf("action cannot be nil")
	}
	if a.Type == "" {
		return nil, fmt.Errorf("action type cannot be empty")
	}
	started := g.clock.Now()
	g.fillDefaults(a)

	decision := g.router.Route(a)
	g.metrics.RecordRouted(string(decision.Route), decision.Risk.Score)

	switch decision.Route {
	case action.RouteAuto:
		g.executeApproved(ctx, a, action.RouteAuto)

	case action.RouteQueue:
		g.queue.Add(a)
		g.audit.RecordAction(a, action.RouteQueue, 0, 0)

	case action.RouteEscalate:
		// The router already notified the escalation manager.
		g.audit.RecordAction(a, action.RouteEscalate, 0, 0)
	}

	g.updatePendingGauges()
	g.metrics.RecordProcessDuration(g.clock.Now().Sub(started).Seconds())
	return decision, nil
}

// ApproveAction approves a queued item and executes it. Returns false
// for unknown or already-decided ids. Execution failure does not
// un-approve the item; the outcome lands in the audit ledger either
// way.
func (g *Governor) ApproveAction(ctx context.Context, id, feedback string) bool {
	a, ok := g.queue.Approve(id, feedback)
	if !ok {
		return false
	}
	a.Route = action.RouteAuto
	g.executeApproved(ctx, a, action.RouteQueue)
	if feedback != "" {
		g.audit.AddFeedback(a.ID, feedback)
	}
	g.queue.ClearProcessed()
	g.updatePendingGauges()
	return true
}

// RejectAction rejects a queued item. Returns false for unknown or
// already-decided ids.
func (g *Governor) RejectAction(id, feedback string) bool {
	a, ok := g.queue.Reject(id, feedback)
	if !ok {
		return false
	}
	g.audit.RecordAction(a, action.RouteQueue, 0, 0)
	if feedback != "" {
		g.audit.AddFeedback(a.ID, feedback)
	}
	g.queue.ClearProcessed()
	g.updatePendingGauges()
	return true
}

// ResolveEscalation resolves a pending escalation. Approval executes
// the action immediately; rejection records the refusal. Returns
// false for unknown ids.
func (g *Governor) ResolveEscalation(ctx context.Context, id string, approved bool, feedback string) bool {
	a, ok := g.escalation.Resolve(id, approved, feedback)
	if !ok {
		return false
	}
	if approved {
		a.Route = action.RouteAuto
		g.executeApproved(ctx, a, action.RouteEscalate)
	} else {
		g.audit.RecordAction(a, action.RouteEscalate, 0, 0)
	}
	if feedback != "" {
		g.audit.AddFeedback(a.ID, feedback)
	}
	g.updatePendingGauges()
	return true
}

// executeApproved runs an approved action and records the outcome
// against the route it originally took through the pipeline.
func (g *Governor) executeApproved(ctx context.Context, a *action.Action, originalRoute action.Route) {
	ok := g.executor.Execute(ctx, a)
	if ok && a.Status == action.StatusExecuted {
		g.checker.RecordExecution(a)
		cost := 0.0
		if a.Risk != nil {
			cost = a.Risk.EstimatedCost
		}
		g.audit.RecordAction(a, originalRoute, cost, revenueFrom(a.Result))
		g.metrics.RecordExecution(string(action.StatusExecuted))
		return
	}
	g.audit.RecordAction(a, originalRoute, 0, 0)
	g.metrics.RecordExecution(string(a.Status))
	if a.Status == action.StatusRolledBack {
		g.metrics.RecordRollback()
	}
}

// fillDefaults completes a partially specified action at intake.
func (g *Governor) fillDefaults(a *action.Action) {
	now := g.clock.Now()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = action.StatusPending
	}
	if a.Params == nil {
		a.Params = map[string]interface{}{}
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}
}

func (g *Governor) emitDailySummary() {
	summary := g.audit.DailySummary()
	g.bus.Publish(events.Event{
		Type: events.TypeDailySummary,
		Time: g.clock.Now(),
		Payload: map[string]interface{}{
			"summary": summary,
		},
	})
	g.logger.Info("daily summary",
		"auto_executed", summary.AutoExecuted,
		"queued", summary.Queued,
		"escalated", summary.Escalated,
		"cost", summary.Cost,
		"revenue", summary.Revenue)
}

func (g *Governor) updatePendingGauges() {
	g.metrics.UpdatePending(len(g.queue.Pending()), g.escalation.Len())
}

// Subscribe registers a subscriber on the shared event bus.
func (g *Governor) Subscribe(sub events.Subscriber) {
	g.bus.Subscribe(sub)
}

// SubscribeFunc registers a plain function on the shared event bus.
func (g *Governor) SubscribeFunc(fn func(evt events.Event)) {
	g.bus.SubscribeFunc(fn)
}

// PendingApprovals returns the queue's pending items, oldest first.
func (g *Governor) PendingApprovals() []*approval.Item {
	return g.queue.Pending()
}

// PendingEscalations returns actions awaiting synchronous attention.
func (g *Governor) PendingEscalations() []*action.Action {
	return g.escalation.Pending()
}

// ApprovalBatch builds a review batch from the current queue.
func (g *Governor) ApprovalBatch() *approval.Batch {
	return g.queue.Snapshot()
}

// FireBatchReview triggers an immediate batch-ready pass outside the
// regular schedule.
func (g *Governor) FireBatchReview() {
	g.scheduler.Fire()
}

// AuditEntries returns audit entries matching the filter, newest
// first.
func (g *Governor) AuditEntries(f *audit.Filter) []*audit.Entry {
	return g.audit.Entries(f)
}

// AuditSummary aggregates the ledger, optionally since a point in
// time.
func (g *Governor) AuditSummary(since *time.Time) *audit.Summary {
	return g.audit.Summary(since)
}

// DailySummary aggregates today's ledger activity.
func (g *Governor) DailySummary() *audit.DailySummary {
	return g.audit.DailySummary()
}

// Boundaries returns the currently effective boundaries.
func (g *Governor) Boundaries() *boundary.Boundaries {
	return g.store.Current()
}

// Counters returns a copy of the current usage counters.
func (g *Governor) Counters() boundary.Counters {
	return g.checker.Counters()
}

func revenueFrom(result interface{}) float64 {
	m, ok := result.(map[string]interface{})
	if !ok {
		return 0
	}
	switch v := m["revenue"].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}
