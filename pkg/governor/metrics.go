package governor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the governance pipeline.
type Metrics struct {
	actionsRouted      *prometheus.CounterVec
	executions         *prometheus.CounterVec
	rollbacks          prometheus.Counter
	riskScore          prometheus.Histogram
	pendingApprovals   prometheus.Gauge
	pendingEscalations prometheus.Gauge
	processDuration    prometheus.Histogram
}

// NewMetrics creates a Metrics instance registered on the given
// registerer. Pass prometheus.DefaultRegisterer in production; tests
// use a fresh registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		actionsRouted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saturn_actions_routed_total",
				Help: "Total number of actions routed, by route",
			},
			[]string{"route"},
		),

		executions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saturn_executions_total",
				Help: "Total number of executions, by final outcome",
			},
			[]string{"outcome"},
		),

		rollbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "saturn_rollbacks_total",
				Help: "Total number of compensated (rolled back) executions",
			},
		),

		riskScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "saturn_risk_score",
				Help:    "Distribution of computed risk scores",
				Buckets: prometheus.LinearBuckets(0, 10, 11), // 0-100 in tens
			},
		),

		pendingApprovals: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "saturn_pending_approvals",
				Help: "Current number of items awaiting batched review",
			},
		),

		pendingEscalations: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "saturn_pending_escalations",
				Help: "Current number of actions awaiting synchronous attention",
			},
		),

		processDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "saturn_process_duration_seconds",
				Help:    "Duration of full intake-to-outcome passes",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
			},
		),
	}
}

// RecordRouted records a routing decision and its risk score.
func (m *Metrics) RecordRouted(route string, score int) {
	if m == nil {
		return
	}
	m.actionsRouted.WithLabelValues(route).Inc()
	m.riskScore.Observe(float64(score))
}

// RecordExecution records an execution's final outcome.
func (m *Metrics) RecordExecution(outcome string) {
	if m == nil {
		return
	}
	m.executions.WithLabelValues(outcome).Inc()
}

// RecordRollback records a compensated execution.
func (m *Metrics) RecordRollback() {
	if m == nil {
		return
	}
	m.rollbacks.Inc()
}

// UpdatePending updates the pending gauges.
func (m *Metrics) UpdatePending(approvals, escalations int) {
	if m == nil {
		return
	}
	m.pendingApprovals.Set(float64(approvals))
	m.pendingEscalations.Set(float64(escalations))
}

// RecordProcessDuration records one intake-to-outcome pass.
func (m *Metrics) RecordProcessDuration(seconds float64) {
	if m == nil {
		return
	}
	m.processDuration.Observe(seconds)
}
