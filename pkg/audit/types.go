package audit

import (
	"time"

	"meridian-hq/saturn/pkg/action"
)

// DefaultCapacity is the default ring buffer size.
const DefaultCapacity = 10000

// Entry records the outcome of one attempted action.
type Entry struct {
	// ID uniquely identifies the entry.
	ID string

	// ActionID is the id of the recorded action.
	ActionID string

	// ActionType is the action's namespaced type string.
	ActionType string

	// Engine names the upstream producer.
	Engine string

	// Route is the route the action was given at decision time.
	Route action.Route

	// Approver records who approved the action, if anyone.
	Approver action.ApproverKind

	// Outcome is the action status being recorded.
	Outcome action.Status

	// Cost is the spend attributed to the action.
	Cost float64

	// Revenue is the income attributed to the action.
	Revenue float64

	// Error carries the failure message for failed outcomes.
	Error string

	// Feedback is reviewer commentary, attachable after the fact.
	Feedback string

	// Timestamp is when the entry was logged.
	Timestamp time.Time
}

// Filter selects entries. All set predicates are ANDed.
type Filter struct {
	// Since keeps entries at or after this time.
	Since *time.Time

	// Until keeps entries at or before this time.
	Until *time.Time

	// Engine keeps entries from this producer.
	Engine string

	// Route keeps entries with this route.
	Route action.Route

	// Outcome keeps entries with this outcome.
	Outcome action.Status

	// Limit caps the number of returned entries; zero means no cap.
	Limit int
}

// Summary aggregates the ledger over a time range.
type Summary struct {
	// Total is the number of entries aggregated.
	Total int

	// ByRoute counts entries per route.
	ByRoute map[action.Route]int

	// ByOutcome counts entries per outcome.
	ByOutcome map[action.Status]int

	// ByEngine counts entries per producing engine.
	ByEngine map[string]int

	// TotalCost sums costs across entries.
	TotalCost float64

	// TotalRevenue sums revenue across entries.
	TotalRevenue float64

	// SuccessRate is executed / (executed + failed + rolled_back),
	// 0 when nothing ran.
	SuccessRate float64

	// Since is the lower bound of the aggregation, if any.
	Since *time.Time
}

// DailySummary is the day's activity remapped for reporting.
type DailySummary struct {
	// AutoExecuted counts actions that ran without a human.
	AutoExecuted int

	// Queued counts actions sent to batched review.
	Queued int

	// Escalated counts actions that demanded synchronous attention.
	Escalated int

	// Cost is the day's total spend.
	Cost float64

	// Revenue is the day's total income.
	Revenue float64
}
