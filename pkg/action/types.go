package action

import (
	"time"
)

// Route represents the routing decision for an action.
type Route string

const (
	// RouteAuto executes the action immediately without human review.
	RouteAuto Route = "auto"

	// RouteQueue sends the action to the batched human review queue.
	RouteQueue Route = "queue"

	// RouteEscalate demands synchronous human attention before anything runs.
	RouteEscalate Route = "escalate"
)

// Status represents the lifecycle state of an action.
type Status string

const (
	// StatusPending means the action awaits a decision (routing or human).
	StatusPending Status = "pending"

	// StatusApproved means the action may be executed.
	StatusApproved Status = "approved"

	// StatusRejected means a human declined the action.
	StatusRejected Status = "rejected"

	// StatusExecuted means the handler ran and succeeded.
	StatusExecuted Status = "executed"

	// StatusFailed means the handler ran and failed.
	StatusFailed Status = "failed"

	// StatusRolledBack means a failed execution was compensated.
	StatusRolledBack Status = "rolled_back"
)

// ApproverKind identifies who (or what) approved an action.
type ApproverKind string

const (
	// ApproverAuto marks actions approved by the router itself.
	ApproverAuto ApproverKind = "auto"

	// ApproverHuman marks actions approved individually by a person.
	ApproverHuman ApproverKind = "human"

	// ApproverBatch marks actions approved through a batch review.
	ApproverBatch ApproverKind = "batch"
)

// RiskLevel buckets a numeric risk score into a named severity.
type RiskLevel string

const (
	// RiskSafe covers scores 0-24.
	RiskSafe RiskLevel = "safe"

	// RiskModerate covers scores 25-49.
	RiskModerate RiskLevel = "moderate"

	// RiskHigh covers scores 50-74.
	RiskHigh RiskLevel = "high"

	// RiskCritical covers scores 75-100.
	RiskCritical RiskLevel = "critical"
)

// LevelForScore maps a 0-100 score to a RiskLevel.
//
// Cutoffs are exclusive upper bounds: a score of exactly 25, 50 or 75
// lands in the higher bucket.
func LevelForScore(score int) RiskLevel {
	switch {
	case score < 25:
		return RiskSafe
	case score < 50:
		return RiskModerate
	case score < 75:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// RiskFactor is a single contributor to a risk assessment.
type RiskFactor struct {
	// Name identifies the factor (e.g. "financial_exposure").
	Name string

	// Weight is the factor's contribution weight, 0-1.
	Weight float64

	// Value is the observed magnitude for this factor.
	Value float64

	// Threshold is the magnitude at which the factor is considered exceeded.
	Threshold float64

	// Exceeded is true when Value is strictly above Threshold.
	Exceeded bool
}

// RiskAssessment is the classifier's verdict on a single action.
//
// Assessments are recomputed from scratch on every routing pass; they
// are never incrementally updated.
type RiskAssessment struct {
	// Level is the bucketed severity derived from Score.
	Level RiskLevel

	// Score is the weighted 0-100 risk score.
	Score int

	// Factors lists every matched factor in rule order.
	Factors []RiskFactor

	// EstimatedCost is the expected spend of executing the action.
	EstimatedCost float64

	// EstimatedMaxLoss is the worst-case loss if the action goes wrong.
	EstimatedMaxLoss float64

	// Reversible indicates a compensating action plausibly exists.
	Reversible bool

	// RollbackHint is an advisory, human-readable recovery suggestion.
	// It is never executed.
	RollbackHint string
}

// Action is a proposed autonomous action flowing through the pipeline.
type Action struct {
	// ID uniquely identifies the action.
	ID string

	// Engine names the upstream producer that proposed the action.
	Engine string

	// Type is a namespaced action type string (e.g. "trading:dca:buy").
	Type string

	// Description is a human-readable summary of the action.
	Description string

	// Params carries the opaque parameters the handler will receive.
	Params map[string]interface{}

	// Risk is set by the router on every routing pass.
	Risk *RiskAssessment

	// Route is the routing decision, set by the router.
	Route Route

	// Status is the current lifecycle state.
	Status Status

	// Approver records who approved the action, if anyone.
	Approver ApproverKind

	// Feedback carries the reviewer's comment from approval/rejection.
	Feedback string

	// Result holds the handler's return value after a successful run.
	Result interface{}

	// Error holds the handler's error message after a failed run.
	Error string

	// CreatedAt is when the action entered the pipeline.
	CreatedAt time.Time

	// UpdatedAt is bumped on every state transition.
	UpdatedAt time.Time
}

// Transition updates the action's status and bumps UpdatedAt.
func (a *Action) Transition(status Status, now time.Time) {
	a.Status = status
	a.UpdatedAt = now
}

// NumberParam returns the first numeric parameter found under the given
// keys. YAML and JSON decoders produce a mix of int, int64 and float64,
// so all three are accepted.
func (a *Action) NumberParam(keys ...string) (float64, bool) {
	for _, key := range keys {
		raw, ok := a.Params[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case float64:
			return v, true
		case float32:
			return float64(v), true
		case int:
			return float64(v), true
		case int64:
			return float64(v), true
		}
	}
	return 0, false
}

// StringParam returns the string parameter under the given key.
func (a *Action) StringParam(key string) (string, bool) {
	raw, ok := a.Params[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}
