package approval

import (
	"time"

	"meridian-hq/saturn/pkg/action"
)

// Recommendation is the queue's advisory verdict on an item.
type Recommendation string

const (
	// RecommendApprove suggests the reviewer approve.
	RecommendApprove Recommendation = "approve"

	// RecommendReview suggests a careful look before deciding.
	RecommendReview Recommendation = "review"

	// RecommendReject suggests the reviewer reject.
	RecommendReject Recommendation = "reject"
)

// Urgency ranks how quickly an item should be looked at.
type Urgency string

const (
	// UrgencyNormal items wait for the next batch.
	UrgencyNormal Urgency = "normal"

	// UrgencyHigh items expire after four hours.
	UrgencyHigh Urgency = "high"

	// UrgencyCritical items expire after one hour.
	UrgencyCritical Urgency = "critical"
)

// ItemStatus is the review state of a queue item.
type ItemStatus string

const (
	// ItemPending awaits a decision.
	ItemPending ItemStatus = "pending"

	// ItemApproved was approved by a reviewer.
	ItemApproved ItemStatus = "approved"

	// ItemRejected was rejected by a reviewer.
	ItemRejected ItemStatus = "rejected"
)

// Item wraps a pending action with review metadata.
type Item struct {
	// Action is the wrapped action.
	Action *action.Action

	// Recommendation is the queue's advisory verdict.
	Recommendation Recommendation

	// Confidence is how sure the queue is of its recommendation, 0-1.
	Confidence float64

	// Urgency ranks review priority and drives ExpiresAt.
	Urgency Urgency

	// AddedAt is when the item entered the queue.
	AddedAt time.Time

	// ExpiresAt is the advisory expiry; nil for normal urgency. The
	// queue never sweeps expired items.
	ExpiresAt *time.Time

	// Status is the review state.
	Status ItemStatus
}

// Expired reports whether the item's advisory expiry has passed.
func (i *Item) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

// Batch is a snapshot of every pending item, grouped for review.
type Batch struct {
	// Items holds every pending item, newest last.
	Items []*Item

	// ByEngine groups pending items by producing engine.
	ByEngine map[string][]*Item

	// ByRisk groups pending items by risk level.
	ByRisk map[action.RiskLevel][]*Item

	// TotalEstimatedCost sums the estimated cost of every item.
	TotalEstimatedCost float64

	// Expired counts items whose advisory expiry has passed.
	Expired int

	// GeneratedAt is when the snapshot was taken.
	GeneratedAt time.Time
}
