package approval

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"meridian-hq/saturn/pkg/action"
	"meridian-hq/saturn/pkg/clock"
	"meridian-hq/saturn/pkg/events"
)

// Queue is the pending set of actions awaiting batched human review.
type Queue struct {
	mu     sync.Mutex
	items  map[string]*Item
	bus    *events.Bus
	clock  clock.Clock
	logger *slog.Logger
}

// NewQueue creates an empty approval queue.
func NewQueue(bus *events.Bus, clk clock.Clock) *Queue {
	if clk == nil {
		clk = clock.System()
	}
	return &Queue{
		items:  make(map[string]*Item),
		bus:    bus,
		clock:  clk,
		logger: slog.Default().With("component", "approval.queue"),
	}
}

// Add wraps the action in an Item, computes its recommendation,
// confidence, urgency and expiry, and emits an "item added" event.
func (q *Queue) Add(a *action.Action) *Item {
	now := q.clock.Now()

	item := &Item{
		Action:  a,
		AddedAt: now,
		Status:  ItemPending,
	}
	item.Recommendation, item.Confidence = recommend(a)
	item.Urgency = urgencyFor(a)

	switch item.Urgency {
	case UrgencyCritical:
		expiry := now.Add(time.Hour)
		item.ExpiresAt = &expiry
	case UrgencyHigh:
		expiry := now.Add(4 * time.Hour)
		item.ExpiresAt = &expiry
	}

	q.mu.Lock()
	q.items[a.ID] = item
	pending := q.pendingLocked()
	q.mu.Unlock()

	q.logger.Info("approval item added",
		"action_id", a.ID,
		"action_type", a.Type,
		"recommendation", string(item.Recommendation),
		"urgency", string(item.Urgency),
		"pending", len(pending),
	)

	q.bus.Publish(events.Event{
		Type:   events.TypeItemAdded,
		Action: a,
		Payload: map[string]interface{}{
			"recommendation": string(item.Recommendation),
			"confidence":     item.Confidence,
			"urgency":        string(item.Urgency),
		},
	})

	return item
}

// Approve marks the item approved and stamps the action. Unknown or
// already processed ids are idempotent no-ops returning false.
func (q *Queue) Approve(id, feedback string) (*action.Action, bool) {
	return q.decide(id, feedback, true)
}

// Reject marks the item rejected and stamps the action. Unknown or
// already processed ids are idempotent no-ops returning false.
func (q *Queue) Reject(id, feedback string) (*action.Action, bool) {
	return q.decide(id, feedback, false)
}

func (q *Queue) decide(id, feedback string, approved bool) (*action.Action, bool) {
	q.mu.Lock()
	item, ok := q.items[id]
	if !ok || item.Status != ItemPending {
		q.mu.Unlock()
		q.logger.Debug("decision for unknown or processed item", "action_id", id)
		return nil, false
	}

	now := q.clock.Now()
	a := item.Action
	a.Feedback = feedback
	a.Approver = action.ApproverHuman
	if approved {
		item.Status = ItemApproved
		a.Transition(action.StatusApproved, now)
	} else {
		item.Status = ItemRejected
		a.Transition(action.StatusRejected, now)
	}
	q.mu.Unlock()

	if approved {
		q.bus.Publish(events.Event{Type: events.TypeApproved, Action: a})
	} else {
		q.bus.Publish(events.Event{Type: events.TypeRejected, Action: a})
	}

	return a, true
}

// ApproveAll re-invokes Approve for every id, returning the ids that
// actually transitioned. There is no special bulk path.
func (q *Queue) ApproveAll(ids []string, feedback string) []string {
	var done []string
	for _, id := range ids {
		if _, ok := q.Approve(id, feedback); ok {
			done = append(done, id)
		}
	}
	return done
}

// RejectAll re-invokes Reject for every id, returning the ids that
// actually transitioned.
func (q *Queue) RejectAll(ids []string, feedback string) []string {
	var done []string
	for _, id := range ids {
		if _, ok := q.Reject(id, feedback); ok {
			done = append(done, id)
		}
	}
	return done
}

// Get returns the item for an action id.
func (q *Queue) Get(id string) (*Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	item, ok := q.items[id]
	return item, ok
}

// Pending returns the pending items sorted by when they were added.
func (q *Queue) Pending() []*Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pendingLocked()
}

func (q *Queue) pendingLocked() []*Item {
	var pending []*Item
	for _, item := range q.items {
		if item.Status == ItemPending {
			pending = append(pending, item)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].AddedAt.Before(pending[j].AddedAt)
	})
	return pending
}

// ClearProcessed removes every non-pending item and returns how many
// were removed. Callers must invoke this periodically or the map
// grows without bound.
func (q *Queue) ClearProcessed() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	removed := 0
	for id, item := range q.items {
		if item.Status != ItemPending {
			delete(q.items, id)
			removed++
		}
	}
	return removed
}

// Snapshot builds a Batch of every pending item grouped by engine and
// risk with the aggregate estimated cost.
func (q *Queue) Snapshot() *Batch {
	now := q.clock.Now()
	pending := q.Pending()

	batch := &Batch{
		Items:       pending,
		ByEngine:    make(map[string][]*Item),
		ByRisk:      make(map[action.RiskLevel][]*Item),
		GeneratedAt: now,
	}

	for _, item := range pending {
		batch.ByEngine[item.Action.Engine] = append(batch.ByEngine[item.Action.Engine], item)
		level := action.RiskSafe
		if item.Action.Risk != nil {
			level = item.Action.Risk.Level
			batch.TotalEstimatedCost += item.Action.Risk.EstimatedCost
		}
		batch.ByRisk[level] = append(batch.ByRisk[level], item)
		if item.Expired(now) {
			batch.Expired++
		}
	}

	return batch
}

// recommend derives the advisory verdict from the routing-time risk
// assessment and boundary outcome.
func recommend(a *action.Action) (Recommendation, float64) {
	if a.Risk == nil {
		return RecommendReview, 0.5
	}
	switch a.Risk.Level {
	case action.RiskSafe:
		return RecommendApprove, 0.9
	case action.RiskModerate:
		return RecommendApprove, 0.7
	case action.RiskHigh:
		return RecommendReview, 0.6
	default:
		return RecommendReject, 0.9
	}
}

// urgencyFor derives review urgency from the risk level.
func urgencyFor(a *action.Action) Urgency {
	if a.Risk == nil {
		return UrgencyNormal
	}
	switch a.Risk.Level {
	case action.RiskCritical:
		return UrgencyCritical
	case action.RiskHigh:
		return UrgencyHigh
	default:
		return UrgencyNormal
	}
}
