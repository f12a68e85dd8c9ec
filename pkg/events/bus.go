package events

import (
	"log/slog"
	"sync"
	"time"

	"meridian-hq/saturn/pkg/action"
)

// Type identifies the kind of event being published.
type Type string

const (
	// TypeAutoExecuted is emitted when the router approves an action
	// for immediate execution.
	TypeAutoExecuted Type = "auto_executed"

	// TypeQueued is emitted when the router sends an action to the
	// approval queue.
	TypeQueued Type = "queued"

	// TypeEscalated is emitted when an action requires synchronous
	// human attention.
	TypeEscalated Type = "escalated"

	// TypeApproved is emitted when a human approves an action.
	TypeApproved Type = "approved"

	// TypeRejected is emitted when a human rejects an action.
	TypeRejected Type = "rejected"

	// TypeExecuted is emitted after a successful handler run.
	TypeExecuted Type = "executed"

	// TypeFailed is emitted after a failed handler run.
	TypeFailed Type = "failed"

	// TypeRolledBack is emitted after a failed run was compensated.
	TypeRolledBack Type = "rolled_back"

	// TypeItemAdded is emitted when an item enters the approval queue.
	TypeItemAdded Type = "approval_item_added"

	// TypeBatchReady is emitted when the periodic batch timer fires
	// with at least one pending approval item.
	TypeBatchReady Type = "approval_batch_ready"

	// TypeDailySummary is emitted when the daily audit summary is ready.
	TypeDailySummary Type = "daily_summary_ready"
)

// Event is a single published occurrence. Events carry the full Action
// where one is involved, and an Error string where applicable.
type Event struct {
	// Type is the event kind.
	Type Type

	// Time is when the event was published.
	Time time.Time

	// Action is the action involved, if any.
	Action *action.Action

	// Error carries the failure message for TypeFailed events.
	Error string

	// Payload carries event-specific extras (formatted summaries,
	// batch contents, aggregate numbers).
	Payload map[string]interface{}
}

// Subscriber receives every published event.
type Subscriber interface {
	HandleEvent(evt Event)
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc func(evt Event)

// HandleEvent calls the wrapped function.
func (f SubscriberFunc) HandleEvent(evt Event) {
	f(evt)
}

// Bus fans events out to subscribers. Publishing never fails: each
// subscriber is dispatched under its own recover so one bad subscriber
// cannot take down the publisher or starve its peers.
type Bus struct {
	mu     sync.RWMutex
	subs   []Subscriber
	logger *slog.Logger
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{
		logger: slog.Default().With("component", "events.bus"),
	}
}

// Subscribe registers a subscriber for all events.
func (b *Bus) Subscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, sub)
}

// SubscribeFunc registers a plain function as a subscriber.
func (b *Bus) SubscribeFunc(fn func(evt Event)) {
	b.Subscribe(SubscriberFunc(fn))
}

// Publish delivers the event to every subscriber in registration order.
func (b *Bus) Publish(evt Event) {
	if evt.Time.IsZero() {
		evt.Time = time.Now()
	}

	b.mu.RLock()
	subs := make([]Subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, sub := range subs {
		b.dispatch(sub, evt)
	}
}

// dispatch delivers to one subscriber, containing panics.
func (b *Bus) dispatch(sub Subscriber, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("subscriber panicked during event dispatch",
				"event_type", string(evt.Type),
				"panic", r,
			)
		}
	}()

	sub.HandleEvent(evt)
}
