package audit

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"meridian-hq/saturn/pkg/action"
	"meridian-hq/saturn/pkg/clock"
)

// Logger is the bounded, append-only outcome ledger.
type Logger struct {
	mu       sync.RWMutex
	entries  []*Entry
	capacity int
	clock    clock.Clock
	logger   *slog.Logger

	// Async mirror to the optional sink.
	sink     Sink
	sinkChan chan *Entry
	done     chan struct{}
	wg       sync.WaitGroup
}

// LoggerOption customizes a Logger.
type LoggerOption func(*Logger)

// WithSink mirrors every logged entry to the sink asynchronously.
// Sink failures are logged and never fail Log.
func WithSink(sink Sink) LoggerOption {
	return func(l *Logger) {
		l.sink = sink
	}
}

// NewLogger creates a ledger with the given capacity (zero means
// DefaultCapacity).
func NewLogger(capacity int, clk clock.Clock, opts ...LoggerOption) *Logger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if clk == nil {
		clk = clock.System()
	}

	l := &Logger{
		capacity: capacity,
		clock:    clk,
		logger:   slog.Default().With("component", "audit.logger"),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.sink != nil {
		l.sinkChan = make(chan *Entry, 256)
		l.wg.Add(1)
		go l.drainSink()
	}

	return l
}

// Log appends an entry, filling its ID and timestamp, and trims the
// ring buffer from the front past capacity. The returned entry is the
// stored one.
func (l *Logger) Log(e *Entry) *Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = l.clock.Now()
	}

	l.mu.Lock()
	l.entries = append(l.entries, e)
	if excess := len(l.entries) - l.capacity; excess > 0 {
		l.entries = l.entries[excess:]
	}
	l.mu.Unlock()

	if l.sinkChan != nil {
		entryCopy := *e
		select {
		case l.sinkChan <- &entryCopy:
		default:
			l.logger.Warn("audit sink buffer full, dropping mirror write",
				"entry_id", e.ID,
			)
		}
	}

	return e
}

// RecordAction builds and logs an entry from an action's current
// state, using the route the action held at decision time.
func (l *Logger) RecordAction(a *action.Action, route action.Route, cost, revenue float64) *Entry {
	return l.Log(&Entry{
		ActionID:   a.ID,
		ActionType: a.Type,
		Engine:     a.Engine,
		Route:      route,
		Approver:   a.Approver,
		Outcome:    a.Status,
		Cost:       cost,
		Revenue:    revenue,
		Error:      a.Error,
		Feedback:   a.Feedback,
	})
}

// Entries returns entries matching the filter, newest first. A nil
// filter returns everything.
func (l *Logger) Entries(f *Filter) []*Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*Entry
	// Stored oldest-to-newest; walk backwards for newest-first.
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if f != nil && !matches(e, f) {
			continue
		}
		out = append(out, e)
		if f != nil && f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out
}

// Len returns the number of entries currently held.
func (l *Logger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Summary aggregates entries at or after since (all entries when nil).
func (l *Logger) Summary(since *time.Time) *Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := &Summary{
		ByRoute:   make(map[action.Route]int),
		ByOutcome: make(map[action.Status]int),
		ByEngine:  make(map[string]int),
		Since:     since,
	}

	var executed, failedOrRolledBack int
	for _, e := range l.entries {
		if since != nil && e.Timestamp.Before(*since) {
			continue
		}
		s.Total++
		s.ByRoute[e.Route]++
		s.ByOutcome[e.Outcome]++
		s.ByEngine[e.Engine]++
		s.TotalCost += e.Cost
		s.TotalRevenue += e.Revenue

		switch e.Outcome {
		case action.StatusExecuted:
			executed++
		case action.StatusFailed, action.StatusRolledBack:
			failedOrRolledBack++
		}
	}

	if executed+failedOrRolledBack > 0 {
		s.SuccessRate = float64(executed) / float64(executed+failedOrRolledBack)
	}
	return s
}

// DailySummary aggregates since the start of the current UTC day and
// remaps the result for reporting.
func (l *Logger) DailySummary() *DailySummary {
	now := l.clock.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	s := l.Summary(&startOfDay)

	return &DailySummary{
		AutoExecuted: s.ByRoute[action.RouteAuto],
		Queued:       s.ByRoute[action.RouteQueue],
		Escalated:    s.ByRoute[action.RouteEscalate],
		Cost:         s.TotalCost,
		Revenue:      s.TotalRevenue,
	}
}

// AddFeedback attaches feedback to the most recent entry for the
// action id, in place. Returns false when no entry is found.
func (l *Logger) AddFeedback(actionID, feedback string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].ActionID == actionID {
			l.entries[i].Feedback = feedback
			return true
		}
	}
	return false
}

// Close stops the async sink worker and closes the sink.
func (l *Logger) Close() error {
	if l.sinkChan == nil {
		return nil
	}
	close(l.done)
	l.wg.Wait()
	return l.sink.Close()
}

// drainSink mirrors entries to the sink until Close.
func (l *Logger) drainSink() {
	defer l.wg.Done()
	for {
		select {
		case e := <-l.sinkChan:
			if err := l.sink.Store(e); err != nil {
				l.logger.Warn("audit sink write failed",
					"entry_id", e.ID,
					"error", err,
				)
			}
		case <-l.done:
			// Drain what is left before exiting.
			for {
				select {
				case e := <-l.sinkChan:
					if err := l.sink.Store(e); err != nil {
						l.logger.Warn("audit sink write failed",
							"entry_id", e.ID,
							"error", err,
						)
					}
				default:
					return
				}
			}
		}
	}
}

// matches applies the filter predicates, ANDed.
func matches(e *Entry, f *Filter) bool {
	if f.Since != nil && e.Timestamp.Before(*f.Since) {
		return false
	}
	if f.Until != nil && e.Timestamp.After(*f.Until) {
		return false
	}
	if f.Engine != "" && e.Engine != f.Engine {
		return false
	}
	if f.Route != "" && e.Route != f.Route {
		return false
	}
	if f.Outcome != "" && e.Outcome != f.Outcome {
		return false
	}
	return true
}
