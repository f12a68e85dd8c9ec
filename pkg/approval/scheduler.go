package approval

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"meridian-hq/saturn/pkg/events"
)

// DefaultBatchInterval is how often the batch timer fires.
const DefaultBatchInterval = 4 * time.Hour

// BatchScheduler periodically emits a "batch ready" event with every
// pending approval item. The timer is stoppable and non-reentrant: a
// fire that overlaps a still-running one is skipped, and the emission
// is fire-and-forget with respect to notification delivery.
type BatchScheduler struct {
	queue    *Queue
	bus      *events.Bus
	interval time.Duration
	cron     *cron.Cron
	firing   atomic.Bool
	mu       sync.Mutex
	running  bool
	logger   *slog.Logger
}

// NewBatchScheduler creates a scheduler over the given queue. A zero
// interval means DefaultBatchInterval.
func NewBatchScheduler(queue *Queue, bus *events.Bus, interval time.Duration) *BatchScheduler {
	if interval <= 0 {
		interval = DefaultBatchInterval
	}
	return &BatchScheduler{
		queue:    queue,
		bus:      bus,
		interval: interval,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "approval.scheduler"),
	}
}

// Start begins the periodic batch emission. The scheduler stops when
// the context is cancelled or Stop is called.
func (s *BatchScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("batch scheduler already running")
	}

	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, s.fire); err != nil {
		return fmt.Errorf("failed to schedule batch emission: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("approval batch scheduler started", "interval", s.interval.String())

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// fire snapshots the queue and emits a batch-ready event when at least
// one item is pending. Overlapping fires are skipped.
func (s *BatchScheduler) fire() {
	if !s.firing.CompareAndSwap(false, true) {
		s.logger.Warn("skipping overlapping batch emission")
		return
	}
	defer s.firing.Store(false)

	batch := s.queue.Snapshot()
	if len(batch.Items) == 0 {
		s.logger.Debug("batch timer fired, nothing pending")
		return
	}

	s.logger.Info("approval batch ready",
		"items", len(batch.Items),
		"engines", len(batch.ByEngine),
		"total_estimated_cost", batch.TotalEstimatedCost,
		"expired", batch.Expired,
	)

	s.bus.Publish(events.Event{
		Type: events.TypeBatchReady,
		Payload: map[string]interface{}{
			"batch": batch,
		},
	})
}

// Fire triggers one emission immediately, outside the schedule. Used
// by callers that want an on-demand batch (and by tests).
func (s *BatchScheduler) Fire() {
	s.fire()
}

// Stop halts the timer and waits for a running fire to finish.
func (s *BatchScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info("approval batch scheduler stopped")
}

// IsRunning reports whether the scheduler is active.
func (s *BatchScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
