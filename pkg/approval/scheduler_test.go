package approval

import (
	"context"
	"testing"
	"time"

	"meridian-hq/saturn/pkg/action"
	"meridian-hq/saturn/pkg/clock"
	"meridian-hq/saturn/pkg/events"
)

func TestBatchScheduler_FireEmitsBatchReady(t *testing.T) {
	bus := events.NewBus()
	queue := NewQueue(bus, clock.NewFake(queueTime))
	scheduler := NewBatchScheduler(queue, bus, time.Hour)

	var got []events.Event
	bus.SubscribeFunc(func(evt events.Event) {
		if evt.Type == events.TypeBatchReady {
			got = append(got, evt)
		}
	})

	queue.Add(queuedAction("a1", action.RiskModerate))
	scheduler.Fire()

	if len(got) != 1 {
		t.Fatalf("Expected 1 batch ready event, got %d", len(got))
	}
	batch, ok := got[0].Payload["batch"].(*Batch)
	if !ok {
		t.Fatalf("Expected batch payload, got %T", got[0].Payload["batch"])
	}
	if len(batch.Items) != 1 {
		t.Errorf("Expected 1 item in batch, got %d", len(batch.Items))
	}
}

func TestBatchScheduler_EmptyQueueEmitsNothing(t *testing.T) {
	bus := events.NewBus()
	queue := NewQueue(bus, clock.NewFake(queueTime))
	scheduler := NewBatchScheduler(queue, bus, time.Hour)

	fired := 0
	bus.SubscribeFunc(func(evt events.Event) {
		if evt.Type == events.TypeBatchReady {
			fired++
		}
	})

	scheduler.Fire()

	if fired != 0 {
		t.Errorf("Expected no batch event for an empty queue, got %d", fired)
	}
}

func TestBatchScheduler_StartStop(t *testing.T) {
	bus := events.NewBus()
	queue := NewQueue(bus, clock.NewFake(queueTime))
	scheduler := NewBatchScheduler(queue, bus, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !scheduler.IsRunning() {
		t.Error("Expected scheduler running after Start")
	}
	if err := scheduler.Start(ctx); err == nil {
		t.Error("Expected second Start to fail")
	}

	scheduler.Stop()
	if scheduler.IsRunning() {
		t.Error("Expected scheduler stopped after Stop")
	}
	// Stop is idempotent.
	scheduler.Stop()
}

func TestBatchScheduler_DefaultInterval(t *testing.T) {
	bus := events.NewBus()
	queue := NewQueue(bus, clock.NewFake(queueTime))

	scheduler := NewBatchScheduler(queue, bus, 0)
	if scheduler.interval != DefaultBatchInterval {
		t.Errorf("Expected default interval %v, got %v", DefaultBatchInterval, scheduler.interval)
	}
}
