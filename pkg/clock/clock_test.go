package clock

import (
	"testing"
	"time"
)

func TestSystem_Now(t *testing.T) {
	before := time.Now()
	got := System().Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("System().Now() = %v, expected between %v and %v", got, before, after)
	}
}

func TestFake_SetAndAdvance(t *testing.T) {
	start := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	fake := NewFake(start)

	if !fake.Now().Equal(start) {
		t.Errorf("Expected %v, got %v", start, fake.Now())
	}

	fake.Advance(25 * time.Hour)
	want := start.Add(25 * time.Hour)
	if !fake.Now().Equal(want) {
		t.Errorf("Expected %v after Advance, got %v", want, fake.Now())
	}

	reset := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	fake.Set(reset)
	if !fake.Now().Equal(reset) {
		t.Errorf("Expected %v after Set, got %v", reset, fake.Now())
	}
}
