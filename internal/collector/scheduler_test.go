package collector

import (
	"testing"
	"time"
)

func TestSchedulerFiresOnInterval(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	s := NewScheduler(15*time.Minute, clock)

	if s.Due() {
		t.Error("due immediately after creation")
	}

	now = now.Add(10 * time.Minute)
	if s.Due() {
		t.Error("due before the interval elapsed")
	}

	now = now.Add(5 * time.Minute)
	if !s.Due() {
		t.Error("not due at the interval")
	}
	if s.Due() {
		t.Error("due twice without the clock advancing")
	}

	now = now.Add(16 * time.Minute)
	if !s.Due() {
		t.Error("not due after another interval")
	}
}

func TestSchedulerDefaultsToWallClock(t *testing.T) {
	s := NewScheduler(time.Hour, nil)
	if s.Due() {
		t.Error("a fresh hourly scheduler should not be due")
	}
}
