package collector

import (
	"context"
	"time"
)

// schedulerTick is how often the continuous loop wakes up to consult the
// scheduler; the collection interval itself is usually much larger.
const schedulerTick = time.Minute

// Scheduler owns the next-fire-time for periodic collection. It is driven by
// an injected clock so the firing logic can be tested without waiting.
type Scheduler struct {
	interval time.Duration
	now      func() time.Time
	next     time.Time
}

func NewScheduler(interval time.Duration, now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		interval: interval,
		now:      now,
		next:     now().Add(interval),
	}
}

// Due reports whether the next fire time has been reached and, when it has,
// advances it by one interval.
func (s *Scheduler) Due() bool {
	if s.now().Before(s.next) {
		return false
	}
	s.next = s.now().Add(s.interval)
	return true
}

// RunContinuous runs one collection pass immediately, then another every
// interval until the context is cancelled. A failed pass is logged and the
// loop keeps going.
func (c *Collector) RunContinuous(ctx context.Context, interval time.Duration) {
	c.log.WithField("interval", interval).Info("starting continuous collection")

	if _, err := c.CollectOnce(ctx); err != nil {
		c.log.WithError(err).Error("collection pass failed")
	}

	sched := NewScheduler(interval, time.Now)
	ticker := time.NewTicker(schedulerTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("continuous collection stopped")
			return
		case <-ticker.C:
			if !sched.Due() {
				continue
			}
			if _, err := c.CollectOnce(ctx); err != nil {
				c.log.WithError(err).Error("collection pass failed")
			}
		}
	}
}
