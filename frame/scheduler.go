package frame

import (
	"context"
	"time"
)

// Handle identifies a scheduled callback.
type Handle uint64

// Scheduler runs a callback at the next display frame.
type Scheduler interface {
	ScheduleNext(fn func()) Handle
	Cancel(h Handle)
}

// ManualScheduler holds at most one pending callback and runs it when Step
// is called. Hosts with their own frame loop call Step once per frame; Run
// drives it from a ticker instead.
type ManualScheduler struct {
	pending func()
	handle  Handle
	steps   int64
}

var _ Scheduler = (*ManualScheduler)(nil)

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// ScheduleNext replaces any pending callback with fn.
func (s *ManualScheduler) ScheduleNext(fn func()) Handle {
	s.handle++
	s.pending = fn
	return s.handle
}

// Cancel drops the pending callback if h still refers to it.
func (s *ManualScheduler) Cancel(h Handle) {
	if h == s.handle {
		s.pending = nil
	}
}

// Pending reports whether a callback is waiting.
func (s *ManualScheduler) Pending() bool {
	return s.pending != nil
}

// Steps returns the number of callbacks run so far.
func (s *ManualScheduler) Steps() int64 {
	return s.steps
}

// Step runs the pending callback, if any, and reports whether one ran.
func (s *ManualScheduler) Step() bool {
	fn := s.pending
	if fn == nil {
		return false
	}
	s.pending = nil
	s.steps++
	fn()
	return true
}

// Run steps at the given interval until nothing is pending or the context is
// cancelled. A zero interval steps as fast as callbacks are scheduled.
func (s *ManualScheduler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !s.Step() {
				return nil
			}
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !s.Step() {
				return nil
			}
		}
	}
}
