// internal/timer/timer.go
// Package timer provides a single-slot, cancel-and-rearm scheduled task
// on top of a pluggable scheduler.
package timer

import (
	"sync"
	"time"
)

// Task is a scheduled callback that can be cancelled.
type Task interface {
	// Stop cancels the task. It returns false if the task already ran
	// or was already stopped.
	Stop() bool
}

// Scheduler runs fn once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Task
}

// Wall schedules on the runtime timer. Callbacks run on their own goroutine.
type Wall struct{}

// AfterFunc implements Scheduler.
func (Wall) AfterFunc(d time.Duration, fn func()) Task {
	return time.AfterFunc(d, fn)
}

// Slot holds at most one pending task. Arm cancels the previous task
// before scheduling the next one. A callback that was superseded never
// runs its body, even when the scheduler had already fired it.
type Slot struct {
	sched Scheduler

	mu   sync.Mutex
	task Task
	gen  uint64
}

// NewSlot returns an empty slot on sched. A nil scheduler means Wall.
func NewSlot(sched Scheduler) *Slot {
	if sched == nil {
		sched = Wall{}
	}
	return &Slot{sched: sched}
}

// Arm cancels any pending task and schedules fn after d.
func (s *Slot) Arm(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.task != nil {
		s.task.Stop()
	}
	s.gen++
	gen := s.gen
	s.task = s.sched.AfterFunc(d, func() {
		if !s.claim(gen) {
			return
		}
		fn()
	})
}

// Cancel drops the pending task, if any.
func (s *Slot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.task != nil {
		s.task.Stop()
		s.task = nil
	}
	s.gen++
}

// Pending reports whether a task is armed and has not run yet.
func (s *Slot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task != nil
}

// claim marks the task of generation gen as fired. It fails when the
// slot has been re-armed or cancelled since.
func (s *Slot) claim(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.task = nil
	return true
}
