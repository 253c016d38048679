// Package reminder schedules one-shot per-user event reminders with
// explicit cancellation: a superseding request for the same (user, event)
// pair replaces the pending timer instead of stacking a second one.
package reminder

import (
	"errors"
	"sync"
	"time"

	"gitea.jw6.us/james/coursebot/internal/metrics"
	"gitea.jw6.us/james/coursebot/internal/schedule"
)

// ErrPast is returned when the requested reminder instant is not in the
// future.
var ErrPast = errors.New("reminder: requested time is in the past")

// NotifyFunc delivers a fired reminder to the user.
type NotifyFunc func(userID string, ev schedule.Event)

type key struct {
	userID  string
	eventID string
}

// Scheduler owns the pending timers. Safe for concurrent use.
type Scheduler struct {
	notify NotifyFunc

	mu     sync.Mutex
	timers map[key]*time.Timer
}

func NewScheduler(notify NotifyFunc) *Scheduler {
	return &Scheduler{notify: notify, timers: make(map[key]*time.Timer)}
}

// Schedule arms a reminder for the event at the given instant, cancelling
// any pending reminder for the same (user, event) pair.
func (s *Scheduler) Schedule(userID string, ev schedule.Event, at time.Time) error {
	d := time.Until(at)
	if d <= 0 {
		return ErrPast
	}

	k := key{userID: userID, eventID: ev.EventID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[k]; ok {
		t.Stop()
		metrics.IncReminder("cancelled")
	}
	s.timers[k] = time.AfterFunc(d, func() { s.fire(k, ev) })
	metrics.IncReminder("scheduled")
	return nil
}

// Cancel stops a pending reminder. It reports whether one was pending.
func (s *Scheduler) Cancel(userID, eventID string) bool {
	k := key{userID: userID, eventID: eventID}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[k]
	if !ok {
		return false
	}
	t.Stop()
	delete(s.timers, k)
	metrics.IncReminder("cancelled")
	return true
}

// Stop cancels every pending reminder; used at shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, t := range s.timers {
		t.Stop()
		delete(s.timers, k)
	}
}

func (s *Scheduler) fire(k key, ev schedule.Event) {
	s.mu.Lock()
	delete(s.timers, k)
	s.mu.Unlock()

	metrics.IncReminder("fired")
	s.notify(k.userID, ev)
}
