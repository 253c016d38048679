package store

import (
	"context"
	"sync"

	"gitea.jw6.us/james/coursebot/internal/schedule"
)

// MemoryEvents is an in-memory EventRepository with the same
// replace-by-key semantics as the PostgreSQL implementation.
type MemoryEvents struct {
	mu     sync.Mutex
	events map[string]schedule.Event
}

func NewMemoryEvents() *MemoryEvents {
	return &MemoryEvents{events: make(map[string]schedule.Event)}
}

func (m *MemoryEvents) Upsert(_ context.Context, ev schedule.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[ev.EventID] = ev
	return nil
}

// Get returns the stored copy for an event id.
func (m *MemoryEvents) Get(eventID string) (schedule.Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[eventID]
	return ev, ok
}

// Len reports the number of stored events.
func (m *MemoryEvents) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// MemoryReminders is an in-memory ReminderRepository.
type MemoryReminders struct {
	mu        sync.Mutex
	reminders map[[2]string]Reminder
}

func NewMemoryReminders() *MemoryReminders {
	return &MemoryReminders{reminders: make(map[[2]string]Reminder)}
}

func (m *MemoryReminders) Record(_ context.Context, rem Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminders[[2]string{rem.UserID, rem.EventID}] = rem
	return nil
}

func (m *MemoryReminders) Delete(_ context.Context, userID, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reminders, [2]string{userID, eventID})
	return nil
}

// Get returns the stored reminder for a (user, event) pair.
func (m *MemoryReminders) Get(userID, eventID string) (Reminder, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rem, ok := m.reminders[[2]string{userID, eventID}]
	return rem, ok
}
