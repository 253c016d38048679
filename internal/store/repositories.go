package store

import (
	"context"

	"gitea.jw6.us/james/coursebot/internal/schedule"
)

// EventRepository persists normalized events keyed by provider event id.
type EventRepository interface {
	// Upsert replaces the stored copy for the event's id. Each call is
	// independent; a failure for one event must not stop the batch.
	Upsert(ctx context.Context, ev schedule.Event) error
}

// ReminderRepository records scheduled reminders for auditing.
type ReminderRepository interface {
	// Record stores the reminder, replacing any pending one for the same
	// (user, event) pair.
	Record(ctx context.Context, rem Reminder) error
	// Delete removes the reminder for a (user, event) pair, if any.
	Delete(ctx context.Context, userID, eventID string) error
}
