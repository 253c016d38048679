package store

import "time"

// Reminder is the persisted record of a scheduled reminder. Firing happens
// in-process; rows exist so the operator can audit what was requested.
// One row per (user, event): a superseding request replaces the old one.
type Reminder struct {
	ID        int64
	UserID    string
	EventID   string
	RemindAt  time.Time
	CreatedAt time.Time
}
