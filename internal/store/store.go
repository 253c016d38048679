// Package store provides PostgreSQL-backed persistence for fetched events
// and reminder records, with an in-memory variant for dev mode and tests.
package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store aggregates repositories backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool

	Events    EventRepository
	Reminders ReminderRepository
}

// New wires concrete repository implementations with a shared connection
// pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:      pool,
		Events:    &eventRepo{pool: pool},
		Reminders: &reminderRepo{pool: pool},
	}
}

// NewMemory builds a store with in-memory repositories, used in dev mode
// when no database is configured.
func NewMemory() *Store {
	return &Store{
		Events:    NewMemoryEvents(),
		Reminders: NewMemoryReminders(),
	}
}

// HealthCheck verifies that the underlying database is reachable. The
// in-memory store is always healthy.
func (s *Store) HealthCheck(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	defer observeDB("db.healthcheck")()
	return s.pool.Ping(ctx)
}
