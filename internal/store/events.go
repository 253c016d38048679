package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"gitea.jw6.us/james/coursebot/internal/schedule"
)

// eventRepo implements EventRepository over PostgreSQL.
type eventRepo struct {
	pool *pgxpool.Pool
}

func (r *eventRepo) Upsert(ctx context.Context, ev schedule.Event) error {
	defer observeDB("db.events.upsert")()

	const q = `
		INSERT INTO events (event_id, course_id, instructor, event_date, start_time, end_time, location, location_type, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (event_id)
		DO UPDATE SET
			course_id = EXCLUDED.course_id,
			instructor = EXCLUDED.instructor,
			event_date = EXCLUDED.event_date,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			location = EXCLUDED.location,
			location_type = EXCLUDED.location_type,
			fetched_at = NOW()
	`
	_, err := r.pool.Exec(ctx, q,
		ev.EventID, ev.CourseID, ev.Instructor, ev.Date, ev.Start, ev.End, ev.Location, string(ev.LocationType))
	if err != nil {
		return fmt.Errorf("upsert event %s: %w", ev.EventID, err)
	}
	return nil
}

// reminderRepo implements ReminderRepository over PostgreSQL.
type reminderRepo struct {
	pool *pgxpool.Pool
}

func (r *reminderRepo) Record(ctx context.Context, rem Reminder) error {
	defer observeDB("db.reminders.record")()

	const q = `
		INSERT INTO reminders (user_id, event_id, remind_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, event_id)
		DO UPDATE SET remind_at = EXCLUDED.remind_at, created_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, q, rem.UserID, rem.EventID, rem.RemindAt); err != nil {
		return fmt.Errorf("record reminder for %s/%s: %w", rem.UserID, rem.EventID, err)
	}
	return nil
}

func (r *reminderRepo) Delete(ctx context.Context, userID, eventID string) error {
	defer observeDB("db.reminders.delete")()

	const q = `DELETE FROM reminders WHERE user_id = $1 AND event_id = $2`
	if _, err := r.pool.Exec(ctx, q, userID, eventID); err != nil {
		return fmt.Errorf("delete reminder for %s/%s: %w", userID, eventID, err)
	}
	return nil
}
