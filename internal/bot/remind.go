package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gitea.jw6.us/james/coursebot/internal/reminder"
	"gitea.jw6.us/james/coursebot/internal/schedule"
	"gitea.jw6.us/james/coursebot/internal/store"
)

// ReminderScheduler arms one-shot reminders keyed by (user, event).
type ReminderScheduler interface {
	Schedule(userID string, ev schedule.Event, at time.Time) error
}

// RemindCommand schedules a DM reminder before an event from the user's
// most recent calendar fetch. Re-invoking for the same event replaces the
// pending reminder instead of stacking a second one.
type RemindCommand struct {
	cache     *FetchCache
	scheduler ReminderScheduler
	reminders store.ReminderRepository
	now       func() time.Time
}

func NewRemindCommand(cache *FetchCache, scheduler ReminderScheduler, reminders store.ReminderRepository) *RemindCommand {
	return &RemindCommand{cache: cache, scheduler: scheduler, reminders: reminders, now: time.Now}
}

// Execute schedules a reminder leadMinutes before event number eventNum
// (1-based, as displayed) from the user's last fetch.
func (c *RemindCommand) Execute(ctx context.Context, userID string, eventNum, leadMinutes int64, ui UI) {
	if leadMinutes < 1 {
		c.reply(ctx, ui.Reject, "Minutes must be at least 1.")
		return
	}

	events, ok := c.cache.Get(userID)
	if !ok || len(events) == 0 {
		c.reply(ctx, ui.Reject, "Fetch the calendar first with /calendar, then pick an event number.")
		return
	}
	if eventNum < 1 || eventNum > int64(len(events)) {
		c.reply(ctx, ui.Reject, fmt.Sprintf("Event number must be between 1 and %d.", len(events)))
		return
	}

	ev := events[eventNum-1]
	start, ok := ev.StartTime()
	if !ok {
		c.reply(ctx, ui.Reject, "That event has no usable start time.")
		return
	}

	at := start.Add(-time.Duration(leadMinutes) * time.Minute)
	if err := c.scheduler.Schedule(userID, ev, at); err != nil {
		if errors.Is(err, reminder.ErrPast) {
			c.reply(ctx, ui.Reject, "That reminder time has already passed.")
			return
		}
		log.Printf("remind: schedule for user %s: %v", userID, err)
		c.reply(ctx, ui.Notify, "Couldn't schedule the reminder. Please try again later.")
		return
	}

	if err := c.reminders.Record(ctx, store.Reminder{UserID: userID, EventID: ev.EventID, RemindAt: at}); err != nil {
		// Storage failures never block the user-facing flow.
		log.Printf("remind: record reminder for user %s: %v", userID, err)
	}

	label := ev.CourseID
	if label == "" {
		label = "the event"
	}
	c.reply(ctx, ui.Notify, fmt.Sprintf("Okay, I'll DM you %d minutes before %s on %s.", leadMinutes, label, ev.Date))
}

func (c *RemindCommand) reply(ctx context.Context, send func(context.Context, string) error, msg string) {
	if err := send(ctx, msg); err != nil {
		log.Printf("remind: send message: %v", err)
	}
}
