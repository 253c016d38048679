// Package bot implements the chat command suite: the calendar fetch,
// filter, and paging flow, the reminder command, and the Discord adapter
// that binds them to the chat client.
package bot

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"gitea.jw6.us/james/coursebot/internal/metrics"
	"gitea.jw6.us/james/coursebot/internal/schedule"
	"gitea.jw6.us/james/coursebot/internal/store"
)

const (
	pageSize       = 3
	fetchWindow    = 10 * 24 * time.Hour
	sessionTimeout = 5 * time.Minute
)

// EventSource lists raw events from the calendar provider.
type EventSource interface {
	ListWindow(ctx context.Context, from time.Time, window time.Duration) ([]schedule.RawEvent, error)
}

// UI is the slice of the chat client one command invocation needs.
type UI interface {
	// Reject reports a validation or precondition failure on the
	// invocation reply.
	Reject(ctx context.Context, msg string) error
	// Notify sends an informational follow-up message.
	Notify(ctx context.Context, msg string) error
	// OpenSession opens the private paged view, renders the initial page,
	// and returns the renderer bound to the created message.
	OpenSession(ctx context.Context, sessionID string, v PageView) (PageRenderer, error)
}

// Options carries the raw option values of one calendar invocation.
type Options struct {
	ClassName    string
	LocationType string
	EventHolder  string
	EventDate    string
	DayOfWeek    string
}

// CalendarCommand implements the calendar browse flow: validate options,
// fetch the provider window, normalize and persist the batch, filter, and
// open a paged session.
type CalendarCommand struct {
	source   EventSource
	events   store.EventRepository
	cache    *FetchCache
	limiter  *UserRateLimiter
	sessions *sessionRegistry
	now      func() time.Time
}

func NewCalendarCommand(source EventSource, events store.EventRepository, cache *FetchCache) *CalendarCommand {
	return &CalendarCommand{
		source:   source,
		events:   events,
		cache:    cache,
		limiter:  NewUserRateLimiter(rate.Every(10*time.Second), 2, 5*time.Minute),
		sessions: newSessionRegistry(),
		now:      time.Now,
	}
}

// Dispatch routes a component interaction to its session. Interactions
// for unknown sessions are stale clicks and are ignored.
func (c *CalendarCommand) Dispatch(sessionID string, a NavAction) {
	if ctrl := c.sessions.get(sessionID); ctrl != nil {
		ctrl.Submit(a)
	}
}

// Execute runs one invocation. ctx must outlive the paging session it may
// open; the adapter passes the bot's lifetime context.
func (c *CalendarCommand) Execute(ctx context.Context, userID string, opts Options, ui UI) {
	criteria, err := schedule.ParseCriteria(schedule.CriteriaInput{
		ClassName:    opts.ClassName,
		LocationType: opts.LocationType,
		EventHolder:  opts.EventHolder,
		EventDate:    opts.EventDate,
		DayOfWeek:    opts.DayOfWeek,
	})
	if err != nil {
		metrics.IncValidationRejection()
		c.reply(ctx, ui.Reject, err.Error())
		return
	}

	if !c.limiter.Allow(userID) {
		c.reply(ctx, ui.Reject, "You're fetching the calendar too often; try again in a few seconds.")
		return
	}

	raw, err := c.source.ListWindow(ctx, c.now(), fetchWindow)
	metrics.ObserveFetch(err)
	if err != nil {
		log.Printf("calendar: fetch failed for user %s: %v", userID, err)
		msg := "Couldn't reach the calendar service. Please try again later."
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			msg = "Calendar authorization has expired; ask the operator to re-run the consent flow."
		}
		c.reply(ctx, ui.Notify, msg)
		return
	}

	events := make([]schedule.Event, 0, len(raw))
	upserted := 0
	for _, r := range raw {
		ev := schedule.Normalize(r)
		events = append(events, ev)
		if err := c.events.Upsert(ctx, ev); err != nil {
			// A single failed write is skipped; the rest of the batch and
			// the user-facing flow continue.
			metrics.IncUpsertError()
			log.Printf("calendar: upsert failed for %s: %v", ev.EventID, err)
			continue
		}
		upserted++
	}
	metrics.AddUpserted(upserted)
	c.cache.Put(userID, events)

	if len(events) == 0 {
		c.reply(ctx, ui.Notify, "No events found in the next 10 days.")
		return
	}

	filtered := schedule.Filter(events, criteria)
	if len(filtered) == 0 {
		c.reply(ctx, ui.Notify, "No events found matching your filters.")
		return
	}

	pager := schedule.NewPager(filtered, pageSize)
	sessionID := uuid.NewString()

	renderer, err := ui.OpenSession(ctx, sessionID, viewFor(pager, 0, false))
	if err != nil {
		// No session was started, so no affordances are live.
		log.Printf("calendar: open session for user %s: %v", userID, err)
		c.reply(ctx, ui.Notify, "Couldn't open the event view. Please try again later.")
		return
	}

	ctrl := NewController(pager, renderer, sessionTimeout, func(reason string) {
		c.sessions.remove(sessionID)
		metrics.SessionClosed(reason)
	})
	c.sessions.add(sessionID, ctrl)
	metrics.SessionOpened()
	go ctrl.Run(ctx)
}

func (c *CalendarCommand) reply(ctx context.Context, send func(context.Context, string) error, msg string) {
	if err := send(ctx, msg); err != nil {
		log.Printf("calendar: send message: %v", err)
	}
}
