package gcal

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"gitea.jw6.us/james/coursebot/internal/schedule"
)

// Client lists events from one shared provider calendar. The underlying
// HTTP client refreshes the access token silently when it expires.
type Client struct {
	svc        *calendar.Service
	calendarID string
}

// NewClient builds an authorized calendar client from a token bundle.
func NewClient(ctx context.Context, store *CredentialStore, tok *oauth2.Token, calendarID string) (*Client, error) {
	httpClient := store.Config().Client(ctx, tok)
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("gcal: create calendar service: %w", err)
	}
	return &Client{svc: svc, calendarID: calendarID}, nil
}

// ListWindow returns the calendar's events between from and from+window,
// with recurring events expanded and ordered by start time.
func (c *Client) ListWindow(ctx context.Context, from time.Time, window time.Duration) ([]schedule.RawEvent, error) {
	res, err := c.svc.Events.List(c.calendarID).
		Context(ctx).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(from.Add(window).Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Do()
	if err != nil {
		return nil, fmt.Errorf("gcal: list events: %w", err)
	}

	raw := make([]schedule.RawEvent, 0, len(res.Items))
	for _, item := range res.Items {
		raw = append(raw, rawFromItem(item))
	}
	return raw, nil
}

// rawFromItem copies the fields this bot uses out of a provider item,
// handling absent start/end blocks explicitly.
func rawFromItem(item *calendar.Event) schedule.RawEvent {
	raw := schedule.RawEvent{
		ID:       item.Id,
		Summary:  item.Summary,
		Location: item.Location,
	}
	if item.Start != nil {
		raw.StartDateTime = item.Start.DateTime
		raw.StartDate = item.Start.Date
	}
	if item.End != nil {
		raw.EndDateTime = item.End.DateTime
		raw.EndDate = item.End.Date
	}
	return raw
}
