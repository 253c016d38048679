// Package schedule holds the normalized event model and the pure
// fetch-batch operations over it: normalization, filtering, and paging.
package schedule

import (
	"strings"
	"time"
)

// LocationType distinguishes in-person events from virtual ones.
type LocationType string

const (
	InPerson LocationType = "IP"
	Virtual  LocationType = "V"
)

// summaryDelimiter separates the course, instructor, and location-type
// segments of a provider event summary, e.g. "CISC101 - Smith - Virtual".
const summaryDelimiter = "-"

// humanDateLayout is the display format for an event's date.
const humanDateLayout = "Monday, January 2, 2006"

// RawEvent is a provider event record with every optional field explicit.
// Start and end each carry at most one of a date-time or a date-only value;
// all-day events have only the date-only form.
type RawEvent struct {
	ID            string
	Summary       string
	StartDateTime string // RFC 3339, empty for all-day events
	StartDate     string // YYYY-MM-DD, empty when StartDateTime is set
	EndDateTime   string
	EndDate       string
	Location      string
}

// Event is the normalized, persisted representation of a calendar entry.
// EventID is the provider id and the unique key; re-fetching the same id
// overwrites every derived field.
type Event struct {
	EventID      string
	CourseID     string
	Instructor   string
	Date         string
	Start        string
	End          string
	Location     string
	LocationType LocationType
}

// Normalize converts a raw provider record into the local schema. It never
// fails: a summary with fewer than three delimited segments yields empty
// strings for the missing ones.
func Normalize(raw RawEvent) Event {
	var segments [3]string
	for i, s := range strings.SplitN(raw.Summary, summaryDelimiter, 3) {
		segments[i] = strings.TrimSpace(s)
	}

	locType := InPerson
	if strings.Contains(strings.ToLower(segments[2]), "virtual") {
		locType = Virtual
	}

	start := preferDateTime(raw.StartDateTime, raw.StartDate)
	end := preferDateTime(raw.EndDateTime, raw.EndDate)

	date := start
	if t, ok := parseInstant(start); ok {
		date = t.Format(humanDateLayout)
	}

	return Event{
		EventID:      raw.ID,
		CourseID:     segments[0],
		Instructor:   segments[1],
		Date:         date,
		Start:        start,
		End:          end,
		Location:     raw.Location,
		LocationType: locType,
	}
}

// StartTime parses the event's start instant. ok is false when the stored
// start is neither a date-time nor a bare date.
func (e Event) StartTime() (t time.Time, ok bool) {
	return parseInstant(e.Start)
}

func preferDateTime(dateTime, dateOnly string) string {
	if dateTime != "" {
		return dateTime
	}
	return dateOnly
}

// parseInstant parses an ISO-like instant that is either a full RFC 3339
// date-time or a bare date.
func parseInstant(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
