package schedule

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var classPattern = regexp.MustCompile(`^(?i)cisc\d{3}$`)

// ValidationError reports a malformed filter option. It is detected before
// any provider call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CriteriaInput carries the raw option strings supplied with a command
// invocation. Empty fields mean the criterion is unset.
type CriteriaInput struct {
	ClassName    string
	LocationType string
	EventHolder  string
	EventDate    string
	DayOfWeek    string
}

// Criteria is a validated, immutable set of optional filter predicates.
// All set predicates must hold for an event to remain in the result.
type Criteria struct {
	Course       string // lower-cased course code, "" = unset
	LocationType LocationType
	Holder       string // lower-cased substring, "" = unset
	Month        time.Month // 0 = date unset
	Day          int
	Weekday      time.Weekday
	HasWeekday   bool
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseCriteria validates the raw option strings and builds the predicate
// set. A *ValidationError is returned for the first malformed option.
func ParseCriteria(in CriteriaInput) (Criteria, error) {
	var c Criteria

	if in.ClassName != "" {
		if !classPattern.MatchString(in.ClassName) {
			return Criteria{}, &ValidationError{Field: "classname", Reason: "must look like cisc123"}
		}
		c.Course = strings.ToLower(in.ClassName)
	}

	if in.LocationType != "" {
		switch LocationType(in.LocationType) {
		case InPerson, Virtual:
			c.LocationType = LocationType(in.LocationType)
		default:
			return Criteria{}, &ValidationError{Field: "locationtype", Reason: "must be IP or V"}
		}
	}

	if in.EventHolder != "" {
		c.Holder = strings.ToLower(in.EventHolder)
	}

	if in.EventDate != "" {
		t, err := time.Parse("January 2", strings.TrimSpace(in.EventDate))
		if err != nil {
			return Criteria{}, &ValidationError{Field: "eventdate", Reason: `must look like "december 25"`}
		}
		c.Month = t.Month()
		c.Day = t.Day()
	}

	if in.DayOfWeek != "" {
		wd, ok := weekdays[strings.ToLower(in.DayOfWeek)]
		if !ok {
			return Criteria{}, &ValidationError{Field: "dayofweek", Reason: "must be a weekday name, e.g. monday"}
		}
		c.Weekday = wd
		c.HasWeekday = true
	}

	return c, nil
}

// Filter returns the events matching every set criterion, preserving input
// order. An unset criterion is vacuously true; an empty result is not an
// error.
func Filter(events []Event, c Criteria) []Event {
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		if matches(ev, c) {
			out = append(out, ev)
		}
	}
	return out
}

func matches(ev Event, c Criteria) bool {
	if c.Course != "" && !strings.EqualFold(strings.TrimSpace(ev.CourseID), c.Course) {
		return false
	}
	if c.LocationType != "" && ev.LocationType != c.LocationType {
		return false
	}
	if c.Holder != "" && !strings.Contains(strings.ToLower(ev.Instructor), c.Holder) {
		return false
	}
	if c.Month != 0 {
		t, ok := parseInstant(ev.Start)
		if !ok || t.Month() != c.Month || t.Day() != c.Day {
			return false
		}
	}
	if c.HasWeekday {
		t, ok := parseInstant(ev.Start)
		if !ok || t.Weekday() != c.Weekday {
			return false
		}
	}
	return true
}
