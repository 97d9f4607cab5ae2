package grid

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// View selects the calendar layout.
type View string

const (
	ViewMonth View = "month"
	ViewWeek  View = "week"
	ViewDay   View = "day"
)

// DefaultCap is the number of events shown inline per cell or slot.
const DefaultCap = 4

const (
	isoDate     = "2006-01-02"
	isoInstant  = "2006-01-02T15:04:05.000Z"
	hoursPerDay = 24
	daysPerWeek = 7
)

var (
	// ErrInvalidView indicates an unknown view name.
	ErrInvalidView = errors.New("invalid calendar view")
	// ErrInvalidDate indicates an anchor or cell date that cannot be parsed.
	ErrInvalidDate = errors.New("invalid calendar date")
)

// ParseView parses a view name; empty means month.
func ParseView(s string) (View, error) {
	switch View(strings.ToLower(strings.TrimSpace(s))) {
	case "", ViewMonth:
		return ViewMonth, nil
	case ViewWeek:
		return ViewWeek, nil
	case ViewDay:
		return ViewDay, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidView, s)
	}
}

// ParseDate parses an ISO calendar date as local midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(isoDate, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate renders t's local calendar date in ISO form.
func FormatDate(t time.Time) string {
	return t.Format(isoDate)
}

// FormatInstant renders t as a UTC timestamp with millisecond precision.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(isoInstant)
}

// Options controls grid construction.
type Options struct {
	Location *time.Location
	Cap      int
	Now      time.Time
}

func (o Options) normalized() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Cap <= 0 {
		o.Cap = DefaultCap
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

// Window returns the half-open interval [from, to) covered by a view.
func Window(view View, anchor time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	day := startOfDay(anchor, loc)
	switch view {
	case ViewWeek:
		from := startOfWeek(day, loc)
		return from, time.Date(from.Year(), from.Month(), from.Day()+daysPerWeek, 0, 0, 0, 0, loc)
	case ViewDay:
		return day, time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, loc)
	default:
		from := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, loc)
		return from, time.Date(day.Year(), day.Month()+1, 1, 0, 0, 0, 0, loc)
	}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// startOfWeek returns the Sunday on or before day.
func startOfWeek(day time.Time, loc *time.Location) time.Time {
	day = startOfDay(day, loc)
	return time.Date(day.Year(), day.Month(), day.Day()-int(day.Weekday()), 0, 0, 0, 0, loc)
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	a, b = a.In(loc), b.In(loc)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
