package grid

import (
	"time"

	"github.com/rpggio/crmcal/internal/domain/event"
)

// OnDay reports whether e touches the local calendar day containing day.
// Time of day is ignored on both sides.
func OnDay(e event.Event, day time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	d := startOfDay(day, loc)
	startDay := startOfDay(e.Start, loc)
	endDay := startOfDay(e.End, loc)
	return !d.After(endDay) && !d.Before(startDay)
}

// InSlot reports whether e overlaps the slot [slotStart, slotEnd). The event
// span is half-open; an instantaneous event belongs to the slot containing
// its start. An empty slot (a wall-clock hour skipped by a DST change) holds
// nothing.
func InSlot(e event.Event, slotStart, slotEnd time.Time) bool {
	if !slotEnd.After(slotStart) {
		return false
	}
	if !e.End.After(e.Start) {
		return !e.Start.Before(slotStart) && e.Start.Before(slotEnd)
	}
	return e.Start.Before(slotEnd) && e.End.After(slotStart)
}

func eventsOnDay(events []event.Event, day time.Time, loc *time.Location) []event.Event {
	var out []event.Event
	for _, e := range events {
		if OnDay(e, day, loc) {
			out = append(out, e)
		}
	}
	return out
}

func eventsInSlot(events []event.Event, slotStart, slotEnd time.Time) []event.Event {
	var out []event.Event
	for _, e := range events {
		if InSlot(e, slotStart, slotEnd) {
			out = append(out, e)
		}
	}
	return out
}
