// Package ics renders calendar events as an iCalendar document.
package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/rpggio/crmcal/internal/domain/event"
)

// ProductID identifies this server in exported calendars.
const ProductID = "-//crmcal//calendar export//EN"

// Encode returns a VCALENDAR with one VEVENT per event. stamp is written as
// DTSTAMP on every event.
func Encode(name string, events []event.Event, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	if name != "" {
		cal.SetName(name)
	}

	for _, e := range events {
		ve := cal.AddEvent(uid(e))
		ve.SetDtStampTime(stamp.UTC())
		ve.SetStartAt(e.Start.UTC())
		end := e.End
		if end.Before(e.Start) {
			end = e.Start
		}
		ve.SetEndAt(end.UTC())
		ve.SetSummary(e.Title)
		if e.SourceObject != "" {
			ve.SetProperty(ical.ComponentPropertyCategories, e.SourceObject)
		}
		if e.Color != "" {
			ve.SetProperty(ical.ComponentPropertyColor, e.Color)
		}
	}

	return cal.Serialize()
}

// uid is stable per record and source so re-exports update in place.
func uid(e event.Event) string {
	if e.SourceID == "" {
		return e.ID + "@crmcal"
	}
	return e.ID + "." + e.SourceID + "@crmcal"
}
