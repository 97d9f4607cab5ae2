package grid

import (
	"time"

	"github.com/rpggio/crmcal/internal/domain/event"
)

// Grid is the rendered projection for one view and anchor date.
type Grid struct {
	View   View      `json:"view"`
	Anchor string    `json:"anchor"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Month  *Month    `json:"month,omitempty"`
	Time   *TimeGrid `json:"time,omitempty"`

	loc *time.Location
}

// Build renders events for the given view around anchor.
func Build(view View, events []event.Event, anchor time.Time, opts Options) Grid {
	opts = opts.normalized()
	from, to := Window(view, anchor, opts.Location)
	g := Grid{
		View:   view,
		Anchor: FormatDate(anchor.In(opts.Location)),
		From:   from,
		To:     to,
		loc:    opts.Location,
	}

	switch view {
	case ViewWeek:
		tg := BuildWeek(events, anchor, opts)
		g.Time = &tg
	case ViewDay:
		tg := BuildDay(events, anchor, opts)
		g.Time = &tg
	default:
		g.View = ViewMonth
		m := BuildMonth(events, anchor, opts)
		g.Month = &m
	}
	return g
}

// More returns the full event list behind a cell (month) or slot (week/day).
// hour is ignored for the month view.
func (g Grid) More(date string, hour int) (MoreList, bool) {
	loc := g.loc
	if loc == nil {
		loc = time.Local
	}
	day, err := ParseDate(date, loc)
	if err != nil {
		return MoreList{}, false
	}

	if g.Month != nil {
		cell, ok := g.Month.Cell(date)
		if !ok {
			return MoreList{}, false
		}
		return MoreList{
			Date:   date,
			Label:  day.Format("Monday, January 2"),
			Events: cell.All,
		}, true
	}

	if g.Time != nil {
		slot, ok := g.Time.Slot(date, hour)
		if !ok {
			return MoreList{}, false
		}
		h := hour
		return MoreList{
			Date:   date,
			Hour:   &h,
			Label:  slot.Start.Format("Monday, January 2, 3 PM"),
			Events: slot.All,
		}, true
	}

	return MoreList{}, false
}
