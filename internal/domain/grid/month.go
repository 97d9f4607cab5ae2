package grid

import (
	"time"

	"github.com/rpggio/crmcal/internal/domain/event"
)

// Cell is one day of the month grid, or a leading placeholder.
type Cell struct {
	Date          string `json:"date,omitempty"`
	Day           int    `json:"day,omitempty"`
	Label         string `json:"label,omitempty"`
	IsPlaceholder bool   `json:"is_placeholder,omitempty"`
	IsToday       bool   `json:"is_today,omitempty"`
	Bucket
}

// Month is the renderable month grid.
type Month struct {
	Year        int        `json:"year"`
	Month       time.Month `json:"month"`
	Title       string     `json:"title"`
	Offset      int        `json:"offset"`
	DaysInMonth int        `json:"days_in_month"`
	Cells       []Cell     `json:"cells"`
}

// BuildMonth lays out the month containing anchor. Day 1 is preceded by one
// placeholder per weekday before it, Sunday first.
func BuildMonth(events []event.Event, anchor time.Time, opts Options) Month {
	opts = opts.normalized()
	loc := opts.Location

	a := anchor.In(loc)
	first := time.Date(a.Year(), a.Month(), 1, 0, 0, 0, 0, loc)
	offset := int(first.Weekday())
	days := daysIn(a.Year(), a.Month(), loc)

	cells := make([]Cell, 0, offset+days)
	for i := 0; i < offset; i++ {
		cells = append(cells, Cell{IsPlaceholder: true, Bucket: Overflow(nil, opts.Cap)})
	}
	for d := 1; d <= days; d++ {
		day := time.Date(a.Year(), a.Month(), d, 0, 0, 0, 0, loc)
		cells = append(cells, Cell{
			Date:    FormatDate(day),
			Day:     d,
			Label:   day.Format("Mon, Jan 2"),
			IsToday: sameDay(day, opts.Now, loc),
			Bucket:  Overflow(eventsOnDay(events, day, loc), opts.Cap),
		})
	}

	return Month{
		Year:        a.Year(),
		Month:       a.Month(),
		Title:       first.Format("January 2006"),
		Offset:      offset,
		DaysInMonth: days,
		Cells:       cells,
	}
}

// Weeks chunks the cells into rows of seven; the last row may be short.
func (m Month) Weeks() [][]Cell {
	var weeks [][]Cell
	for i := 0; i < len(m.Cells); i += daysPerWeek {
		end := i + daysPerWeek
		if end > len(m.Cells) {
			end = len(m.Cells)
		}
		weeks = append(weeks, m.Cells[i:end])
	}
	return weeks
}

// Cell returns the day cell for an ISO date.
func (m Month) Cell(date string) (Cell, bool) {
	for _, c := range m.Cells {
		if !c.IsPlaceholder && c.Date == date {
			return c, true
		}
	}
	return Cell{}, false
}
