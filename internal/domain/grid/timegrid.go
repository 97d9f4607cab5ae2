package grid

import (
	"time"

	"github.com/rpggio/crmcal/internal/domain/event"
)

// DayHeader labels one date column of a week or day grid.
type DayHeader struct {
	Date    string `json:"date"`
	Label   string `json:"label"`
	Weekday string `json:"weekday"`
	IsToday bool   `json:"is_today,omitempty"`
}

// Slot is one hour of one date column.
type Slot struct {
	Date  string    `json:"date"`
	Hour  int       `json:"hour"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	// ISO is the absolute instant at which the slot begins. Start and End
	// bound it half-open; a wall-clock hour skipped by DST has Start == End.
	ISO string `json:"iso"`
	Bucket
}

// HourRow holds one slot per date column for a given hour.
type HourRow struct {
	Hour  int    `json:"hour"`
	Label string `json:"label"`
	Slots []Slot `json:"slots"`
}

// TimeGrid is the renderable week or day grid.
type TimeGrid struct {
	Title string      `json:"title"`
	Days  []DayHeader `json:"days"`
	Hours []HourRow   `json:"hours"`
}

// BuildWeek lays out the Sunday-first week containing anchor.
func BuildWeek(events []event.Event, anchor time.Time, opts Options) TimeGrid {
	opts = opts.normalized()
	first := startOfWeek(anchor, opts.Location)
	g := buildTimeGrid(events, first, daysPerWeek, opts)
	last := time.Date(first.Year(), first.Month(), first.Day()+daysPerWeek-1, 0, 0, 0, 0, opts.Location)
	g.Title = first.Format("Jan 2") + " - " + last.Format("Jan 2, 2006")
	return g
}

// BuildDay lays out the single day containing anchor.
func BuildDay(events []event.Event, anchor time.Time, opts Options) TimeGrid {
	opts = opts.normalized()
	day := startOfDay(anchor, opts.Location)
	g := buildTimeGrid(events, day, 1, opts)
	g.Title = day.Format("Monday, January 2, 2006")
	return g
}

func buildTimeGrid(events []event.Event, first time.Time, columns int, opts Options) TimeGrid {
	loc := opts.Location

	dates := make([]time.Time, columns)
	headers := make([]DayHeader, columns)
	for i := range dates {
		d := time.Date(first.Year(), first.Month(), first.Day()+i, 0, 0, 0, 0, loc)
		dates[i] = d
		headers[i] = DayHeader{
			Date:    FormatDate(d),
			Label:   d.Format("Jan 2"),
			Weekday: d.Weekday().String()[:3],
			IsToday: sameDay(d, opts.Now, loc),
		}
	}

	bounds := make([][]time.Time, columns)
	for i, d := range dates {
		bounds[i] = hourBounds(d, loc)
	}

	rows := make([]HourRow, hoursPerDay)
	for h := 0; h < hoursPerDay; h++ {
		slots := make([]Slot, columns)
		for i, d := range dates {
			start, end := bounds[i][h], bounds[i][h+1]
			slots[i] = Slot{
				Date:   FormatDate(d),
				Hour:   h,
				Start:  start,
				End:    end,
				ISO:    FormatInstant(start),
				Bucket: Overflow(eventsInSlot(events, start, end), opts.Cap),
			}
		}
		rows[h] = HourRow{
			Hour:  h,
			Label: time.Date(2000, 1, 1, h, 0, 0, 0, time.UTC).Format("3 PM"),
			Slots: slots,
		}
	}

	return TimeGrid{Days: headers, Hours: rows}
}

// hourBounds returns the instants at which each wall-clock hour of day
// begins, plus the following midnight. Consecutive bounds are contiguous and
// never decrease, so every instant of the day falls in exactly one slot. A
// repeated hour widens its slot; a skipped hour yields an empty one.
func hourBounds(day time.Time, loc *time.Location) []time.Time {
	bounds := make([]time.Time, hoursPerDay+1)
	for h := range bounds {
		t := wallClockStart(day.Year(), day.Month(), day.Day(), h, loc)
		if h > 0 && t.Before(bounds[h-1]) {
			t = bounds[h-1]
		}
		bounds[h] = t
	}
	return bounds
}

// wallClockStart is the first instant whose local wall clock reads at least
// hour:00 on the given day. When hour:00 does not exist it is the end of the
// gap.
func wallClockStart(year int, month time.Month, day, hour int, loc *time.Location) time.Time {
	want := time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	t := time.Date(year, month, day, hour, 0, 0, 0, loc)
	// Zone offsets are whole quarter hours, so stepping lands on the gap end.
	for i := 0; i < 16 && wallClock(t, loc).Before(want); i++ {
		t = t.Add(15 * time.Minute)
	}
	return t
}

func wallClock(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), l.Minute(), l.Second(), 0, time.UTC)
}

// Slot returns the slot for an ISO date and hour.
func (g TimeGrid) Slot(date string, hour int) (Slot, bool) {
	if hour < 0 || hour >= len(g.Hours) {
		return Slot{}, false
	}
	for _, s := range g.Hours[hour].Slots {
		if s.Date == date {
			return s, true
		}
	}
	return Slot{}, false
}
