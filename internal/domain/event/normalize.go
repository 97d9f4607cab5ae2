package event

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// NameField is the conventional display-name field used when the mapped
	// title field is blank.
	NameField = "Name"
	// IDField is the platform's record identifier field.
	IDField = "Id"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.000Z",
}

const dateLayout = "2006-01-02"

// Normalize converts raw records into events using the source mapping.
// Records without a usable start timestamp or identifier are dropped.
func Normalize(records []Record, m Mapping, loc *time.Location) []Event {
	if loc == nil {
		loc = time.Local
	}
	events := make([]Event, 0, len(records))
	for _, rec := range records {
		ev, ok := normalizeOne(rec, m, loc)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return events
}

func normalizeOne(rec Record, m Mapping, loc *time.Location) (Event, bool) {
	id := stringField(rec, IDField)
	if id == "" {
		id = stringField(rec, "id")
	}
	if id == "" {
		return Event{}, false
	}

	start, ok := ParseTimestamp(rec[m.StartField], loc)
	if !ok {
		return Event{}, false
	}

	end := start
	if m.EndField != "" {
		if parsed, ok := ParseTimestamp(rec[m.EndField], loc); ok {
			end = parsed
		}
	}
	if end.Before(start) {
		end = start
	}

	title := stringField(rec, m.TitleField)
	if title == "" {
		title = stringField(rec, NameField)
	}
	if title == "" {
		title = id
	}

	return Event{
		ID:           id,
		Title:        title,
		Start:        start,
		End:          end,
		Color:        m.Color,
		SourceObject: m.Object,
		SourceID:     m.SourceID,
	}, true
}

// ParseTimestamp interprets a record value as an instant. Date-only values
// resolve to local midnight in loc. Unparsable values report false.
func ParseTimestamp(v any, loc *time.Location) (time.Time, bool) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if val.IsZero() {
			return time.Time{}, false
		}
		return val, true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		if loc == nil {
			loc = time.Local
		}
		if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
			return t, true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// SortEvents orders events by start, then title, then ID.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
}

func stringField(rec Record, field string) string {
	if field == "" {
		return ""
	}
	switch v := rec[field].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
