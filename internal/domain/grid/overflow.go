package grid

import "github.com/rpggio/crmcal/internal/domain/event"

// Bucket holds the events assigned to one cell or slot.
type Bucket struct {
	Events    []event.Event `json:"events"`
	HasMore   bool          `json:"has_more"`
	MoreCount int           `json:"more_count,omitempty"`
	All       []event.Event `json:"-"`
}

// Overflow splits events into the inline portion and a "+N more" remainder.
func Overflow(events []event.Event, cap int) Bucket {
	if cap <= 0 {
		cap = DefaultCap
	}
	all := make([]event.Event, len(events))
	copy(all, events)

	if len(all) <= cap {
		return Bucket{Events: all, All: all}
	}
	return Bucket{
		Events:    all[:cap:cap],
		HasMore:   true,
		MoreCount: len(all) - cap,
		All:       all,
	}
}

// MoreList is the expanded event list behind a "+N more" affordance.
type MoreList struct {
	Date   string        `json:"date"`
	Hour   *int          `json:"hour,omitempty"`
	Label  string        `json:"label"`
	Events []event.Event `json:"events"`
}
