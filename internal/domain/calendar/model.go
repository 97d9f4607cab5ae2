package calendar

import (
	"time"

	"github.com/rpggio/crmcal/internal/domain/event"
	"github.com/rpggio/crmcal/internal/domain/grid"
	"github.com/rpggio/crmcal/internal/domain/source"
)

// Query asks the platform for one source's records in a window.
type Query struct {
	Source  source.Source
	From    time.Time
	To      time.Time
	OwnerID string
}

// Failure names a source whose query failed during a refresh.
type Failure struct {
	SourceID string `json:"source_id"`
	Object   string `json:"object"`
	Error    string `json:"error"`
}

// Snapshot is the joined, normalized result of one refresh.
type Snapshot struct {
	Generation uint64        `json:"generation"`
	View       grid.View     `json:"view"`
	Anchor     string        `json:"anchor"`
	OwnerID    string        `json:"owner_id,omitempty"`
	From       time.Time     `json:"from"`
	To         time.Time     `json:"to"`
	Events     []event.Event `json:"events"`
	Failures   []Failure     `json:"failures,omitempty"`
}

func (s Snapshot) covers(view grid.View, from, to time.Time, owner string) bool {
	return s.View == view && s.From.Equal(from) && s.To.Equal(to) && s.OwnerID == owner
}

// RenderRequest selects a view around an anchor date.
type RenderRequest struct {
	View    grid.View
	Anchor  string
	Cap     int
	OwnerID string
}

// Rendered is a built grid plus the refresh it came from. Stale is set when
// a newer refresh for the same tenant committed first.
type Rendered struct {
	Grid       grid.Grid `json:"grid"`
	Generation uint64    `json:"generation"`
	Stale      bool      `json:"stale,omitempty"`
	EventCount int       `json:"event_count"`
	Failures   []Failure `json:"failures,omitempty"`
}

// MoreRequest asks for the full list behind a "+N more" link.
type MoreRequest struct {
	View     grid.View
	Anchor   string
	Date     string
	Hour     int
	Point    grid.Point
	Viewport grid.Size
	Cap      int
	OwnerID  string
}

// MoreResult is the popover content and where to draw it.
type MoreResult struct {
	List      grid.MoreList  `json:"list"`
	Placement grid.Placement `json:"placement"`
	Size      grid.Size      `json:"size"`
}

const (
	popoverWidth     = 280
	popoverChrome    = 48
	popoverRowHeight = 28
	popoverMaxHeight = 360
)

// PopoverSize estimates the popover footprint for n events.
func PopoverSize(n int) grid.Size {
	h := float64(popoverChrome + popoverRowHeight*n)
	if h > popoverMaxHeight {
		h = popoverMaxHeight
	}
	return grid.Size{Width: popoverWidth, Height: h}
}
