package event

import "time"

// Event is a queried record normalized for display on a calendar grid.
type Event struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Color        string    `json:"color,omitempty"`
	SourceObject string    `json:"source_object"`
	SourceID     string    `json:"source_id,omitempty"`
}

// Record is one flat, field-keyed record returned by the query service.
type Record map[string]any

// Mapping describes how a source's fields map onto event attributes.
type Mapping struct {
	SourceID   string
	Object     string
	StartField string
	EndField   string
	TitleField string
	Color      string
}
