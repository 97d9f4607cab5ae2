package mcp

import (
	"time"

	"github.com/rpggio/crmcal/internal/domain/activity"
	"github.com/rpggio/crmcal/internal/domain/calendar"
	"github.com/rpggio/crmcal/internal/domain/grid"
	"github.com/rpggio/crmcal/internal/domain/settings"
	"github.com/rpggio/crmcal/internal/domain/source"
	"github.com/rpggio/crmcal/internal/notify"
)

type GetFieldOptionsParams struct {
	Object    string           `json:"object"`
	TitleType source.FieldType `json:"title_type,omitempty"`
}

type SaveSourceParams struct {
	Source source.Source `json:"source"`
}

type SourceIDParams struct {
	ID string `json:"id"`
}

type SetSourceActiveParams struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
}

// EditFilterParams edits one filter clause of an unsaved draft.
// Action is one of add, field, value or remove.
type EditFilterParams struct {
	Source source.Source       `json:"source"`
	Action string              `json:"action"`
	Index  int                 `json:"index,omitempty"`
	Field  *source.FieldOption `json:"field,omitempty"`
	Value  string              `json:"value,omitempty"`
}

type UpdateSettingsParams struct {
	Theme         map[string]string `json:"theme,omitempty"`
	DayCap        *int              `json:"day_cap,omitempty"`
	DefaultObject *string           `json:"default_object,omitempty"`
}

type RenderCalendarParams struct {
	View    grid.View `json:"view,omitempty"`
	Anchor  string    `json:"anchor,omitempty"`
	Cap     int       `json:"cap,omitempty"`
	OwnerID string    `json:"owner_id,omitempty"`
}

type ShowMoreParams struct {
	View     grid.View  `json:"view,omitempty"`
	Anchor   string     `json:"anchor,omitempty"`
	Date     string     `json:"date"`
	Hour     int        `json:"hour,omitempty"`
	Point    grid.Point `json:"point"`
	Viewport grid.Size  `json:"viewport"`
	Cap      int        `json:"cap,omitempty"`
	OwnerID  string     `json:"owner_id,omitempty"`
}

type CreateRecordParams struct {
	Object   string    `json:"object,omitempty"`
	Date     string    `json:"date"`
	DateTime string    `json:"date_time,omitempty"`
	View     grid.View `json:"view,omitempty"`
}

type ViewRecordParams struct {
	ID     string `json:"id"`
	Object string `json:"object,omitempty"`
}

type GetRecentActivityParams struct {
	SourceID *string                `json:"source_id,omitempty"`
	Type     *activity.ActivityType `json:"type,omitempty"`
	Limit    int                    `json:"limit,omitempty"`
	Offset   int                    `json:"offset,omitempty"`
}

type ObjectsResponse struct {
	Objects []source.FieldOption `json:"objects"`
}

type SourcesResponse struct {
	Sources []source.Source `json:"sources"`
}

type SourceResponse struct {
	Source source.Source `json:"source"`
	Toasts []notify.Toast `json:"toasts,omitempty"`
}

type DeleteSourceResponse struct {
	Deleted bool           `json:"deleted"`
	Toasts  []notify.Toast `json:"toasts,omitempty"`
}

type SettingsResponse struct {
	Settings  settings.Settings `json:"settings"`
	ThemeKeys []ThemeKeyInfo    `json:"theme_keys"`
}

type ThemeKeyInfo struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type RenderCalendarResponse struct {
	calendar.Rendered
	Toasts []notify.Toast `json:"toasts,omitempty"`
}

type ExportResponse struct {
	Calendar string `json:"calendar"`
}

type ActivityEntryResponse struct {
	Timestamp time.Time             `json:"timestamp"`
	Type      activity.ActivityType `json:"type"`
	SourceID  string                `json:"source_id,omitempty"`
	Object    string                `json:"object,omitempty"`
	Summary   string                `json:"summary"`
	Details   string                `json:"details,omitempty"`
}
