package activity

import "time"

// ActivityType represents the type of configuration change
type ActivityType string

const (
	TypeSourceSaved     ActivityType = "source_saved"
	TypeSourceDeleted   ActivityType = "source_deleted"
	TypeSourceToggled   ActivityType = "source_toggled"
	TypeSettingsUpdated ActivityType = "settings_updated"
	TypeFetchFailed     ActivityType = "fetch_failed"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	TenantID     string       `json:"tenant_id"`
	SourceID     *string      `json:"source_id,omitempty"`
	ObjectName   string       `json:"object_name,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	SourceID     *string
	ActivityType *ActivityType
	Limit        int
	Offset       int
}
