package navigation

import (
	"strings"

	"github.com/rpggio/crmcal/internal/domain/grid"
)

// Click is an empty-cell or slot click on the calendar.
type Click struct {
	Object   string    `json:"object,omitempty"`
	Date     string    `json:"date"`
	DateTime string    `json:"date_time,omitempty"`
	View     grid.View `json:"view"`
}

// PageReference addresses a platform page.
type PageReference struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
	State      map[string]string `json:"state,omitempty"`
	URL        string            `json:"url"`
}

// DateFields is the start and optional end field used to prefill a new record.
type DateFields struct {
	Start string
	End   string
}

// StaticDateFields is consulted when no configured source covers an object.
var StaticDateFields = map[string]DateFields{
	"Event":       {Start: "StartDateTime", End: "EndDateTime"},
	"Task":        {Start: "ActivityDate"},
	"Opportunity": {Start: "CloseDate"},
	"Campaign":    {Start: "StartDate", End: "EndDate"},
	"Contract":    {Start: "StartDate"},
	"Case":        {},
}

// IsAuditField reports whether field names an audit timestamp. Field names
// are case-insensitive on the platform.
func IsAuditField(field string) bool {
	for name := range AuditFields {
		if strings.EqualFold(name, strings.TrimSpace(field)) {
			return true
		}
	}
	return false
}

// AuditFields are system timestamps that cannot be set on create.
var AuditFields = map[string]bool{
	"CreatedDate":        true,
	"LastModifiedDate":   true,
	"SystemModstamp":     true,
	"LastActivityDate":   true,
	"LastViewedDate":     true,
	"LastReferencedDate": true,
}
