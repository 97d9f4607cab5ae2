package source

import "github.com/rpggio/crmcal/internal/domain/event"

// MaxFilters is the maximum number of filter clauses on a source.
const MaxFilters = 5

// FieldType is the platform's semantic type for a field.
type FieldType string

const (
	FieldTypeDate      FieldType = "DATE"
	FieldTypeDateTime  FieldType = "DATETIME"
	FieldTypeBoolean   FieldType = "BOOLEAN"
	FieldTypeInteger   FieldType = "INTEGER"
	FieldTypeDouble    FieldType = "DOUBLE"
	FieldTypeLong      FieldType = "LONG"
	FieldTypeCurrency  FieldType = "CURRENCY"
	FieldTypePercent   FieldType = "PERCENT"
	FieldTypeString    FieldType = "STRING"
	FieldTypeReference FieldType = "REFERENCE"
	FieldTypePicklist  FieldType = "PICKLIST"
)

// InputType is the kind of editor used for a filter value.
type InputType string

const (
	InputText     InputType = "text"
	InputDate     InputType = "date"
	InputCheckbox InputType = "checkbox"
	InputNumber   InputType = "number"
)

// Filter is one clause applied when querying a source's records.
type Filter struct {
	Field     string    `json:"field"`
	Type      FieldType `json:"type,omitempty"`
	InputType InputType `json:"input_type"`
	Value     string    `json:"value"`
}

// Source is one configured object-to-calendar mapping.
type Source struct {
	ID          string    `json:"id"`
	ObjectName  string    `json:"object_name"`
	ObjectLabel string    `json:"object_label,omitempty"`
	StartField  string    `json:"start_field"`
	EndField    string    `json:"end_field,omitempty"`
	TitleField  string    `json:"title_field"`
	TitleType   FieldType `json:"title_type,omitempty"`
	UserField   string    `json:"user_field,omitempty"`
	Filters     []Filter  `json:"filters"`
	FilterLogic string    `json:"filter_logic,omitempty"`
	Color       string    `json:"color"`
	IsActive    bool      `json:"is_active"`

	// Style is derived from Color for presentation and never persisted.
	Style string `json:"style,omitempty"`
}

// FieldOption is one entry returned by the metadata service.
type FieldOption struct {
	Label string    `json:"label"`
	Value string    `json:"value"`
	Type  FieldType `json:"type,omitempty"`
}

// FieldOptions groups the fields offered when editing a source.
type FieldOptions struct {
	DateFields  []FieldOption `json:"date_fields"`
	UserFields  []FieldOption `json:"user_fields"`
	TitleFields []FieldOption `json:"title_fields"`
	AllFields   []FieldOption `json:"all_fields"`
}

// Mapping returns the event normalizer mapping for this source.
func (s Source) Mapping() event.Mapping {
	return event.Mapping{
		SourceID:   s.ID,
		Object:     s.ObjectName,
		StartField: s.StartField,
		EndField:   s.EndField,
		TitleField: s.TitleField,
		Color:      s.Color,
	}
}
