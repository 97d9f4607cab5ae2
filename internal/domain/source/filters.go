package source

import (
	"fmt"
	"strings"
)

// InputTypeFor derives the filter editor kind from a field type.
func InputTypeFor(t FieldType) InputType {
	switch FieldType(strings.ToUpper(string(t))) {
	case FieldTypeDate, FieldTypeDateTime:
		return InputDate
	case FieldTypeBoolean:
		return InputCheckbox
	case FieldTypeInteger, FieldTypeDouble, FieldTypeLong, FieldTypeCurrency, FieldTypePercent:
		return InputNumber
	default:
		return InputText
	}
}

// Clone returns a copy that shares no mutable state with s.
func (s Source) Clone() Source {
	out := s
	if s.Filters != nil {
		out.Filters = make([]Filter, len(s.Filters))
		copy(out.Filters, s.Filters)
	}
	return out
}

// Decorate returns a copy with derived presentation fields filled in.
func (s Source) Decorate() Source {
	out := s.Clone()
	out.Style = ""
	if out.Color != "" {
		out.Style = fmt.Sprintf("background-color:%s;border-color:%s", out.Color, out.Color)
	}
	for i := range out.Filters {
		out.Filters[i].InputType = InputTypeFor(out.Filters[i].Type)
	}
	return out
}

// WithFilter returns a copy with f appended.
func (s Source) WithFilter(f Filter) (Source, error) {
	if len(s.Filters) >= MaxFilters {
		return s, ErrTooManyFilters
	}
	out := s.Clone()
	f.InputType = InputTypeFor(f.Type)
	out.Filters = append(out.Filters, f)
	return out, nil
}

// WithFilterField returns a copy with clause i pointed at field. The clause
// type follows the field and its value is cleared.
func (s Source) WithFilterField(i int, field FieldOption) (Source, error) {
	if i < 0 || i >= len(s.Filters) {
		return s, ErrFilterIndex
	}
	out := s.Clone()
	out.Filters[i] = Filter{
		Field:     field.Value,
		Type:      field.Type,
		InputType: InputTypeFor(field.Type),
	}
	return out, nil
}

// WithFilterValue returns a copy with clause i's value replaced.
func (s Source) WithFilterValue(i int, value string) (Source, error) {
	if i < 0 || i >= len(s.Filters) {
		return s, ErrFilterIndex
	}
	out := s.Clone()
	out.Filters[i].Value = value
	return out, nil
}

// WithoutFilter returns a copy with clause i removed.
func (s Source) WithoutFilter(i int) (Source, error) {
	if i < 0 || i >= len(s.Filters) {
		return s, ErrFilterIndex
	}
	out := s.Clone()
	out.Filters = append(out.Filters[:i], out.Filters[i+1:]...)
	return out, nil
}
