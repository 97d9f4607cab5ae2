package source

import (
	"fmt"
	"strings"
)

// Validate checks that a source carries the mappings needed to place events.
func Validate(s Source) error {
	var missing []string
	if strings.TrimSpace(s.ObjectName) == "" {
		missing = append(missing, "object")
	}
	if strings.TrimSpace(s.StartField) == "" {
		missing = append(missing, "start field")
	}
	if strings.TrimSpace(s.TitleField) == "" {
		missing = append(missing, "title field")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidSource, strings.Join(missing, ", "))
	}
	if len(s.Filters) > MaxFilters {
		return ErrTooManyFilters
	}
	return nil
}
