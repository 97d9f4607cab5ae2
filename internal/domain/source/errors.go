package source

import "errors"

var (
	// ErrSourceNotFound indicates no configured source has the given ID.
	ErrSourceNotFound = errors.New("source not found")
	// ErrInvalidSource indicates a source is missing required mappings.
	ErrInvalidSource = errors.New("invalid source")
	// ErrTooManyFilters indicates a source would exceed MaxFilters clauses.
	ErrTooManyFilters = errors.New("too many filters")
	// ErrFilterIndex indicates a filter clause index out of range.
	ErrFilterIndex = errors.New("filter index out of range")
)
