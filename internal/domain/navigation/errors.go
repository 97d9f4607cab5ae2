package navigation

import "errors"

var (
	// ErrNoObject indicates a click with no object and no default configured.
	ErrNoObject = errors.New("no object to create")
	// ErrInvalidRecord indicates a view request without a record ID.
	ErrInvalidRecord = errors.New("record id is required")
)
