package calendar

import "errors"

// ErrCellNotFound indicates a more-list request outside the rendered grid.
var ErrCellNotFound = errors.New("cell not found in view")
