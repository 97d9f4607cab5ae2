package settings

import "errors"

var (
	ErrUnknownThemeKey = errors.New("unknown theme key")
	ErrInvalidColor    = errors.New("invalid color")
	ErrInvalidDayCap   = errors.New("invalid day cap")
)
