package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/crmcal/internal/domain/calendar"
	"github.com/rpggio/crmcal/internal/domain/grid"
	"github.com/rpggio/crmcal/internal/domain/navigation"
	"github.com/rpggio/crmcal/internal/domain/settings"
	"github.com/rpggio/crmcal/internal/domain/source"
	"github.com/rpggio/crmcal/internal/platform"
)

// Codes shared with the JSON-RPC transport.
const (
	CodeMethodNotFound = "METHOD_NOT_FOUND"
	CodeInvalidParams  = "INVALID_PARAMS"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var platformErr *platform.APIError
	switch {
	case errors.Is(err, source.ErrSourceNotFound):
		return &APIError{Code: "SOURCE_NOT_FOUND", Message: "source not found", RecoveryHint: "Call list_sources for valid IDs"}
	case errors.Is(err, source.ErrInvalidSource):
		return &APIError{Code: "INVALID_SOURCE", Message: err.Error(), RecoveryHint: "Set object, start field and title field"}
	case errors.Is(err, source.ErrTooManyFilters):
		return &APIError{Code: "TOO_MANY_FILTERS", Message: "a source allows at most 5 filters", RecoveryHint: "Remove a filter first"}
	case errors.Is(err, source.ErrFilterIndex):
		return &APIError{Code: "FILTER_INDEX", Message: "filter index out of range"}
	case errors.Is(err, settings.ErrUnknownThemeKey):
		return &APIError{Code: "UNKNOWN_THEME_KEY", Message: err.Error(), RecoveryHint: "Call get_settings for theme keys"}
	case errors.Is(err, settings.ErrInvalidColor):
		return &APIError{Code: "INVALID_COLOR", Message: err.Error(), RecoveryHint: "Use #rgb or #rrggbb"}
	case errors.Is(err, settings.ErrInvalidDayCap):
		return &APIError{Code: "INVALID_DAY_CAP", Message: err.Error(), RecoveryHint: "Use a value from 1 to 20"}
	case errors.Is(err, grid.ErrInvalidView):
		return &APIError{Code: "INVALID_VIEW", Message: err.Error(), RecoveryHint: "Use month, week or day"}
	case errors.Is(err, grid.ErrInvalidDate):
		return &APIError{Code: "INVALID_DATE", Message: err.Error(), RecoveryHint: "Use YYYY-MM-DD"}
	case errors.Is(err, calendar.ErrCellNotFound):
		return &APIError{Code: "CELL_NOT_FOUND", Message: err.Error(), RecoveryHint: "Pick a date inside the rendered view"}
	case errors.Is(err, navigation.ErrNoObject):
		return &APIError{Code: "NO_OBJECT", Message: "no object to create", RecoveryHint: "Pass object or set default_object"}
	case errors.Is(err, navigation.ErrInvalidRecord):
		return &APIError{Code: "INVALID_RECORD", Message: "record id is required"}
	case errors.As(err, &platformErr):
		return &APIError{Code: "PLATFORM_ERROR", Message: err.Error(), Details: map[string]any{"status": platformErr.StatusCode}}
	default:
		return nil
	}
}
