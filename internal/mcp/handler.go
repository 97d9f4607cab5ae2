package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rpggio/crmcal/internal/domain/activity"
	"github.com/rpggio/crmcal/internal/domain/calendar"
	"github.com/rpggio/crmcal/internal/domain/navigation"
	"github.com/rpggio/crmcal/internal/domain/settings"
	"github.com/rpggio/crmcal/internal/domain/source"
	"github.com/rpggio/crmcal/internal/notify"
)

// SourceService defines source operations needed by MCP.
type SourceService interface {
	List(ctx context.Context, tenantID string) ([]source.Source, error)
	NewDraft(ctx context.Context, tenantID string) (source.Source, error)
	Save(ctx context.Context, tenantID string, draft source.Source) (source.Source, error)
	Delete(ctx context.Context, tenantID, id string) error
	SetActive(ctx context.Context, tenantID, id string, active bool) (source.Source, error)
	Objects(ctx context.Context) []source.FieldOption
	FieldOptions(ctx context.Context, object string, titleType source.FieldType) source.FieldOptions
}

// SettingsService defines settings operations needed by MCP.
type SettingsService interface {
	Get(ctx context.Context, tenantID string) (settings.Settings, error)
	UpdateTheme(ctx context.Context, tenantID string, changes map[string]string) (settings.Theme, error)
	SetDayCap(ctx context.Context, tenantID string, n int) error
	SetDefaultObject(ctx context.Context, tenantID, object string) error
}

// CalendarService defines calendar operations needed by MCP.
type CalendarService interface {
	Render(ctx context.Context, tenantID string, req calendar.RenderRequest) (calendar.Rendered, error)
	ShowMore(ctx context.Context, tenantID string, req calendar.MoreRequest) (calendar.MoreResult, error)
	Export(ctx context.Context, tenantID string, req calendar.RenderRequest) (string, error)
}

// NavigationService defines navigation operations needed by MCP.
type NavigationService interface {
	CreateRecord(ctx context.Context, tenantID string, click navigation.Click) (navigation.PageReference, error)
	ViewRecord(ctx context.Context, id, object string) (navigation.PageReference, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	Record(ctx context.Context, tenantID string, typ activity.ActivityType, sourceID, object, summary string, details any)
	GetRecentActivity(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Sources    SourceService
	Settings   SettingsService
	Calendar   CalendarService
	Navigation NavigationService
	Activity   ActivityService
}

// Handler dispatches MCP commands.
type Handler struct {
	sources    SourceService
	settings   SettingsService
	calendar   CalendarService
	navigation NavigationService
	activity   ActivityService
}

// NewHandler creates a new MCP handler.
func NewHandler(services Services) *Handler {
	return &Handler{
		sources:    services.Sources,
		settings:   services.Settings,
		calendar:   services.Calendar,
		navigation: services.Navigation,
		activity:   services.Activity,
	}
}

// Handle dispatches MCP requests to domain services. Toasts raised by the
// services during the call are collected and returned with mutating results.
func (h *Handler) Handle(ctx context.Context, tenantID, sessionID, method string, params json.RawMessage) (any, error) {
	rec := notify.NewRecorder(nil)
	ctx = notify.WithRecorder(ctx, rec)

	switch method {
	case "list_objects":
		return ObjectsResponse{Objects: h.sources.Objects(ctx)}, nil
	case "get_field_options":
		var req GetFieldOptionsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if strings.TrimSpace(req.Object) == "" {
			return nil, invalidParams("object is required")
		}
		return h.sources.FieldOptions(ctx, req.Object, req.TitleType), nil
	case "list_sources":
		sources, err := h.sources.List(ctx, tenantID)
		if err != nil {
			return nil, mapError(err)
		}
		return SourcesResponse{Sources: sources}, nil
	case "new_source":
		draft, err := h.sources.NewDraft(ctx, tenantID)
		if err != nil {
			return nil, mapError(err)
		}
		return SourceResponse{Source: draft}, nil
	case "edit_filter":
		var req EditFilterParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		edited, err := editFilter(req)
		if err != nil {
			return nil, mapError(err)
		}
		return SourceResponse{Source: edited.Decorate()}, nil
	case "save_source":
		var req SaveSourceParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		saved, err := h.sources.Save(ctx, tenantID, req.Source)
		if err != nil {
			apiErr := MapError(err)
			if apiErr == nil {
				return nil, err
			}
			apiErr.Details = map[string]any{"toasts": rec.Toasts()}
			return nil, apiErr
		}
		h.record(ctx, tenantID, activity.TypeSourceSaved, saved.ID, saved.ObjectName,
			fmt.Sprintf("Saved source for %s", saved.ObjectName), saved)
		return SourceResponse{Source: saved, Toasts: rec.Toasts()}, nil
	case "delete_source":
		var req SourceIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.sources.Delete(ctx, tenantID, req.ID); err != nil {
			return nil, mapError(err)
		}
		h.record(ctx, tenantID, activity.TypeSourceDeleted, req.ID, "", "Deleted source", nil)
		return DeleteSourceResponse{Deleted: true, Toasts: rec.Toasts()}, nil
	case "set_source_active":
		var req SetSourceActiveParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		updated, err := h.sources.SetActive(ctx, tenantID, req.ID, req.Active)
		if err != nil {
			return nil, mapError(err)
		}
		state := "Disabled"
		if updated.IsActive {
			state = "Enabled"
		}
		h.record(ctx, tenantID, activity.TypeSourceToggled, updated.ID, updated.ObjectName,
			fmt.Sprintf("%s source for %s", state, updated.ObjectName), map[string]bool{"active": updated.IsActive})
		return SourceResponse{Source: updated, Toasts: rec.Toasts()}, nil
	case "get_settings":
		st, err := h.settings.Get(ctx, tenantID)
		if err != nil {
			return nil, mapError(err)
		}
		return settingsResponse(st), nil
	case "update_settings":
		var req UpdateSettingsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.updateSettings(ctx, tenantID, req); err != nil {
			return nil, mapError(err)
		}
		h.record(ctx, tenantID, activity.TypeSettingsUpdated, "", "", "Updated calendar settings", req)
		st, err := h.settings.Get(ctx, tenantID)
		if err != nil {
			return nil, mapError(err)
		}
		return settingsResponse(st), nil
	case "render_calendar":
		var req RenderCalendarParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		rendered, err := h.calendar.Render(ctx, tenantID, calendar.RenderRequest{
			View:    req.View,
			Anchor:  req.Anchor,
			Cap:     req.Cap,
			OwnerID: req.OwnerID,
		})
		if err != nil {
			return nil, mapError(err)
		}
		for _, f := range rendered.Failures {
			h.record(ctx, tenantID, activity.TypeFetchFailed, f.SourceID, f.Object,
				fmt.Sprintf("Could not load %s events", f.Object), f)
		}
		return RenderCalendarResponse{Rendered: rendered, Toasts: rec.Toasts()}, nil
	case "show_more":
		var req ShowMoreParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		result, err := h.calendar.ShowMore(ctx, tenantID, calendar.MoreRequest{
			View:     req.View,
			Anchor:   req.Anchor,
			Date:     req.Date,
			Hour:     req.Hour,
			Point:    req.Point,
			Viewport: req.Viewport,
			Cap:      req.Cap,
			OwnerID:  req.OwnerID,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return result, nil
	case "create_record":
		var req CreateRecordParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		page, err := h.navigation.CreateRecord(ctx, tenantID, navigation.Click{
			Object:   req.Object,
			Date:     req.Date,
			DateTime: req.DateTime,
			View:     req.View,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return page, nil
	case "view_record":
		var req ViewRecordParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		page, err := h.navigation.ViewRecord(ctx, req.ID, req.Object)
		if err != nil {
			return nil, mapError(err)
		}
		return page, nil
	case "export_ics":
		var req RenderCalendarParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		text, err := h.calendar.Export(ctx, tenantID, calendar.RenderRequest{
			View:    req.View,
			Anchor:  req.Anchor,
			OwnerID: req.OwnerID,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return ExportResponse{Calendar: text}, nil
	case "get_recent_activity":
		var req GetRecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		entries, err := h.activity.GetRecentActivity(ctx, tenantID, activity.ListActivityOptions{
			SourceID:     req.SourceID,
			ActivityType: req.Type,
			Limit:        req.Limit,
			Offset:       req.Offset,
		})
		if err != nil {
			return nil, mapError(err)
		}
		resp := make([]ActivityEntryResponse, 0, len(entries))
		for _, entry := range entries {
			resp = append(resp, ActivityEntryResponse{
				Timestamp: entry.CreatedAt,
				Type:      entry.ActivityType,
				SourceID:  stringValue(entry.SourceID),
				Object:    entry.ObjectName,
				Summary:   entry.Summary,
				Details:   entry.Details,
			})
		}
		return resp, nil
	default:
		return nil, &APIError{Code: CodeMethodNotFound, Message: fmt.Sprintf("unknown method: %s", method)}
	}
}

// updateSettings validates every requested change before writing any of
// them.
func (h *Handler) updateSettings(ctx context.Context, tenantID string, req UpdateSettingsParams) error {
	if err := settings.ValidateChanges(req.Theme); err != nil {
		return err
	}
	if req.DayCap != nil {
		if err := settings.ValidateDayCap(*req.DayCap); err != nil {
			return err
		}
	}

	if len(req.Theme) > 0 {
		if _, err := h.settings.UpdateTheme(ctx, tenantID, req.Theme); err != nil {
			return err
		}
	}
	if req.DayCap != nil {
		if err := h.settings.SetDayCap(ctx, tenantID, *req.DayCap); err != nil {
			return err
		}
	}
	if req.DefaultObject != nil {
		if err := h.settings.SetDefaultObject(ctx, tenantID, *req.DefaultObject); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) record(ctx context.Context, tenantID string, typ activity.ActivityType, sourceID, object, summary string, details any) {
	if h.activity == nil {
		return
	}
	h.activity.Record(ctx, tenantID, typ, sourceID, object, summary, details)
}

func editFilter(req EditFilterParams) (source.Source, error) {
	switch req.Action {
	case "add":
		return req.Source.WithFilter(source.Filter{})
	case "field":
		if req.Field == nil {
			return source.Source{}, invalidParams("field is required")
		}
		return req.Source.WithFilterField(req.Index, *req.Field)
	case "value":
		return req.Source.WithFilterValue(req.Index, req.Value)
	case "remove":
		return req.Source.WithoutFilter(req.Index)
	default:
		return source.Source{}, invalidParams(fmt.Sprintf("unknown filter action %q", req.Action))
	}
}

func settingsResponse(st settings.Settings) SettingsResponse {
	keys := make([]ThemeKeyInfo, 0, len(settings.ThemeKeys))
	for _, k := range settings.ThemeKeys {
		keys = append(keys, ThemeKeyInfo{Key: k.Key, Label: k.Label, Value: k.Get(st.Theme)})
	}
	return SettingsResponse{Settings: st, ThemeKeys: keys}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return invalidParams(err.Error())
	}
	return nil
}

func invalidParams(msg string) *APIError {
	return &APIError{Code: CodeInvalidParams, Message: msg}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}

func stringValue(val *string) string {
	if val == nil {
		return ""
	}
	return *val
}
