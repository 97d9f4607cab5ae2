package navigation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/crmcal/internal/domain/grid"
	"github.com/rpggio/crmcal/internal/domain/source"
)

const platformInstant = "2006-01-02T15:04:05.000Z"

// Adapter turns calendar clicks into record pages with prefilled dates.
type Adapter struct {
	sources   SourceFinder
	fields    FieldLister
	settings  SettingsReader
	navigator Navigator
	logger    *slog.Logger
}

// NewAdapter creates a navigation adapter.
func NewAdapter(sources SourceFinder, fields FieldLister, settings SettingsReader, navigator Navigator, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		sources:   sources,
		fields:    fields,
		settings:  settings,
		navigator: navigator,
		logger:    logger,
	}
}

// CreateRecord opens the create page for the clicked object, prefilling its
// date fields from the clicked day or slot when their types are known.
func (a *Adapter) CreateRecord(ctx context.Context, tenantID string, click Click) (PageReference, error) {
	object := strings.TrimSpace(click.Object)
	if object == "" {
		object = a.defaultObject(ctx, tenantID)
	}
	if object == "" {
		return PageReference{}, ErrNoObject
	}

	defaults := a.defaults(ctx, tenantID, object, click)
	return a.navigator.OpenRecordCreate(ctx, object, defaults)
}

// ViewRecord opens a record's detail page.
func (a *Adapter) ViewRecord(ctx context.Context, id, object string) (PageReference, error) {
	if strings.TrimSpace(id) == "" {
		return PageReference{}, ErrInvalidRecord
	}
	return a.navigator.OpenRecordView(ctx, id, object)
}

// defaults returns nil whenever the page should open without prefill.
func (a *Adapter) defaults(ctx context.Context, tenantID, object string, click Click) map[string]string {
	dates := a.dateFields(ctx, tenantID, object)
	if dates.Start == "" || IsAuditField(dates.Start) {
		return nil
	}
	if _, err := grid.ParseDate(click.Date, time.UTC); err != nil {
		a.logger.Warn("ignoring click date", "date", click.Date)
		return nil
	}

	fields, err := a.fields.ListFields(ctx, object)
	if err != nil {
		a.logger.Warn("describing fields failed", "object", object, "error", err)
		return nil
	}
	types := make(map[string]source.FieldType, len(fields))
	for _, f := range fields {
		types[strings.ToLower(f.Value)] = source.FieldType(strings.ToUpper(string(f.Type)))
	}

	startValue, start, ok := startDefault(types[strings.ToLower(dates.Start)], click)
	if !ok {
		return nil
	}
	out := map[string]string{dates.Start: startValue}

	if dates.End != "" && !strings.EqualFold(dates.End, dates.Start) && !IsAuditField(dates.End) {
		switch types[strings.ToLower(dates.End)] {
		case source.FieldTypeDateTime:
			out[dates.End] = start.Add(time.Hour).UTC().Format(platformInstant)
		case source.FieldTypeDate:
			out[dates.End] = click.Date
		}
	}
	return out
}

// startDefault formats the clicked moment for a start field of type t. The
// returned time anchors the end default.
func startDefault(t source.FieldType, click Click) (string, time.Time, bool) {
	switch t {
	case source.FieldTypeDate:
		day, _ := time.Parse(time.DateOnly, click.Date)
		return click.Date, day, true
	case source.FieldTypeDateTime:
		if click.DateTime != "" && click.View != grid.ViewMonth {
			if instant, err := time.Parse(platformInstant, click.DateTime); err == nil {
				return click.DateTime, instant, true
			}
			if instant, err := time.Parse(time.RFC3339, click.DateTime); err == nil {
				return click.DateTime, instant, true
			}
		}
		// Month clicks carry no hour; the platform reads this as UTC midnight.
		value := click.Date + "T00:00:00.000Z"
		instant, _ := time.Parse(platformInstant, value)
		return value, instant, true
	default:
		return "", time.Time{}, false
	}
}

func (a *Adapter) dateFields(ctx context.Context, tenantID, object string) DateFields {
	if a.sources != nil {
		src, ok, err := a.sources.ForObject(ctx, tenantID, object)
		if err != nil {
			a.logger.Warn("looking up source failed", "object", object, "error", err)
		} else if ok {
			return DateFields{Start: src.StartField, End: src.EndField}
		}
	}
	for name, fields := range StaticDateFields {
		if strings.EqualFold(name, object) {
			return fields
		}
	}
	return DateFields{}
}

func (a *Adapter) defaultObject(ctx context.Context, tenantID string) string {
	if a.settings == nil {
		return ""
	}
	st, err := a.settings.Get(ctx, tenantID)
	if err != nil {
		a.logger.Warn("reading default object failed", "tenant_id", tenantID, "error", err)
		return ""
	}
	return strings.TrimSpace(st.DefaultObject)
}
