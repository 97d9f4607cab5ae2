package calendar

import (
	"context"

	"github.com/rpggio/crmcal/internal/domain/event"
	"github.com/rpggio/crmcal/internal/domain/settings"
	"github.com/rpggio/crmcal/internal/domain/source"
)

// QueryService fetches raw records for one source.
type QueryService interface {
	QueryEvents(ctx context.Context, q Query) ([]event.Record, error)
}

// SourceLister returns the sources that contribute events.
type SourceLister interface {
	Active(ctx context.Context, tenantID string) ([]source.Source, error)
}

// SettingsReader returns display settings.
type SettingsReader interface {
	Get(ctx context.Context, tenantID string) (settings.Settings, error)
}
