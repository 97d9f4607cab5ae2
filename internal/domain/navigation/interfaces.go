package navigation

import (
	"context"

	"github.com/rpggio/crmcal/internal/domain/settings"
	"github.com/rpggio/crmcal/internal/domain/source"
)

// Navigator opens platform pages.
type Navigator interface {
	OpenRecordCreate(ctx context.Context, object string, defaults map[string]string) (PageReference, error)
	OpenRecordView(ctx context.Context, id, object string) (PageReference, error)
}

// SourceFinder finds the configured source for an object.
type SourceFinder interface {
	ForObject(ctx context.Context, tenantID, object string) (source.Source, bool, error)
}

// FieldLister describes an object's fields.
type FieldLister interface {
	ListFields(ctx context.Context, object string) ([]source.FieldOption, error)
}

// SettingsReader returns display settings.
type SettingsReader interface {
	Get(ctx context.Context, tenantID string) (settings.Settings, error)
}
