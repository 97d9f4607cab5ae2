package repository

import (
	"context"

	"github.com/rpggio/crmcal/internal/domain/activity"
	"github.com/rpggio/crmcal/internal/domain/source"
)

// SettingsRepository is a per-tenant key-value store
type SettingsRepository interface {
	Get(ctx context.Context, tenantID, key string) (string, bool, error)
	Set(ctx context.Context, tenantID, key, value string) error
	Delete(ctx context.Context, tenantID, key string) error
	List(ctx context.Context, tenantID string) (map[string]string, error)
}

// SourceRepository persists a tenant's calendar sources
type SourceRepository interface {
	Load(ctx context.Context, tenantID string) ([]source.Source, error)
	Save(ctx context.Context, tenantID string, sources []source.Source) error
}

// ActivityRepository manages activity log persistence
type ActivityRepository interface {
	Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error
	List(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// APIKeyRepository maps bearer tokens to tenants
type APIKeyRepository interface {
	Create(ctx context.Context, tenantID, token, description string) error
	ResolveTenant(ctx context.Context, token string) (string, error)
}
