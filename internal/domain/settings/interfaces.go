package settings

import "context"

// Store is a per-tenant key-value store.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, tenantID, key string) (string, bool, error)
	Set(ctx context.Context, tenantID, key, value string) error
}
