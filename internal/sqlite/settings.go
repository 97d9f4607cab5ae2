package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// KVStore implements settings.Store over the settings table.
type KVStore struct {
	db *DB
}

// NewKVStore creates a new KVStore
func NewKVStore(db *DB) *KVStore {
	return &KVStore{db: db}
}

// Get returns the value stored under key for the tenant.
func (s *KVStore) Get(ctx context.Context, tenantID, key string) (string, bool, error) {
	var value string
	err := s.db.x.GetContext(ctx, &value,
		`SELECT value FROM settings WHERE tenant_id = ? AND key = ?`, tenantID, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts the value stored under key for the tenant.
func (s *KVStore) Set(ctx context.Context, tenantID, key, value string) error {
	_, err := s.db.x.ExecContext(ctx, `
		INSERT INTO settings (tenant_id, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (tenant_id, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, tenantID, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// Delete removes key for the tenant.
func (s *KVStore) Delete(ctx context.Context, tenantID, key string) error {
	if _, err := s.db.x.ExecContext(ctx,
		`DELETE FROM settings WHERE tenant_id = ? AND key = ?`, tenantID, key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}

type settingRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// List returns every key and value stored for the tenant.
func (s *KVStore) List(ctx context.Context, tenantID string) (map[string]string, error) {
	var rows []settingRow
	if err := s.db.x.SelectContext(ctx, &rows,
		`SELECT key, value FROM settings WHERE tenant_id = ? ORDER BY key`, tenantID); err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}
