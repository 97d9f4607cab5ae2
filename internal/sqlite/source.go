package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rpggio/crmcal/internal/domain/source"
)

// SourcesKey is the settings key holding a tenant's source list.
const SourcesKey = "calendarSources"

// storedSource is the persisted shape of a source. IsActive is a pointer so
// that payloads written before the flag existed load as active.
type storedSource struct {
	ID          string         `json:"id"`
	ObjectName  string         `json:"objectName"`
	ObjectLabel string         `json:"objectLabel,omitempty"`
	StartField  string         `json:"startField"`
	EndField    string         `json:"endField,omitempty"`
	TitleField  string         `json:"titleField"`
	TitleType   string         `json:"titleType,omitempty"`
	UserField   string         `json:"userField,omitempty"`
	Filters     []storedFilter `json:"filters,omitempty"`
	FilterLogic string         `json:"filterLogic,omitempty"`
	Color       string         `json:"color"`
	IsActive    *bool          `json:"isActive,omitempty"`
}

type storedFilter struct {
	Field string `json:"field"`
	Type  string `json:"type,omitempty"`
	Value string `json:"value"`
}

// SourceStore implements source.Store as one JSON value in the settings table.
type SourceStore struct {
	kv     *KVStore
	logger *slog.Logger
}

// NewSourceStore creates a new SourceStore
func NewSourceStore(db *DB, logger *slog.Logger) *SourceStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SourceStore{kv: NewKVStore(db), logger: logger}
}

// Load returns the tenant's sources. A malformed payload loads as empty.
func (s *SourceStore) Load(ctx context.Context, tenantID string) ([]source.Source, error) {
	raw, ok, err := s.kv.Get(ctx, tenantID, SourcesKey)
	if err != nil {
		return nil, err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []source.Source{}, nil
	}

	var stored []storedSource
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.logger.Warn("ignoring malformed source list", "tenant_id", tenantID, "error", err)
		return []source.Source{}, nil
	}

	out := make([]source.Source, 0, len(stored))
	for _, st := range stored {
		out = append(out, st.toDomain())
	}
	return out, nil
}

// Save replaces the tenant's sources.
func (s *SourceStore) Save(ctx context.Context, tenantID string, sources []source.Source) error {
	stored := make([]storedSource, 0, len(sources))
	for _, src := range sources {
		stored = append(stored, fromDomain(src))
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode sources: %w", err)
	}
	return s.kv.Set(ctx, tenantID, SourcesKey, string(data))
}

func (st storedSource) toDomain() source.Source {
	active := true
	if st.IsActive != nil {
		active = *st.IsActive
	}
	filters := make([]source.Filter, 0, len(st.Filters))
	for _, f := range st.Filters {
		t := source.FieldType(f.Type)
		filters = append(filters, source.Filter{
			Field:     f.Field,
			Type:      t,
			InputType: source.InputTypeFor(t),
			Value:     f.Value,
		})
	}
	return source.Source{
		ID:          st.ID,
		ObjectName:  st.ObjectName,
		ObjectLabel: st.ObjectLabel,
		StartField:  st.StartField,
		EndField:    st.EndField,
		TitleField:  st.TitleField,
		TitleType:   source.FieldType(st.TitleType),
		UserField:   st.UserField,
		Filters:     filters,
		FilterLogic: st.FilterLogic,
		Color:       st.Color,
		IsActive:    active,
	}
}

func fromDomain(src source.Source) storedSource {
	active := src.IsActive
	filters := make([]storedFilter, 0, len(src.Filters))
	for _, f := range src.Filters {
		filters = append(filters, storedFilter{Field: f.Field, Type: string(f.Type), Value: f.Value})
	}
	return storedSource{
		ID:          src.ID,
		ObjectName:  src.ObjectName,
		ObjectLabel: src.ObjectLabel,
		StartField:  src.StartField,
		EndField:    src.EndField,
		TitleField:  src.TitleField,
		TitleType:   string(src.TitleType),
		UserField:   src.UserField,
		Filters:     filters,
		FilterLogic: src.FilterLogic,
		Color:       src.Color,
		IsActive:    &active,
	}
}
