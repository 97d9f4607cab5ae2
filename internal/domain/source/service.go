package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/rpggio/crmcal/internal/notify"
)

// Palette holds the colors assigned to new sources in rotation.
var Palette = []string{
	"#1589ee",
	"#04844b",
	"#ff9a3c",
	"#c23934",
	"#8e44ad",
	"#16a2b8",
}

// Service manages the configured calendar sources.
type Service struct {
	store    Store
	metadata MetadataService
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewService creates a new source service.
func NewService(store Store, metadata MetadataService, notifier notify.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger)
	}
	return &Service{store: store, metadata: metadata, notifier: notifier, logger: logger}
}

// List returns all configured sources with presentation fields filled in.
func (s *Service) List(ctx context.Context, tenantID string) ([]Source, error) {
	stored, err := s.store.Load(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("loading sources: %w", err)
	}
	out := make([]Source, 0, len(stored))
	for _, src := range stored {
		out = append(out, src.Decorate())
	}
	return out, nil
}

// Active returns only the sources that contribute events.
func (s *Service) Active(ctx context.Context, tenantID string) ([]Source, error) {
	all, err := s.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	active := all[:0]
	for _, src := range all {
		if src.IsActive {
			active = append(active, src)
		}
	}
	return active, nil
}

// Get returns one configured source.
func (s *Service) Get(ctx context.Context, tenantID, id string) (Source, error) {
	all, err := s.List(ctx, tenantID)
	if err != nil {
		return Source{}, err
	}
	for _, src := range all {
		if src.ID == id {
			return src, nil
		}
	}
	return Source{}, ErrSourceNotFound
}

// ForObject returns the first configured source for an object.
func (s *Service) ForObject(ctx context.Context, tenantID, object string) (Source, bool, error) {
	all, err := s.List(ctx, tenantID)
	if err != nil {
		return Source{}, false, err
	}
	for _, src := range all {
		if strings.EqualFold(src.ObjectName, object) {
			return src, true, nil
		}
	}
	return Source{}, false, nil
}

// NewDraft returns an unsaved source with a fresh ID and the next palette color.
func (s *Service) NewDraft(ctx context.Context, tenantID string) (Source, error) {
	existing, err := s.store.Load(ctx, tenantID)
	if err != nil {
		return Source{}, fmt.Errorf("loading sources: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return Source{}, fmt.Errorf("generating source id: %w", err)
	}
	draft := Source{
		ID:       id.String(),
		Color:    Palette[len(existing)%len(Palette)],
		IsActive: true,
		Filters:  []Filter{},
	}
	return draft.Decorate(), nil
}

// Save validates a draft and replaces the stored source with the same ID,
// or appends it when no such source exists.
func (s *Service) Save(ctx context.Context, tenantID string, draft Source) (Source, error) {
	if err := Validate(draft); err != nil {
		s.notifier.Notify(ctx, notify.Toast{
			Title:   "Missing required fields",
			Message: strings.TrimPrefix(err.Error(), ErrInvalidSource.Error()+": "),
			Variant: notify.VariantError,
		})
		return Source{}, err
	}

	existing, err := s.store.Load(ctx, tenantID)
	if err != nil {
		return Source{}, fmt.Errorf("loading sources: %w", err)
	}

	saved := draft.Clone()
	if strings.TrimSpace(saved.ID) == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return Source{}, fmt.Errorf("generating source id: %w", err)
		}
		saved.ID = id.String()
	}
	saved.Style = ""
	for i := range saved.Filters {
		saved.Filters[i].InputType = ""
	}

	next := make([]Source, 0, len(existing)+1)
	replaced := false
	for _, src := range existing {
		if src.ID == saved.ID {
			next = append(next, saved)
			replaced = true
			continue
		}
		next = append(next, src.Clone())
	}
	if !replaced {
		next = append(next, saved)
	}

	if err := s.store.Save(ctx, tenantID, next); err != nil {
		s.notifier.Notify(ctx, notify.Toast{
			Title:   "Could not save source",
			Message: err.Error(),
			Variant: notify.VariantError,
		})
		return Source{}, fmt.Errorf("saving sources: %w", err)
	}

	s.notifier.Notify(ctx, notify.Toast{
		Title:   "Source saved",
		Message: fmt.Sprintf("%s is now on the calendar", labelFor(saved)),
		Variant: notify.VariantSuccess,
	})
	return saved.Decorate(), nil
}

// Delete removes a source by ID.
func (s *Service) Delete(ctx context.Context, tenantID, id string) error {
	existing, err := s.store.Load(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("loading sources: %w", err)
	}
	next := make([]Source, 0, len(existing))
	for _, src := range existing {
		if src.ID != id {
			next = append(next, src.Clone())
		}
	}
	if len(next) == len(existing) {
		return ErrSourceNotFound
	}
	if err := s.store.Save(ctx, tenantID, next); err != nil {
		return fmt.Errorf("saving sources: %w", err)
	}
	s.notifier.Notify(ctx, notify.Toast{Title: "Source deleted", Variant: notify.VariantSuccess})
	return nil
}

// SetActive toggles whether a source contributes events.
func (s *Service) SetActive(ctx context.Context, tenantID, id string, active bool) (Source, error) {
	existing, err := s.store.Load(ctx, tenantID)
	if err != nil {
		return Source{}, fmt.Errorf("loading sources: %w", err)
	}
	next := make([]Source, len(existing))
	var updated *Source
	for i, src := range existing {
		next[i] = src.Clone()
		if src.ID == id {
			next[i].IsActive = active
			updated = &next[i]
		}
	}
	if updated == nil {
		return Source{}, ErrSourceNotFound
	}
	if err := s.store.Save(ctx, tenantID, next); err != nil {
		return Source{}, fmt.Errorf("saving sources: %w", err)
	}
	return updated.Decorate(), nil
}

// Objects lists the objects a source may be built on. Metadata failures
// degrade to an empty list.
func (s *Service) Objects(ctx context.Context) []FieldOption {
	objects, err := s.metadata.ListObjects(ctx)
	if err != nil {
		s.logger.Warn("listing objects failed", "error", err)
		return []FieldOption{}
	}
	return nonNil(objects)
}

// FieldOptions lists the fields offered when mapping an object. Each list
// degrades to empty on its own failure.
func (s *Service) FieldOptions(ctx context.Context, object string, titleType FieldType) FieldOptions {
	opts := FieldOptions{
		DateFields:  s.fields(ctx, "date", object, s.metadata.ListDateFields),
		UserFields:  s.fields(ctx, "user", object, s.metadata.ListUserReferenceFields),
		TitleFields: s.fields(ctx, "title", object, s.metadata.ListTitleCandidateFields),
		AllFields:   s.fields(ctx, "all", object, s.metadata.ListFields),
	}
	if titleType != "" {
		filtered := make([]FieldOption, 0, len(opts.TitleFields))
		for _, f := range opts.TitleFields {
			if strings.EqualFold(string(f.Type), string(titleType)) {
				filtered = append(filtered, f)
			}
		}
		opts.TitleFields = filtered
	}
	return opts
}

func (s *Service) fields(ctx context.Context, kind, object string, list func(context.Context, string) ([]FieldOption, error)) []FieldOption {
	if strings.TrimSpace(object) == "" {
		return []FieldOption{}
	}
	fields, err := list(ctx, object)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Warn("listing fields failed", "object", object, "kind", kind, "error", err)
		}
		return []FieldOption{}
	}
	return nonNil(fields)
}

func nonNil(opts []FieldOption) []FieldOption {
	if opts == nil {
		return []FieldOption{}
	}
	return opts
}

func labelFor(s Source) string {
	if s.ObjectLabel != "" {
		return s.ObjectLabel
	}
	return s.ObjectName
}
