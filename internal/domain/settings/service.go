package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Storage keys.
const (
	KeyTheme         = "calendarTheme"
	KeyDayCap        = "calendarDayCap"
	KeyDefaultObject = "calendarDefaultObject"
)

const (
	MinDayCap = 1
	MaxDayCap = 20
)

// Settings is the tenant's calendar display configuration.
type Settings struct {
	Theme         Theme  `json:"theme"`
	DayCap        int    `json:"day_cap"`
	DefaultObject string `json:"default_object"`
}

// Defaults seeds values for tenants that have not stored their own.
type Defaults struct {
	DayCap        int
	DefaultObject string
}

// Service reads and writes display settings.
type Service struct {
	store    Store
	defaults Defaults
	logger   *slog.Logger
}

// NewService creates a new settings service.
func NewService(store Store, defaults Defaults, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if defaults.DayCap < MinDayCap || defaults.DayCap > MaxDayCap {
		defaults.DayCap = 4
	}
	if strings.TrimSpace(defaults.DefaultObject) == "" {
		defaults.DefaultObject = "Event"
	}
	return &Service{store: store, defaults: defaults, logger: logger}
}

// Get returns the stored settings, falling back to defaults for any value
// that is missing or malformed.
func (s *Service) Get(ctx context.Context, tenantID string) (Settings, error) {
	theme, err := s.theme(ctx, tenantID)
	if err != nil {
		return Settings{}, err
	}
	out := Settings{Theme: theme, DayCap: s.defaults.DayCap, DefaultObject: s.defaults.DefaultObject}

	raw, ok, err := s.store.Get(ctx, tenantID, KeyDayCap)
	if err != nil {
		return Settings{}, fmt.Errorf("getting day cap: %w", err)
	}
	if ok {
		n, convErr := strconv.Atoi(strings.TrimSpace(raw))
		if convErr == nil && n >= MinDayCap && n <= MaxDayCap {
			out.DayCap = n
		} else {
			s.logger.Warn("ignoring stored day cap", "tenant_id", tenantID, "value", raw)
		}
	}

	raw, ok, err = s.store.Get(ctx, tenantID, KeyDefaultObject)
	if err != nil {
		return Settings{}, fmt.Errorf("getting default object: %w", err)
	}
	if ok && strings.TrimSpace(raw) != "" {
		out.DefaultObject = strings.TrimSpace(raw)
	}
	return out, nil
}

// UpdateTheme applies color changes keyed by theme key. Either every change
// applies or none does.
func (s *Service) UpdateTheme(ctx context.Context, tenantID string, changes map[string]string) (Theme, error) {
	theme, err := s.theme(ctx, tenantID)
	if err != nil {
		return Theme{}, err
	}
	for key, value := range changes {
		theme, err = theme.SetColor(key, value)
		if err != nil {
			return Theme{}, err
		}
	}
	data, err := json.Marshal(theme)
	if err != nil {
		return Theme{}, fmt.Errorf("encoding theme: %w", err)
	}
	if err := s.store.Set(ctx, tenantID, KeyTheme, string(data)); err != nil {
		return Theme{}, fmt.Errorf("saving theme: %w", err)
	}
	return theme, nil
}

// ValidateDayCap rejects a cap outside MinDayCap..MaxDayCap.
func ValidateDayCap(n int) error {
	if n < MinDayCap || n > MaxDayCap {
		return fmt.Errorf("%w: %d not in %d..%d", ErrInvalidDayCap, n, MinDayCap, MaxDayCap)
	}
	return nil
}

// SetDayCap stores the number of events shown per cell before "+N more".
func (s *Service) SetDayCap(ctx context.Context, tenantID string, n int) error {
	if err := ValidateDayCap(n); err != nil {
		return err
	}
	if err := s.store.Set(ctx, tenantID, KeyDayCap, strconv.Itoa(n)); err != nil {
		return fmt.Errorf("saving day cap: %w", err)
	}
	return nil
}

// SetDefaultObject stores the object created when a click has no object.
// An empty value restores the configured default.
func (s *Service) SetDefaultObject(ctx context.Context, tenantID, object string) error {
	if err := s.store.Set(ctx, tenantID, KeyDefaultObject, strings.TrimSpace(object)); err != nil {
		return fmt.Errorf("saving default object: %w", err)
	}
	return nil
}

func (s *Service) theme(ctx context.Context, tenantID string) (Theme, error) {
	raw, ok, err := s.store.Get(ctx, tenantID, KeyTheme)
	if err != nil {
		return Theme{}, fmt.Errorf("getting theme: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return DefaultTheme(), nil
	}
	var stored Theme
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.logger.Warn("ignoring malformed theme", "tenant_id", tenantID, "error", err)
		return DefaultTheme(), nil
	}
	return stored.withDefaults(), nil
}
