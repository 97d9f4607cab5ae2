package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rpggio/crmcal/internal/domain/activity"
	"github.com/rpggio/crmcal/internal/domain/calendar"
	"github.com/rpggio/crmcal/internal/domain/event"
	"github.com/rpggio/crmcal/internal/domain/navigation"
	"github.com/rpggio/crmcal/internal/domain/settings"
	"github.com/rpggio/crmcal/internal/domain/source"
)

// SourceRepository is a mock for repository.SourceRepository.
type SourceRepository struct {
	mock.Mock
}

func (m *SourceRepository) Load(ctx context.Context, tenantID string) ([]source.Source, error) {
	args := m.Called(ctx, tenantID)
	if list, ok := args.Get(0).([]source.Source); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SourceRepository) Save(ctx context.Context, tenantID string, sources []source.Source) error {
	args := m.Called(ctx, tenantID, sources)
	return args.Error(0)
}

// SettingsRepository is a mock for repository.SettingsRepository.
type SettingsRepository struct {
	mock.Mock
}

func (m *SettingsRepository) Get(ctx context.Context, tenantID, key string) (string, bool, error) {
	args := m.Called(ctx, tenantID, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *SettingsRepository) Set(ctx context.Context, tenantID, key, value string) error {
	args := m.Called(ctx, tenantID, key, value)
	return args.Error(0)
}

func (m *SettingsRepository) Delete(ctx context.Context, tenantID, key string) error {
	args := m.Called(ctx, tenantID, key)
	return args.Error(0)
}

func (m *SettingsRepository) List(ctx context.Context, tenantID string) (map[string]string, error) {
	args := m.Called(ctx, tenantID)
	if values, ok := args.Get(0).(map[string]string); ok {
		return values, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for repository.ActivityRepository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, tenantID, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, tenantID, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// MetadataService is a mock for source.MetadataService.
type MetadataService struct {
	mock.Mock
}

func (m *MetadataService) options(args mock.Arguments) ([]source.FieldOption, error) {
	if list, ok := args.Get(0).([]source.FieldOption); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MetadataService) ListObjects(ctx context.Context) ([]source.FieldOption, error) {
	return m.options(m.Called(ctx))
}

func (m *MetadataService) ListFields(ctx context.Context, object string) ([]source.FieldOption, error) {
	return m.options(m.Called(ctx, object))
}

func (m *MetadataService) ListDateFields(ctx context.Context, object string) ([]source.FieldOption, error) {
	return m.options(m.Called(ctx, object))
}

func (m *MetadataService) ListUserReferenceFields(ctx context.Context, object string) ([]source.FieldOption, error) {
	return m.options(m.Called(ctx, object))
}

func (m *MetadataService) ListTitleCandidateFields(ctx context.Context, object string) ([]source.FieldOption, error) {
	return m.options(m.Called(ctx, object))
}

// QueryService is a mock for calendar.QueryService.
type QueryService struct {
	mock.Mock
}

func (m *QueryService) QueryEvents(ctx context.Context, q calendar.Query) ([]event.Record, error) {
	args := m.Called(ctx, q)
	if list, ok := args.Get(0).([]event.Record); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// SourceLister is a mock for calendar.SourceLister.
type SourceLister struct {
	mock.Mock
}

func (m *SourceLister) Active(ctx context.Context, tenantID string) ([]source.Source, error) {
	args := m.Called(ctx, tenantID)
	if list, ok := args.Get(0).([]source.Source); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// SettingsReader is a mock for calendar.SettingsReader and navigation.SettingsReader.
type SettingsReader struct {
	mock.Mock
}

func (m *SettingsReader) Get(ctx context.Context, tenantID string) (settings.Settings, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(settings.Settings), args.Error(1)
}

// SourceFinder is a mock for navigation.SourceFinder.
type SourceFinder struct {
	mock.Mock
}

func (m *SourceFinder) ForObject(ctx context.Context, tenantID, object string) (source.Source, bool, error) {
	args := m.Called(ctx, tenantID, object)
	return args.Get(0).(source.Source), args.Bool(1), args.Error(2)
}

// Navigator is a mock for navigation.Navigator.
type Navigator struct {
	mock.Mock
}

func (m *Navigator) OpenRecordCreate(ctx context.Context, object string, defaults map[string]string) (navigation.PageReference, error) {
	args := m.Called(ctx, object, defaults)
	return args.Get(0).(navigation.PageReference), args.Error(1)
}

func (m *Navigator) OpenRecordView(ctx context.Context, id, object string) (navigation.PageReference, error) {
	args := m.Called(ctx, id, object)
	return args.Get(0).(navigation.PageReference), args.Error(1)
}
