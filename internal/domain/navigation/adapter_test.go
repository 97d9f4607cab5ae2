package navigation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/crmcal/internal/domain/grid"
	"github.com/rpggio/crmcal/internal/domain/navigation"
	"github.com/rpggio/crmcal/internal/domain/settings"
	"github.com/rpggio/crmcal/internal/domain/source"
	"github.com/rpggio/crmcal/internal/repository/mocks"
)

type fixture struct {
	sources   *mocks.SourceFinder
	fields    *mocks.MetadataService
	settings  *mocks.SettingsReader
	navigator *mocks.Navigator
	adapter   *navigation.Adapter
}

func newFixture() *fixture {
	f := &fixture{
		sources:   &mocks.SourceFinder{},
		fields:    &mocks.MetadataService{},
		settings:  &mocks.SettingsReader{},
		navigator: &mocks.Navigator{},
	}
	f.adapter = navigation.NewAdapter(f.sources, f.fields, f.settings, f.navigator, nil)
	return f
}

var eventFields = []source.FieldOption{
	{Value: "StartDateTime", Type: source.FieldTypeDateTime},
	{Value: "EndDateTime", Type: source.FieldTypeDateTime},
	{Value: "Subject", Type: source.FieldTypeString},
}

func TestCreateRecord_WeekSlotUsesDateTime(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.sources.On("ForObject", ctx, "tenant1", "Event").Return(source.Source{}, false, nil)
	f.fields.On("ListFields", ctx, "Event").Return(eventFields, nil)
	f.navigator.On("OpenRecordCreate", ctx, "Event", map[string]string{
		"StartDateTime": "2024-05-10T13:00:00.000Z",
		"EndDateTime":   "2024-05-10T14:00:00.000Z",
	}).Return(navigation.PageReference{Type: "standard__objectPage"}, nil)

	ref, err := f.adapter.CreateRecord(ctx, "tenant1", navigation.Click{
		Object:   "Event",
		Date:     "2024-05-10",
		DateTime: "2024-05-10T13:00:00.000Z",
		View:     grid.ViewWeek,
	})
	require.NoError(t, err)
	require.Equal(t, "standard__objectPage", ref.Type)
	f.navigator.AssertExpectations(t)
}

func TestCreateRecord_MonthDateTimeIsUTCMidnight(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.sources.On("ForObject", ctx, "tenant1", "Event").Return(source.Source{}, false, nil)
	f.fields.On("ListFields", ctx, "Event").Return(eventFields, nil)
	f.navigator.On("OpenRecordCreate", ctx, "Event", map[string]string{
		"StartDateTime": "2024-05-10T00:00:00.000Z",
		"EndDateTime":   "2024-05-10T01:00:00.000Z",
	}).Return(navigation.PageReference{}, nil)

	_, err := f.adapter.CreateRecord(ctx, "tenant1", navigation.Click{
		Object:   "Event",
		Date:     "2024-05-10",
		DateTime: "2024-05-10T13:00:00.000Z",
		View:     grid.ViewMonth,
	})
	require.NoError(t, err)
	f.navigator.AssertExpectations(t)
}

func TestCreateRecord_ConfiguredSourceDateFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.sources.On("ForObject", ctx, "tenant1", "Campaign").Return(source.Source{
		ObjectName: "Campaign", StartField: "StartDate", EndField: "EndDate",
	}, true, nil)
	f.fields.On("ListFields", ctx, "Campaign").Return([]source.FieldOption{
		{Value: "StartDate", Type: "date"},
		{Value: "EndDate", Type: source.FieldTypeDate},
	}, nil)
	f.navigator.On("OpenRecordCreate", ctx, "Campaign", map[string]string{
		"StartDate": "2024-05-10",
		"EndDate":   "2024-05-10",
	}).Return(navigation.PageReference{}, nil)

	_, err := f.adapter.CreateRecord(ctx, "tenant1", navigation.Click{Object: "Campaign", Date: "2024-05-10", View: grid.ViewMonth})
	require.NoError(t, err)
	f.navigator.AssertExpectations(t)
}

func TestCreateRecord_FieldNamesIgnoreCase(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.sources.On("ForObject", ctx, "tenant1", "Contract").Return(source.Source{
		ObjectName: "Contract", StartField: "startdate", EndField: "LASTMODIFIEDDATE",
	}, true, nil)
	f.fields.On("ListFields", ctx, "Contract").Return([]source.FieldOption{
		{Value: "StartDate", Type: source.FieldTypeDate},
		{Value: "LastModifiedDate", Type: source.FieldTypeDateTime},
	}, nil)
	f.navigator.On("OpenRecordCreate", ctx, "Contract", map[string]string{"startdate": "2024-05-10"}).
		Return(navigation.PageReference{}, nil)

	_, err := f.adapter.CreateRecord(ctx, "tenant1", navigation.Click{Object: "Contract", Date: "2024-05-10", View: grid.ViewMonth})
	require.NoError(t, err)
	f.navigator.AssertExpectations(t)
}

func TestIsAuditField(t *testing.T) {
	require.True(t, navigation.IsAuditField("CreatedDate"))
	require.True(t, navigation.IsAuditField("systemmodstamp"))
	require.False(t, navigation.IsAuditField("StartDate"))
}

func TestCreateRecord_DefaultObject(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.settings.On("Get", ctx, "tenant1").Return(settings.Settings{DefaultObject: "Task"}, nil)
	f.sources.On("ForObject", ctx, "tenant1", "Task").Return(source.Source{}, false, nil)
	f.fields.On("ListFields", ctx, "Task").Return([]source.FieldOption{{Value: "ActivityDate", Type: source.FieldTypeDate}}, nil)
	f.navigator.On("OpenRecordCreate", ctx, "Task", map[string]string{"ActivityDate": "2024-02-29"}).
		Return(navigation.PageReference{}, nil)

	_, err := f.adapter.CreateRecord(ctx, "tenant1", navigation.Click{Date: "2024-02-29", View: grid.ViewMonth})
	require.NoError(t, err)
	f.navigator.AssertExpectations(t)
}

func TestCreateRecord_PlainPage(t *testing.T) {
	tests := []struct {
		name   string
		object string
		source source.Source
		fields []source.FieldOption
		errFn  error
	}{
		{name: "no date field", object: "Case"},
		{name: "audit start field", object: "Account", source: source.Source{StartField: "CreatedDate"}},
		{
			name:   "audit start field in other case",
			object: "Account",
			source: source.Source{StartField: "createddate"},
			fields: []source.FieldOption{{Value: "CreatedDate", Type: source.FieldTypeDateTime}},
		},
		{name: "describe fails", object: "Event", errFn: errors.New("describe failed")},
		{name: "unknown field type", object: "Event", fields: []source.FieldOption{{Value: "StartDateTime", Type: source.FieldTypeString}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture()
			f.sources.On("ForObject", ctx, "tenant1", tt.object).Return(tt.source, tt.source.StartField != "", nil)
			f.fields.On("ListFields", ctx, tt.object).Return(tt.fields, tt.errFn)
			f.navigator.On("OpenRecordCreate", ctx, tt.object, map[string]string(nil)).
				Return(navigation.PageReference{}, nil)

			_, err := f.adapter.CreateRecord(ctx, "tenant1", navigation.Click{Object: tt.object, Date: "2024-05-10", View: grid.ViewDay})
			require.NoError(t, err)
			f.navigator.AssertExpectations(t)
		})
	}
}

func TestCreateRecord_NoObject(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.settings.On("Get", ctx, "tenant1").Return(settings.Settings{}, nil)

	_, err := f.adapter.CreateRecord(ctx, "tenant1", navigation.Click{Date: "2024-05-10"})
	require.ErrorIs(t, err, navigation.ErrNoObject)
	f.navigator.AssertNotCalled(t, "OpenRecordCreate", mock.Anything, mock.Anything, mock.Anything)
}

func TestViewRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.navigator.On("OpenRecordView", ctx, "006A", "Opportunity").Return(navigation.PageReference{URL: "/lightning/r/Opportunity/006A/view"}, nil)

	ref, err := f.adapter.ViewRecord(ctx, "006A", "Opportunity")
	require.NoError(t, err)
	require.Equal(t, "/lightning/r/Opportunity/006A/view", ref.URL)

	_, err = f.adapter.ViewRecord(ctx, "", "Opportunity")
	require.ErrorIs(t, err, navigation.ErrInvalidRecord)
}
