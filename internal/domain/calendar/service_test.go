package calendar_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/crmcal/internal/domain/calendar"
	"github.com/rpggio/crmcal/internal/domain/event"
	"github.com/rpggio/crmcal/internal/domain/grid"
	"github.com/rpggio/crmcal/internal/domain/settings"
	"github.com/rpggio/crmcal/internal/domain/source"
	"github.com/rpggio/crmcal/internal/notify"
	"github.com/rpggio/crmcal/internal/repository/mocks"
)

var (
	fixedNow = time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)

	oppSource = source.Source{
		ID: "s1", ObjectName: "Opportunity", StartField: "CloseDate", TitleField: "Name", Color: "#1589ee", IsActive: true,
	}
	taskSource = source.Source{
		ID: "s2", ObjectName: "Task", StartField: "ActivityDate", TitleField: "Subject", Color: "#04844b", IsActive: true,
	}
)

type observer struct {
	mu     sync.Mutex
	failed []string
	calls  int
}

func (o *observer) ObserveRefresh(_ time.Duration, _ int, failed []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	o.failed = append(o.failed, failed...)
}

func newService(lister *mocks.SourceLister, query *mocks.QueryService, reader *mocks.SettingsReader, n notify.Notifier, obs calendar.Observer) *calendar.Service {
	cfg := calendar.Config{
		Sources:  lister,
		Query:    query,
		Notifier: n,
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
	}
	if reader != nil {
		cfg.Settings = reader
	}
	if obs != nil {
		cfg.Observer = obs
	}
	return calendar.NewService(cfg)
}

func bySource(id string) interface{} {
	return mock.MatchedBy(func(q calendar.Query) bool { return q.Source.ID == id })
}

func TestRefresh_JoinsSourcesAndIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	lister := &mocks.SourceLister{}
	lister.On("Active", ctx, "tenant1").Return([]source.Source{oppSource, taskSource}, nil)

	query := &mocks.QueryService{}
	query.On("QueryEvents", mock.Anything, bySource("s1")).Return([]event.Record{
		{"Id": "006B", "Name": "Beta", "CloseDate": "2024-05-20"},
		{"Id": "006A", "Name": "Alpha", "CloseDate": "2024-05-03"},
	}, nil)
	query.On("QueryEvents", mock.Anything, bySource("s2")).Return(nil, errors.New("insufficient access"))

	rec := notify.NewRecorder(nil)
	obs := &observer{}
	svc := newService(lister, query, nil, rec, obs)

	snap, err := svc.Refresh(ctx, "tenant1", calendar.RenderRequest{View: grid.ViewMonth, Anchor: "2024-05-15"})
	require.NoError(t, err)
	require.Len(t, snap.Events, 2)
	require.Equal(t, "006A", snap.Events[0].ID)
	require.Equal(t, "#1589ee", snap.Events[0].Color)
	require.Equal(t, []calendar.Failure{{SourceID: "s2", Object: "Task", Error: "insufficient access"}}, snap.Failures)
	require.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), snap.From)
	require.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), snap.To)

	toasts := rec.Toasts()
	require.Len(t, toasts, 1)
	require.Equal(t, notify.VariantWarning, toasts[0].Variant)
	require.Equal(t, []string{"Task"}, obs.failed)
}

func TestRefresh_QueryWindowMatchesView(t *testing.T) {
	ctx := context.Background()
	lister := &mocks.SourceLister{}
	lister.On("Active", ctx, "tenant1").Return([]source.Source{oppSource}, nil)

	query := &mocks.QueryService{}
	query.On("QueryEvents", mock.Anything, mock.MatchedBy(func(q calendar.Query) bool {
		return q.From.Equal(time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC)) &&
			q.To.Equal(time.Date(2024, 5, 19, 0, 0, 0, 0, time.UTC)) &&
			q.OwnerID == "005U"
	})).Return([]event.Record{}, nil)

	svc := newService(lister, query, nil, nil, nil)
	_, err := svc.Refresh(ctx, "tenant1", calendar.RenderRequest{View: grid.ViewWeek, Anchor: "2024-05-15", OwnerID: "005U"})
	require.NoError(t, err)
	query.AssertExpectations(t)
}

func TestRefresh_SourceListFailureYieldsEmpty(t *testing.T) {
	ctx := context.Background()
	lister := &mocks.SourceLister{}
	lister.On("Active", ctx, "tenant1").Return(nil, errors.New("db down"))

	svc := newService(lister, &mocks.QueryService{}, nil, nil, nil)
	snap, err := svc.Refresh(ctx, "tenant1", calendar.RenderRequest{})
	require.NoError(t, err)
	require.NotNil(t, snap.Events)
	require.Empty(t, snap.Events)
	require.Equal(t, grid.ViewMonth, snap.View)
	require.Equal(t, "2024-05-15", snap.Anchor)
}

func TestRefresh_InvalidInput(t *testing.T) {
	svc := newService(&mocks.SourceLister{}, &mocks.QueryService{}, nil, nil, nil)

	_, err := svc.Refresh(context.Background(), "tenant1", calendar.RenderRequest{View: "year"})
	require.ErrorIs(t, err, grid.ErrInvalidView)

	_, err = svc.Refresh(context.Background(), "tenant1", calendar.RenderRequest{Anchor: "05/15/2024"})
	require.ErrorIs(t, err, grid.ErrInvalidDate)
}

func TestRender_CapFromSettings(t *testing.T) {
	ctx := context.Background()
	lister := &mocks.SourceLister{}
	lister.On("Active", ctx, "tenant1").Return([]source.Source{oppSource}, nil)

	records := make([]event.Record, 0, 5)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		records = append(records, event.Record{"Id": id, "Name": id, "CloseDate": "2024-05-15"})
	}
	query := &mocks.QueryService{}
	query.On("QueryEvents", mock.Anything, mock.Anything).Return(records, nil)

	reader := &mocks.SettingsReader{}
	reader.On("Get", ctx, "tenant1").Return(settings.Settings{DayCap: 2}, nil)

	svc := newService(lister, query, reader, nil, nil)
	out, err := svc.Render(ctx, "tenant1", calendar.RenderRequest{View: grid.ViewMonth, Anchor: "2024-05-15"})
	require.NoError(t, err)
	require.Equal(t, 5, out.EventCount)
	require.False(t, out.Stale)

	cell, ok := out.Grid.Month.Cell("2024-05-15")
	require.True(t, ok)
	require.Len(t, cell.Events, 2)
	require.True(t, cell.HasMore)
	require.Equal(t, 3, cell.MoreCount)
	require.True(t, cell.IsToday)

	out, err = svc.Render(ctx, "tenant1", calendar.RenderRequest{View: grid.ViewMonth, Anchor: "2024-05-15", Cap: 10})
	require.NoError(t, err)
	cell, _ = out.Grid.Month.Cell("2024-05-15")
	require.Len(t, cell.Events, 5)
	require.False(t, cell.HasMore)
}

func TestRender_GenerationsIncrease(t *testing.T) {
	ctx := context.Background()
	lister := &mocks.SourceLister{}
	lister.On("Active", ctx, "tenant1").Return([]source.Source{}, nil)

	svc := newService(lister, &mocks.QueryService{}, nil, nil, nil)
	first, err := svc.Render(ctx, "tenant1", calendar.RenderRequest{})
	require.NoError(t, err)
	second, err := svc.Render(ctx, "tenant1", calendar.RenderRequest{})
	require.NoError(t, err)
	require.Greater(t, second.Generation, first.Generation)

	latest, ok := svc.Latest("tenant1")
	require.True(t, ok)
	require.Equal(t, second.Generation, latest.Generation)
}

func TestRender_OlderGenerationIsDiscarded(t *testing.T) {
	ctx := context.Background()
	lister := &mocks.SourceLister{}
	lister.On("Active", mock.Anything, "tenant1").Return([]source.Source{oppSource}, nil)

	release := make(chan struct{})
	started := make(chan struct{})
	query := &mocks.QueryService{}
	query.On("QueryEvents", mock.Anything, mock.MatchedBy(func(q calendar.Query) bool {
		return q.OwnerID == "slow"
	})).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return([]event.Record{}, nil)
	query.On("QueryEvents", mock.Anything, mock.Anything).Return([]event.Record{}, nil)

	svc := newService(lister, query, nil, nil, nil)

	var slow calendar.Rendered
	var slowErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		slow, slowErr = svc.Render(ctx, "tenant1", calendar.RenderRequest{OwnerID: "slow"})
	}()

	<-started
	fast, err := svc.Render(ctx, "tenant1", calendar.RenderRequest{OwnerID: "fast"})
	require.NoError(t, err)
	require.False(t, fast.Stale)

	close(release)
	<-done
	require.NoError(t, slowErr)
	require.True(t, slow.Stale)
	require.Less(t, slow.Generation, fast.Generation)

	latest, _ := svc.Latest("tenant1")
	require.Equal(t, fast.Generation, latest.Generation)
}

func TestShowMore_ReusesLatestSnapshot(t *testing.T) {
	ctx := context.Background()
	lister := &mocks.SourceLister{}
	lister.On("Active", ctx, "tenant1").Return([]source.Source{oppSource}, nil).Once()

	records := make([]event.Record, 0, 6)
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		records = append(records, event.Record{"Id": id, "Name": id, "CloseDate": "2024-05-03"})
	}
	query := &mocks.QueryService{}
	query.On("QueryEvents", mock.Anything, mock.Anything).Return(records, nil).Once()

	svc := newService(lister, query, nil, nil, nil)
	_, err := svc.Render(ctx, "tenant1", calendar.RenderRequest{View: grid.ViewMonth, Anchor: "2024-05-15"})
	require.NoError(t, err)

	more, err := svc.ShowMore(ctx, "tenant1", calendar.MoreRequest{
		View:     grid.ViewMonth,
		Anchor:   "2024-05-15",
		Date:     "2024-05-03",
		Point:    grid.Point{X: 900, Y: 100},
		Viewport: grid.Size{Width: 1000, Height: 800},
	})
	require.NoError(t, err)
	require.Len(t, more.List.Events, 6)
	require.True(t, more.Placement.FlipX)
	require.Equal(t, float64(900-280), more.Placement.Left)
	lister.AssertExpectations(t)
	query.AssertExpectations(t)
}

func TestShowMore_CellOutsideView(t *testing.T) {
	ctx := context.Background()
	lister := &mocks.SourceLister{}
	lister.On("Active", ctx, "tenant1").Return([]source.Source{}, nil)

	svc := newService(lister, &mocks.QueryService{}, nil, nil, nil)
	_, err := svc.ShowMore(ctx, "tenant1", calendar.MoreRequest{View: grid.ViewMonth, Anchor: "2024-05-15", Date: "2024-07-01"})
	require.ErrorIs(t, err, calendar.ErrCellNotFound)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	lister := &mocks.SourceLister{}
	lister.On("Active", ctx, "tenant1").Return([]source.Source{oppSource}, nil)
	query := &mocks.QueryService{}
	query.On("QueryEvents", mock.Anything, mock.Anything).Return([]event.Record{
		{"Id": "006A", "Name": "Renewal", "CloseDate": "2024-05-03"},
	}, nil)

	svc := newService(lister, query, nil, nil, nil)
	out, err := svc.Export(ctx, "tenant1", calendar.RenderRequest{View: grid.ViewMonth, Anchor: "2024-05-15"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	require.Contains(t, out, "SUMMARY:Renewal")
	require.Contains(t, out, "006A.s1@crmcal")
}

func TestPopoverSize(t *testing.T) {
	require.Equal(t, grid.Size{Width: 280, Height: 48 + 28*3}, calendar.PopoverSize(3))
	require.Equal(t, float64(360), calendar.PopoverSize(100).Height)
}
