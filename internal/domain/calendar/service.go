package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rpggio/crmcal/internal/domain/event"
	"github.com/rpggio/crmcal/internal/domain/grid"
	"github.com/rpggio/crmcal/internal/domain/source"
	"github.com/rpggio/crmcal/internal/ics"
	"github.com/rpggio/crmcal/internal/notify"
)

const defaultConcurrency = 4

// Observer receives refresh measurements.
type Observer interface {
	ObserveRefresh(d time.Duration, events int, failedObjects []string)
}

// Config wires a calendar service.
type Config struct {
	Sources     SourceLister
	Settings    SettingsReader
	Query       QueryService
	Notifier    notify.Notifier
	Observer    Observer
	Location    *time.Location
	Concurrency int
	Logger      *slog.Logger
	Now         func() time.Time
}

// Service refreshes events from every active source and renders grids.
type Service struct {
	sources     SourceLister
	settings    SettingsReader
	query       QueryService
	notifier    notify.Notifier
	observer    Observer
	loc         *time.Location
	concurrency int
	logger      *slog.Logger
	now         func() time.Time

	generation atomic.Uint64
	mu         sync.Mutex
	latest     map[string]Snapshot
}

// NewService creates a new calendar service.
func NewService(cfg Config) *Service {
	s := &Service{
		sources:     cfg.Sources,
		settings:    cfg.Settings,
		query:       cfg.Query,
		notifier:    cfg.Notifier,
		observer:    cfg.Observer,
		loc:         cfg.Location,
		concurrency: cfg.Concurrency,
		logger:      cfg.Logger,
		now:         cfg.Now,
		latest:      make(map[string]Snapshot),
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.concurrency <= 0 {
		s.concurrency = defaultConcurrency
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.notifier == nil {
		s.notifier = notify.NewLogNotifier(s.logger)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Location is the time zone grids are built in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Refresh queries every active source for the view's window, one query per
// source in parallel. A failing source contributes no events and is listed
// in the snapshot's failures; it never fails the refresh.
func (s *Service) Refresh(ctx context.Context, tenantID string, req RenderRequest) (Snapshot, error) {
	view, anchor, err := s.resolve(req.View, req.Anchor)
	if err != nil {
		return Snapshot{}, err
	}
	from, to := grid.Window(view, anchor, s.loc)

	snap := Snapshot{
		Generation: s.generation.Add(1),
		View:       view,
		Anchor:     grid.FormatDate(anchor),
		OwnerID:    req.OwnerID,
		From:       from,
		To:         to,
		Events:     []event.Event{},
	}
	started := s.now()

	sources, err := s.sources.Active(ctx, tenantID)
	if err != nil {
		s.logger.Error("loading sources failed", "tenant_id", tenantID, "error", err)
		return snap, nil
	}

	results := make([][]event.Event, len(sources))
	failures := make([]*Failure, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, src := range sources {
		g.Go(func() error {
			records, err := s.query.QueryEvents(gctx, Query{
				Source:  src,
				From:    from,
				To:      to,
				OwnerID: req.OwnerID,
			})
			if err != nil {
				s.logger.Warn("source query failed", "tenant_id", tenantID, "source_id", src.ID, "object", src.ObjectName, "error", err)
				failures[i] = &Failure{SourceID: src.ID, Object: src.ObjectName, Error: err.Error()}
				return nil
			}
			results[i] = event.Normalize(records, src.Mapping(), s.loc)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("refreshing calendar: %w", err)
	}

	var failedObjects []string
	for i := range sources {
		snap.Events = append(snap.Events, results[i]...)
		if failures[i] != nil {
			snap.Failures = append(snap.Failures, *failures[i])
			failedObjects = append(failedObjects, failures[i].Object)
		}
	}
	event.SortEvents(snap.Events)

	if len(failedObjects) > 0 {
		s.notifier.Notify(ctx, notify.Toast{
			Title:   "Some events could not be loaded",
			Message: strings.Join(failedObjects, ", "),
			Variant: notify.VariantWarning,
		})
	}
	if s.observer != nil {
		s.observer.ObserveRefresh(s.now().Sub(started), len(snap.Events), failedObjects)
	}

	s.logger.Debug("calendar refreshed",
		"tenant_id", tenantID,
		"generation", snap.Generation,
		"objects", sourceObjects(sources),
		"events", len(snap.Events),
		"failures", len(snap.Failures),
	)
	return snap, nil
}

// commit stores snap as the tenant's latest unless a newer generation is
// already stored. It reports whether snap was kept.
func (s *Service) commit(tenantID string, snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.latest[tenantID]; ok && cur.Generation > snap.Generation {
		return false
	}
	s.latest[tenantID] = snap
	return true
}

// Latest returns the newest committed snapshot for a tenant.
func (s *Service) Latest(tenantID string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.latest[tenantID]
	return snap, ok
}

// Render refreshes and builds the grid for a view.
func (s *Service) Render(ctx context.Context, tenantID string, req RenderRequest) (Rendered, error) {
	snap, err := s.Refresh(ctx, tenantID, req)
	if err != nil {
		return Rendered{}, err
	}
	kept := s.commit(tenantID, snap)

	g, err := s.build(ctx, tenantID, snap, req.Cap)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{
		Grid:       g,
		Generation: snap.Generation,
		Stale:      !kept,
		EventCount: len(snap.Events),
		Failures:   snap.Failures,
	}, nil
}

// ShowMore returns the full list behind a cell or hour slot and the popover
// placement for it. The latest snapshot is reused when it covers the same
// window.
func (s *Service) ShowMore(ctx context.Context, tenantID string, req MoreRequest) (MoreResult, error) {
	view, anchor, err := s.resolve(req.View, req.Anchor)
	if err != nil {
		return MoreResult{}, err
	}
	if _, err := grid.ParseDate(req.Date, s.loc); err != nil {
		return MoreResult{}, err
	}
	from, to := grid.Window(view, anchor, s.loc)

	snap, ok := s.Latest(tenantID)
	if !ok || !snap.covers(view, from, to, req.OwnerID) {
		snap, err = s.Refresh(ctx, tenantID, RenderRequest{View: view, Anchor: grid.FormatDate(anchor), OwnerID: req.OwnerID})
		if err != nil {
			return MoreResult{}, err
		}
		s.commit(tenantID, snap)
	}

	g, err := s.build(ctx, tenantID, snap, req.Cap)
	if err != nil {
		return MoreResult{}, err
	}
	list, ok := g.More(req.Date, req.Hour)
	if !ok {
		return MoreResult{}, fmt.Errorf("%w: %s", ErrCellNotFound, req.Date)
	}

	size := PopoverSize(len(list.Events))
	return MoreResult{
		List:      list,
		Placement: grid.PlacePopover(req.Point, size, req.Viewport),
		Size:      size,
	}, nil
}

// Export refreshes the view's window and renders it as iCalendar text.
func (s *Service) Export(ctx context.Context, tenantID string, req RenderRequest) (string, error) {
	snap, err := s.Refresh(ctx, tenantID, req)
	if err != nil {
		return "", err
	}
	s.commit(tenantID, snap)

	events := make([]event.Event, 0, len(snap.Events))
	for _, e := range snap.Events {
		if e.Start.Before(snap.To) && !e.End.Before(snap.From) {
			events = append(events, e)
		}
	}
	name := fmt.Sprintf("Calendar %s (%s)", snap.Anchor, snap.View)
	return ics.Encode(name, events, s.now()), nil
}

func (s *Service) build(ctx context.Context, tenantID string, snap Snapshot, reqCap int) (grid.Grid, error) {
	anchor, err := grid.ParseDate(snap.Anchor, s.loc)
	if err != nil {
		return grid.Grid{}, err
	}
	return grid.Build(snap.View, snap.Events, anchor, grid.Options{
		Location: s.loc,
		Cap:      s.dayCap(ctx, tenantID, reqCap),
		Now:      s.now(),
	}), nil
}

func (s *Service) dayCap(ctx context.Context, tenantID string, requested int) int {
	if requested > 0 {
		return requested
	}
	if s.settings != nil {
		st, err := s.settings.Get(ctx, tenantID)
		if err != nil {
			s.logger.Warn("reading day cap failed", "tenant_id", tenantID, "error", err)
		} else if st.DayCap > 0 {
			return st.DayCap
		}
	}
	return grid.DefaultCap
}

func (s *Service) resolve(view grid.View, anchor string) (grid.View, time.Time, error) {
	v, err := grid.ParseView(string(view))
	if err != nil {
		return "", time.Time{}, err
	}
	if strings.TrimSpace(anchor) == "" {
		now := s.now().In(s.loc)
		return v, time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc), nil
	}
	day, err := grid.ParseDate(anchor, s.loc)
	if err != nil {
		return "", time.Time{}, err
	}
	return v, day, nil
}

// sourceObjects lists the object names of sources, for logging.
func sourceObjects(sources []source.Source) []string {
	out := make([]string, 0, len(sources))
	for _, src := range sources {
		out = append(out, src.ObjectName)
	}
	return out
}
