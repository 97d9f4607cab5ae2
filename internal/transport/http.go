package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rpggio/crmcal/internal/domain/calendar"
	"github.com/rpggio/crmcal/internal/domain/grid"
)

// MCPHandler handles MCP method dispatch.
type MCPHandler interface {
	Handle(ctx context.Context, tenantID, sessionID, method string, params json.RawMessage) (any, error)
}

// CalendarExporter renders a view window as iCalendar text.
type CalendarExporter interface {
	Export(ctx context.Context, tenantID string, req calendar.RenderRequest) (string, error)
}

// Option configures optional routes.
type Option func(*options)

type options struct {
	metrics     http.Handler
	metricsPath string
	mcp         http.Handler
	exporter    CalendarExporter
}

// WithMetrics serves h at GET path, outside authentication.
func WithMetrics(path string, h http.Handler) Option {
	return func(o *options) {
		o.metricsPath = path
		o.metrics = h
	}
}

// WithStreamableMCP serves an MCP streamable HTTP handler at /mcp. The MCP
// server authenticates its own requests.
func WithStreamableMCP(h http.Handler) Option {
	return func(o *options) { o.mcp = h }
}

// WithCalendarFeed serves GET /calendar.ics for subscribed calendar clients.
func WithCalendarFeed(exporter CalendarExporter) Option {
	return func(o *options) { o.exporter = exporter }
}

// Server wires HTTP handlers.
type Server struct {
	handler  MCPHandler
	exporter CalendarExporter
}

// NewServer creates an HTTP server router with middleware. Plain JSON-RPC
// calls are served at POST /rpc.
func NewServer(handler MCPHandler, authMiddleware func(http.Handler) http.Handler, opts ...Option) *chi.Mux {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	r := chi.NewRouter()
	srv := &Server{handler: handler, exporter: o.exporter}

	r.Get("/health", srv.handleHealth)
	if o.metrics != nil {
		path := o.metricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, o.metrics)
	}
	if o.mcp != nil {
		r.Handle("/mcp", o.mcp)
		r.Handle("/mcp/*", o.mcp)
	}

	r.Group(func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}
		r.Use(SessionMiddleware)

		r.Post("/rpc", srv.handleMCP)
		if srv.exporter != nil {
			r.Get("/calendar.ics", srv.handleCalendar)
		}
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		WriteError(w, nil, ErrInvalidReq, "invalid request", nil)
		return
	}

	tenantID, ok := TenantFromContext(r.Context())
	if !ok || tenantID == "" {
		http.Error(w, "missing tenant", http.StatusUnauthorized)
		return
	}

	sessionID, _ := SessionIDFromContext(r.Context())

	result, err := s.handler.Handle(r.Context(), tenantID, sessionID, req.Method, req.Params)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		WriteHandlerError(w, req.ID, err)
		return
	}

	WriteResult(w, req.ID, result)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := TenantFromContext(r.Context())
	if !ok || tenantID == "" {
		http.Error(w, "missing tenant", http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	text, err := s.exporter.Export(r.Context(), tenantID, calendar.RenderRequest{
		View:    grid.View(q.Get("view")),
		Anchor:  q.Get("anchor"),
		OwnerID: q.Get("owner_id"),
	})
	if err != nil {
		if errors.Is(err, grid.ErrInvalidView) || errors.Is(err, grid.ErrInvalidDate) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}
