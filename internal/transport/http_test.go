package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpggio/crmcal/internal/domain/calendar"
	"github.com/rpggio/crmcal/internal/domain/grid"
)

type testHandler struct {
	method string
	err    error
}

func (h *testHandler) Handle(_ context.Context, tenantID, sessionID, method string, params json.RawMessage) (any, error) {
	h.method = method
	if h.err != nil {
		return nil, h.err
	}
	return map[string]string{"tenant": tenantID, "session": sessionID}, nil
}

type staticResolver struct {
	tenant string
}

func (r *staticResolver) ResolveTenant(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	return r.tenant, nil
}

type testExporter struct {
	req calendar.RenderRequest
}

func (e *testExporter) Export(_ context.Context, tenantID string, req calendar.RenderRequest) (string, error) {
	e.req = req
	if req.View == "year" {
		return "", grid.ErrInvalidView
	}
	return "BEGIN:VCALENDAR\r\nX-TENANT:" + tenantID + "\r\nEND:VCALENDAR\r\n", nil
}

func postMCP(t *testing.T, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/rpc", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Mcp-Session-Id", "sess1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHTTPServer_MCP(t *testing.T) {
	handler := &testHandler{}
	resolver := &staticResolver{tenant: "tenant1"}
	server := httptest.NewServer(NewServer(handler, AuthMiddleware(resolver)))
	t.Cleanup(server.Close)

	resp := postMCP(t, server.URL, `{"jsonrpc":"2.0","method":"list_sources","id":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "list_sources", handler.method)

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Nil(t, out.Error)
	result := out.Result.(map[string]any)
	require.Equal(t, "tenant1", result["tenant"])
	require.Equal(t, "sess1", result["session"])
}

func TestHTTPServer_MCPHandlerError(t *testing.T) {
	handler := &testHandler{err: codedErr{code: "INVALID_VIEW", msg: "invalid calendar view", hint: "Use month, week or day"}}
	server := httptest.NewServer(NewServer(handler, StaticTenant("default")))
	t.Cleanup(server.Close)

	resp := postMCP(t, server.URL, `{"jsonrpc":"2.0","method":"render_calendar","id":2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotNil(t, out.Error)
	require.Equal(t, ErrApplication, out.Error.Code)
}

func TestHTTPServer_MissingTenant(t *testing.T) {
	server := httptest.NewServer(NewServer(&testHandler{}, nil))
	t.Cleanup(server.Close)

	resp := postMCP(t, server.URL, `{"jsonrpc":"2.0","method":"list_sources","id":1}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHTTPServer_Health(t *testing.T) {
	handler := &testHandler{}
	server := httptest.NewServer(NewServer(handler, AuthMiddleware(&staticResolver{tenant: "t"})))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_Metrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("crmcal_refresh_total 1\n"))
	})
	server := httptest.NewServer(NewServer(&testHandler{}, AuthMiddleware(&staticResolver{tenant: "t"}), WithMetrics("/metrics", metrics)))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "crmcal_refresh_total")
}

func TestHTTPServer_CalendarFeed(t *testing.T) {
	exporter := &testExporter{}
	server := httptest.NewServer(NewServer(&testHandler{}, StaticTenant("default"), WithCalendarFeed(exporter)))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/calendar.ics?view=week&anchor=2024-03-15&owner_id=005A")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/calendar")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "X-TENANT:default")
	require.Equal(t, calendar.RenderRequest{View: grid.ViewWeek, Anchor: "2024-03-15", OwnerID: "005A"}, exporter.req)

	bad, err := http.Get(server.URL + "/calendar.ics?view=year")
	require.NoError(t, err)
	defer bad.Body.Close()
	require.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestHTTPServer_StreamableMCP(t *testing.T) {
	var hit string
	mcpHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = r.URL.Path
		w.WriteHeader(http.StatusAccepted)
	})
	server := httptest.NewServer(NewServer(&testHandler{}, AuthMiddleware(&staticResolver{tenant: "t"}), WithStreamableMCP(mcpHandler)))
	t.Cleanup(server.Close)

	resp, err := http.Post(server.URL+"/mcp", "application/json", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Equal(t, "/mcp", hit)
}
