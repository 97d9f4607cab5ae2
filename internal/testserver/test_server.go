// Package testserver starts the full HTTP stack against an in-memory
// database and a fake platform.
package testserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/crmcal/internal/domain/activity"
	"github.com/rpggio/crmcal/internal/domain/calendar"
	"github.com/rpggio/crmcal/internal/domain/navigation"
	"github.com/rpggio/crmcal/internal/domain/settings"
	"github.com/rpggio/crmcal/internal/domain/source"
	"github.com/rpggio/crmcal/internal/mcp"
	"github.com/rpggio/crmcal/internal/metrics"
	"github.com/rpggio/crmcal/internal/notify"
	"github.com/rpggio/crmcal/internal/platform"
	"github.com/rpggio/crmcal/internal/sqlite"
	"github.com/rpggio/crmcal/internal/transport"
)

type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Platform *Platform
	Metrics  *metrics.Metrics
	Token    string
	TenantID string

	apiKeys *sqlite.APIKeyRepository
}

// Options tune the stack under test.
type Options struct {
	Location *time.Location
	Now      func() time.Time
}

func New(t *testing.T, token, tenantID string, opts Options) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	fake := NewPlatform(t)
	client := platform.NewClient(context.Background(), platform.Config{BaseURL: fake.Server.URL}, nil)
	m := metrics.New()
	notifier := notify.NewContextNotifier(nil)

	sourceSvc := source.NewService(sqlite.NewSourceStore(db, nil), client, notifier, nil)
	settingsSvc := settings.NewService(sqlite.NewKVStore(db), settings.Defaults{}, nil)
	calendarSvc := calendar.NewService(calendar.Config{
		Sources:  sourceSvc,
		Settings: settingsSvc,
		Query:    client,
		Notifier: notifier,
		Observer: m,
		Location: loc,
		Now:      opts.Now,
	})
	services := mcp.Services{
		Sources:    sourceSvc,
		Settings:   settingsSvc,
		Calendar:   calendarSvc,
		Navigation: navigation.NewAdapter(sourceSvc, client, settingsSvc, platform.NewPageNavigator("https://crm.example.com"), nil),
		Activity:   activity.NewService(sqlite.NewActivityRepository(db), nil),
	}

	apiKeys := sqlite.NewAPIKeyRepository(db)
	mcpServer := mcp.NewServer(mcp.Config{
		Services:      services,
		Resolver:      apiKeys,
		AuthEnabled:   true,
		TransportMode: "http",
	})
	router := transport.NewServer(mcp.NewHandler(services), transport.AuthMiddleware(apiKeys),
		transport.WithStreamableMCP(sdkmcp.NewStreamableHTTPHandler(
			func(*http.Request) *sdkmcp.Server { return mcpServer }, nil)),
		transport.WithCalendarFeed(calendarSvc),
		transport.WithMetrics("/metrics", m.Handler()),
	)
	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       db,
		Platform: fake,
		Metrics:  m,
		Token:    token,
		TenantID: tenantID,
		apiKeys:  apiKeys,
	}

	require.NoError(t, apiKeys.Create(context.Background(), tenantID, token, "test"))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

// AddTenant registers another API key and returns a view of the same server
// that calls it with that key.
func (ts *TestServer) AddTenant(t *testing.T, token, tenantID string) *TestServer {
	t.Helper()
	require.NoError(t, ts.apiKeys.Create(context.Background(), tenantID, token, "test"))
	other := *ts
	other.Token = token
	other.TenantID = tenantID
	return &other
}

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *RPCError       `json:"error,omitempty"`
}

// Call posts one JSON-RPC request to /rpc. It decodes a result into out
// when out is non-nil and returns the error object, if any.
func (ts *TestServer) Call(t *testing.T, method string, params, out any) *RPCError {
	t.Helper()

	payload := map[string]any{"jsonrpc": "2.0", "method": method, "id": 1}
	if params != nil {
		payload["params"] = params
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/rpc", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ts.Token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded rpcResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	if decoded.Error != nil {
		return decoded.Error
	}
	if out != nil {
		require.NoError(t, json.Unmarshal(decoded.Result, out))
	}
	return nil
}

// AuthClient returns an HTTP client that sends the server's bearer token.
func (ts *TestServer) AuthClient() *http.Client {
	return &http.Client{Transport: bearerTransport{token: ts.Token, next: http.DefaultTransport}}
}

type bearerTransport struct {
	token string
	next  http.RoundTripper
}

func (b bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.token)
	return b.next.RoundTrip(req)
}
