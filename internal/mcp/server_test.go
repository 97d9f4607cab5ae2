package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/crmcal/internal/domain/source"
)

func connect(t *testing.T, cfg Config) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := NewServer(cfg)
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestServer_ListsCatalogTools(t *testing.T) {
	session := connect(t, Config{TransportMode: "stdio"})

	init := session.InitializeResult()
	require.NotNil(t, init)
	require.Equal(t, "crmcal", init.ServerInfo.Name)

	tools, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, def := range buildToolCatalog() {
		require.True(t, names[def.Name], "missing tool %s", def.Name)
	}
}

func TestServer_CallTool(t *testing.T) {
	var gotTenant string
	session := connect(t, Config{
		TransportMode: "stdio",
		DefaultTenant: "local",
		Services: Services{
			Sources: sourceStub{
				listFn: func(_ context.Context, tenantID string) ([]source.Source, error) {
					gotTenant = tenantID
					return []source.Source{{ID: "s1", ObjectName: "Event"}}, nil
				},
				deleteFn: func(context.Context, string, string) error {
					return source.ErrSourceNotFound
				},
			},
		},
	})
	ctx := context.Background()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "list_sources", Arguments: map[string]any{}})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Equal(t, "local", gotTenant)

	text := res.Content[0].(*sdkmcp.TextContent).Text
	var listed SourcesResponse
	require.NoError(t, json.Unmarshal([]byte(text), &listed))
	require.Equal(t, "s1", listed.Sources[0].ID)

	res, err = session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "delete_source", Arguments: map[string]any{"id": "nope"}})
	require.NoError(t, err)
	require.True(t, res.IsError)

	var apiErr APIError
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].(*sdkmcp.TextContent).Text), &apiErr))
	require.Equal(t, "SOURCE_NOT_FOUND", apiErr.Code)
	require.NotEmpty(t, apiErr.RecoveryHint)
}

func TestServer_DocResources(t *testing.T) {
	session := connect(t, Config{TransportMode: "stdio"})

	res, err := session.ReadResource(context.Background(), &sdkmcp.ReadResourceParams{URI: "crmcal://docs/views"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	require.Contains(t, res.Contents[0].Text, "hour slots")
}

type rejectResolver struct{}

func (rejectResolver) ResolveTenant(context.Context, string) (string, error) {
	return "", errors.New("no keys")
}

func TestServer_AuthRequiredOverHTTPMode(t *testing.T) {
	session := connect(t, Config{TransportMode: "http", AuthEnabled: true, Resolver: rejectResolver{}})

	_, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: "list_sources", Arguments: map[string]any{}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unauthorized")
}

func TestFormatPayload(t *testing.T) {
	require.Equal(t, "<nil>", formatPayload(nil))
	require.Equal(t, `{"a":1}`, formatPayload(map[string]int{"a": 1}))

	long := formatPayload(strings.Repeat("x", maxLoggedPayload*2))
	require.Len(t, long, maxLoggedPayload+3)
	require.True(t, strings.HasSuffix(long, "..."))
}
