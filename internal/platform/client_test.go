package platform_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/crmcal/internal/domain/calendar"
	"github.com/rpggio/crmcal/internal/domain/source"
	"github.com/rpggio/crmcal/internal/platform"
)

func newPlatform(t *testing.T, wantAuth string) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var queries []map[string]any

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if wantAuth != "" && req.Header.Get("Authorization") != wantAuth {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/objects", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode([]source.FieldOption{{Label: "Opportunity", Value: "Opportunity"}})
	})
	r.Get("/objects/{object}/fields", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "object") == "Broken" {
			http.Error(w, `{"message":"no such object"}`, http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode([]source.FieldOption{{
			Label: req.URL.Query().Get("kind"),
			Value: chi.URLParam(req, "object"),
			Type:  source.FieldTypeDate,
		}})
	})
	r.Post("/objects/{object}/events", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		body["object"] = chi.URLParam(req, "object")
		queries = append(queries, body)
		w.Write([]byte(`[{"Id":"006A","Name":"Renewal","CloseDate":"2024-05-03"}]`))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, &queries
}

func TestClient_Metadata(t *testing.T) {
	srv, _ := newPlatform(t, "")
	client := platform.NewClient(context.Background(), platform.Config{BaseURL: srv.URL + "/"}, nil)
	ctx := context.Background()

	objects, err := client.ListObjects(ctx)
	require.NoError(t, err)
	require.Equal(t, "Opportunity", objects[0].Value)

	for kind, fn := range map[string]func(context.Context, string) ([]source.FieldOption, error){
		"all":   client.ListFields,
		"date":  client.ListDateFields,
		"user":  client.ListUserReferenceFields,
		"title": client.ListTitleCandidateFields,
	} {
		fields, err := fn(ctx, "Opportunity")
		require.NoError(t, err)
		require.Len(t, fields, 1)
		require.Equal(t, kind, fields[0].Label)
	}
}

func TestClient_APIError(t *testing.T) {
	srv, _ := newPlatform(t, "")
	client := platform.NewClient(context.Background(), platform.Config{BaseURL: srv.URL}, nil)

	_, err := client.ListFields(context.Background(), "Broken")
	var apiErr *platform.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.Contains(t, apiErr.Error(), "no such object")
}

func TestClient_QueryEvents(t *testing.T) {
	srv, queries := newPlatform(t, "")
	client := platform.NewClient(context.Background(), platform.Config{BaseURL: srv.URL}, nil)

	records, err := client.QueryEvents(context.Background(), calendar.Query{
		Source: source.Source{
			ObjectName:  "Opportunity",
			StartField:  "CloseDate",
			TitleField:  "Name",
			UserField:   "OwnerId",
			Filters:     []source.Filter{{Field: "StageName", Type: source.FieldTypePicklist, Value: "Prospecting"}, {Field: ""}},
			FilterLogic: "1",
		},
		From:    time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		To:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		OwnerID: "005U",
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Renewal", records[0]["Name"])

	require.Len(t, *queries, 1)
	q := (*queries)[0]
	require.Equal(t, "Opportunity", q["object"])
	require.Equal(t, "CloseDate", q["startField"])
	require.Equal(t, "OwnerId", q["userField"])
	require.Equal(t, "2024-05-01T00:00:00Z", q["from"])
	require.Equal(t, "2024-06-01T00:00:00Z", q["to"])
	require.Equal(t, "005U", q["ownerId"])
	require.Len(t, q["filters"], 1)
}

func TestClient_ClientCredentials(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("grant_type") != "client_credentials" {
			http.Error(w, "bad grant", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-123","token_type":"bearer","expires_in":3600}`))
	}))
	defer tokenSrv.Close()

	srv, _ := newPlatform(t, "Bearer tok-123")
	client := platform.NewClient(context.Background(), platform.Config{
		BaseURL:      srv.URL,
		TokenURL:     tokenSrv.URL,
		ClientID:     "id",
		ClientSecret: "secret",
	}, nil)

	objects, err := client.ListObjects(context.Background())
	require.NoError(t, err)
	require.Len(t, objects, 1)
}
