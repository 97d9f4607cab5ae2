package testserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/rpggio/crmcal/internal/domain/event"
	"github.com/rpggio/crmcal/internal/domain/source"
)

// Platform is a fake CRM REST API with two objects: Event (DATETIME start
// and end) and Task (DATE start). Requests for the Broken object fail.
type Platform struct {
	Server *httptest.Server

	mu      sync.Mutex
	records map[string][]event.Record
	queries []map[string]any
}

var platformFields = map[string][]source.FieldOption{
	"Event": {
		{Label: "Start", Value: "StartDateTime", Type: source.FieldTypeDateTime},
		{Label: "End", Value: "EndDateTime", Type: source.FieldTypeDateTime},
		{Label: "Subject", Value: "Subject", Type: source.FieldTypeString},
		{Label: "Assigned To", Value: "OwnerId", Type: source.FieldTypeReference},
		{Label: "Created Date", Value: "CreatedDate", Type: source.FieldTypeDateTime},
	},
	"Task": {
		{Label: "Due Date", Value: "ActivityDate", Type: source.FieldTypeDate},
		{Label: "Subject", Value: "Subject", Type: source.FieldTypeString},
		{Label: "Closed", Value: "IsClosed", Type: source.FieldTypeBoolean},
	},
}

// NewPlatform starts a fake platform that is closed with the test.
func NewPlatform(t *testing.T) *Platform {
	t.Helper()
	p := &Platform{records: make(map[string][]event.Record)}

	r := chi.NewRouter()
	r.Get("/objects", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []source.FieldOption{
			{Label: "Event", Value: "Event"},
			{Label: "Task", Value: "Task"},
		})
	})
	r.Get("/objects/{object}/fields", func(w http.ResponseWriter, req *http.Request) {
		fields, ok := platformFields[chi.URLParam(req, "object")]
		if !ok {
			http.Error(w, `{"message":"unknown object"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, filterFields(fields, req.URL.Query().Get("kind")))
	})
	r.Post("/objects/{object}/events", func(w http.ResponseWriter, req *http.Request) {
		object := chi.URLParam(req, "object")
		if object == "Broken" {
			http.Error(w, `{"message":"query failed"}`, http.StatusInternalServerError)
			return
		}
		var body map[string]any
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		body["object"] = object

		p.mu.Lock()
		p.queries = append(p.queries, body)
		records := append([]event.Record{}, p.records[object]...)
		p.mu.Unlock()

		writeJSON(w, records)
	})

	p.Server = httptest.NewServer(r)
	t.Cleanup(p.Server.Close)
	return p
}

// AddRecords makes records available from object's event query.
func (p *Platform) AddRecords(object string, records ...event.Record) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records[object] = append(p.records[object], records...)
}

// Queries returns the event query bodies received so far.
func (p *Platform) Queries() []map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]map[string]any{}, p.queries...)
}

func filterFields(fields []source.FieldOption, kind string) []source.FieldOption {
	out := []source.FieldOption{}
	for _, f := range fields {
		switch kind {
		case "date":
			if f.Type == source.FieldTypeDate || f.Type == source.FieldTypeDateTime {
				out = append(out, f)
			}
		case "user":
			if f.Type == source.FieldTypeReference {
				out = append(out, f)
			}
		case "title":
			if f.Type == source.FieldTypeString {
				out = append(out, f)
			}
		default:
			out = append(out, f)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
