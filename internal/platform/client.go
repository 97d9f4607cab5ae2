// Package platform talks to the CRM platform's REST API and builds links
// into its record pages.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/rpggio/crmcal/internal/domain/calendar"
	"github.com/rpggio/crmcal/internal/domain/event"
	"github.com/rpggio/crmcal/internal/domain/source"
)

const defaultTimeout = 15 * time.Second

// maxErrorBody bounds how much of a failed response is kept in an APIError.
const maxErrorBody = 4 << 10

// Config configures the REST client.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// Client implements source.MetadataService and calendar.QueryService.
type Client struct {
	base   string
	http   *http.Client
	logger *slog.Logger
}

var (
	_ source.MetadataService = (*Client)(nil)
	_ calendar.QueryService  = (*Client)(nil)
)

// NewClient creates a platform client. When a token URL is configured every
// request carries a client-credentials bearer token.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	base := cfg.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: timeout}
	}

	httpClient := base
	if cfg.TokenURL != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		httpClient = cc.Client(context.WithValue(ctx, oauth2.HTTPClient, base))
		httpClient.Timeout = timeout
	}

	return &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		http:   httpClient,
		logger: logger,
	}
}

// ListObjects lists the objects records can be queried from.
func (c *Client) ListObjects(ctx context.Context) ([]source.FieldOption, error) {
	var out []source.FieldOption
	if err := c.do(ctx, http.MethodGet, "/objects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListFields lists every field of an object with its type.
func (c *Client) ListFields(ctx context.Context, object string) ([]source.FieldOption, error) {
	return c.fields(ctx, object, "all")
}

// ListDateFields lists an object's DATE and DATETIME fields.
func (c *Client) ListDateFields(ctx context.Context, object string) ([]source.FieldOption, error) {
	return c.fields(ctx, object, "date")
}

// ListUserReferenceFields lists an object's lookups to users.
func (c *Client) ListUserReferenceFields(ctx context.Context, object string) ([]source.FieldOption, error) {
	return c.fields(ctx, object, "user")
}

// ListTitleCandidateFields lists fields usable as an event title.
func (c *Client) ListTitleCandidateFields(ctx context.Context, object string) ([]source.FieldOption, error) {
	return c.fields(ctx, object, "title")
}

func (c *Client) fields(ctx context.Context, object, kind string) ([]source.FieldOption, error) {
	path := "/objects/" + url.PathEscape(object) + "/fields?kind=" + url.QueryEscape(kind)
	var out []source.FieldOption
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type queryFilter struct {
	Field string `json:"field"`
	Type  string `json:"type,omitempty"`
	Value string `json:"value"`
}

type queryRequest struct {
	StartField  string        `json:"startField"`
	EndField    string        `json:"endField,omitempty"`
	UserField   string        `json:"userField,omitempty"`
	TitleField  string        `json:"titleField"`
	Filters     []queryFilter `json:"filters"`
	FilterLogic string        `json:"filterLogic,omitempty"`
	From        string        `json:"from"`
	To          string        `json:"to"`
	OwnerID     string        `json:"ownerId,omitempty"`
}

// QueryEvents fetches one source's records whose dates fall in the window.
func (c *Client) QueryEvents(ctx context.Context, q calendar.Query) ([]event.Record, error) {
	body := queryRequest{
		StartField:  q.Source.StartField,
		EndField:    q.Source.EndField,
		UserField:   q.Source.UserField,
		TitleField:  q.Source.TitleField,
		Filters:     make([]queryFilter, 0, len(q.Source.Filters)),
		FilterLogic: q.Source.FilterLogic,
		From:        q.From.UTC().Format(time.RFC3339),
		To:          q.To.UTC().Format(time.RFC3339),
		OwnerID:     q.OwnerID,
	}
	for _, f := range q.Source.Filters {
		if strings.TrimSpace(f.Field) == "" {
			continue
		}
		body.Filters = append(body.Filters, queryFilter{Field: f.Field, Type: string(f.Type), Value: f.Value})
	}

	path := "/objects/" + url.PathEscape(q.Source.ObjectName) + "/events"
	var out []event.Record
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("platform request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}
