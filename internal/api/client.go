package api

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

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/Tiliavir/standup/internal/model"
)

const standupsPath = "/api/standups"

// Client talks to the remote standup service. Response bodies are returned
// raw; unwrapping them is the envelope package's job.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport, e.g. with one from oauth2.NewClient.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewAuthenticatedClient creates a client that sends tok as a bearer token.
// With a non-nil cfg the token is refreshed when it expires and the fresh
// token is written back to tokenPath.
func NewAuthenticatedClient(ctx context.Context, baseURL string, tok *oauth2.Token, cfg *oauth2.Config, tokenPath string, timeout time.Duration, opts ...Option) *Client {
	var ts oauth2.TokenSource = oauth2.StaticTokenSource(tok)
	if cfg != nil && tok != nil && tok.RefreshToken != "" {
		ts = &savingTokenSource{ts: cfg.TokenSource(ctx, tok), path: tokenPath, last: tok.AccessToken}
	}
	hc := oauth2.NewClient(ctx, ts)
	hc.Timeout = timeout
	return NewClient(baseURL, append([]Option{WithHTTPClient(hc)}, opts...)...)
}

// ListEntries fetches entries matching filter.
func (c *Client) ListEntries(ctx context.Context, filter model.ListFilter) (json.RawMessage, error) {
	q := url.Values{}
	if filter.From != "" {
		q.Set("from", filter.From)
	}
	if filter.To != "" {
		q.Set("to", filter.To)
	}
	if filter.Tag != "" {
		q.Set("tag", filter.Tag)
	}
	if filter.Highlight {
		q.Set("highlight", "true")
	}
	return c.do(ctx, http.MethodGet, standupsPath, q, nil)
}

// GetEntry fetches the entry for date.
func (c *Client) GetEntry(ctx context.Context, date string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, entryPath(date), nil, nil)
}

// CreateEntry submits a new entry. The server overwrites an existing date.
func (c *Client) CreateEntry(ctx context.Context, p model.EntryPayload) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, standupsPath, nil, p.Prepare())
}

// UpdateEntry sends a partial update for date.
func (c *Client) UpdateEntry(ctx context.Context, date string, p model.EntryPayload) (json.RawMessage, error) {
	p.Date = ""
	return c.do(ctx, http.MethodPut, entryPath(date), nil, p.Prepare())
}

// DeleteEntry removes the entry for date.
func (c *Client) DeleteEntry(ctx context.Context, date string) error {
	_, err := c.do(ctx, http.MethodDelete, entryPath(date), nil, nil)
	return err
}

// ToggleHighlight flips the highlight flag of date.
func (c *Client) ToggleHighlight(ctx context.Context, date string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPatch, entryPath(date)+"/highlight", nil, nil)
}

// SearchEntries runs a keyword search.
func (c *Client) SearchEntries(ctx context.Context, keyword string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, standupsPath+"/search", url.Values{"q": {keyword}}, nil)
}

// GetStats fetches the aggregate summary.
func (c *Client) GetStats(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, standupsPath+"/stats", nil, nil)
}

func entryPath(date string) string {
	return standupsPath + "/" + url.PathEscape(date)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("request failed", "request_id", requestID, "method", method, "path", path, "error", err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, &NetworkError{Method: method, Path: path, Err: fmt.Errorf("reading response body: %w", err)}
	}

	c.log.Debug("request done",
		"request_id", requestID,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServiceError{
			Status:    resp.StatusCode,
			Message:   serviceMessage(resp.StatusCode, data),
			RequestID: requestID,
		}
	}
	return data, nil
}
