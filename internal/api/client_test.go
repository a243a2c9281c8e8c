package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/standup/internal/api"
	"github.com/Tiliavir/standup/internal/envelope"
	"github.com/Tiliavir/standup/internal/model"
)

type recorded struct {
	method string
	path   string
	query  string
	body   string
	header http.Header
}

func newServer(t *testing.T, status int, response string) (*httptest.Server, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			body:   string(body),
			header: r.Header.Clone(),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestClientRoutes(t *testing.T) {
	ctx := context.Background()
	srv, calls := newServer(t, http.StatusOK, `{"date":"2024-01-05"}`)
	c := api.NewClient(srv.URL + "/")

	three := 3
	tests := []struct {
		name   string
		call   func() error
		method string
		path   string
		query  string
	}{
		{"list", func() error {
			_, err := c.ListEntries(ctx, model.ListFilter{From: "2024-01-01", Tag: "api", Highlight: true})
			return err
		}, http.MethodGet, "/api/standups", "from=2024-01-01&highlight=true&tag=api"},
		{"get", func() error { _, err := c.GetEntry(ctx, "2024-01-05"); return err }, http.MethodGet, "/api/standups/2024-01-05", ""},
		{"create", func() error {
			_, err := c.CreateEntry(ctx, model.EntryPayload{Date: "2024-01-05", Mood: &three})
			return err
		}, http.MethodPost, "/api/standups", ""},
		{"update", func() error {
			_, err := c.UpdateEntry(ctx, "2024-01-05", model.EntryPayload{Mood: &three})
			return err
		}, http.MethodPut, "/api/standups/2024-01-05", ""},
		{"delete", func() error { return c.DeleteEntry(ctx, "2024-01-05") }, http.MethodDelete, "/api/standups/2024-01-05", ""},
		{"toggle", func() error { _, err := c.ToggleHighlight(ctx, "2024-01-05"); return err }, http.MethodPatch, "/api/standups/2024-01-05/highlight", ""},
		{"search", func() error { _, err := c.SearchEntries(ctx, "deploy bug"); return err }, http.MethodGet, "/api/standups/search", "q=deploy+bug"},
		{"stats", func() error { _, err := c.GetStats(ctx); return err }, http.MethodGet, "/api/standups/stats", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			*calls = nil
			if err := tt.call(); err != nil {
				t.Fatalf("call: %v", err)
			}
			if len(*calls) != 1 {
				t.Fatalf("calls = %d, want 1", len(*calls))
			}
			got := (*calls)[0]
			if got.method != tt.method || got.path != tt.path || got.query != tt.query {
				t.Errorf("request = %s %s?%s, want %s %s?%s", got.method, got.path, got.query, tt.method, tt.path, tt.query)
			}
			if got.header.Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID")
			}
		})
	}
}

func TestCreateOmitsUnratedMood(t *testing.T) {
	srv, calls := newServer(t, http.StatusCreated, `{"data":{"date":"2024-01-05"}}`)
	c := api.NewClient(srv.URL)
	zero, four := 0, 4
	raw, err := c.CreateEntry(context.Background(), model.EntryPayload{
		Date:         "2024-01-05",
		Mood:         &zero,
		Productivity: &four,
		Tags:         []string{"API", "api"},
	})
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if !strings.Contains(string(raw), "2024-01-05") {
		t.Errorf("raw body = %s", raw)
	}

	var sent map[string]any
	if err := json.Unmarshal([]byte((*calls)[0].body), &sent); err != nil {
		t.Fatalf("decoding sent body: %v", err)
	}
	if _, has := sent["mood"]; has {
		t.Error("unrated mood was sent")
	}
	if sent["productivity"] != float64(4) {
		t.Errorf("productivity = %v, want 4", sent["productivity"])
	}
	tags, _ := sent["tags"].([]any)
	if len(tags) != 1 || tags[0] != "api" {
		t.Errorf("tags = %v, want [api]", sent["tags"])
	}
}

func TestUpdateDoesNotResendDate(t *testing.T) {
	srv, calls := newServer(t, http.StatusOK, `{"date":"2024-01-05"}`)
	c := api.NewClient(srv.URL)
	today := "new plan"
	if _, err := c.UpdateEntry(context.Background(), "2024-01-05", model.EntryPayload{Date: "2024-01-05", Today: &today}); err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}
	if strings.Contains((*calls)[0].body, `"date"`) {
		t.Errorf("update body %s carries the immutable date", (*calls)[0].body)
	}
}

func TestServiceErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantText string
	}{
		{"message field", http.StatusConflict, `{"message":"entry exists"}`, "entry exists"},
		{"error field", http.StatusBadRequest, `{"error":"bad mood"}`, "bad mood"},
		{"nested message", http.StatusBadRequest, `{"data":{"success":false,"message":"nested"}}`, "nested"},
		{"no message", http.StatusInternalServerError, `oops`, "status 500"},
		{"non-string error", http.StatusNotFound, `{"error":{"code":1}}`, "status 404"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, tt.status, tt.body)
			_, err := api.NewClient(srv.URL).GetEntry(context.Background(), "2024-01-05")
			var svc *api.ServiceError
			if !errors.As(err, &svc) {
				t.Fatalf("err = %v, want *ServiceError", err)
			}
			if svc.Status != tt.status {
				t.Errorf("Status = %d, want %d", svc.Status, tt.status)
			}
			if got := api.Message(err); got != tt.wantText {
				t.Errorf("Message = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := api.NewClient(url).GetStats(context.Background())
	var netErr *api.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("err = %v, want *NetworkError", err)
	}
	if got := api.Message(err); got != "network error: check your connection" {
		t.Errorf("Message = %q", got)
	}
}

func TestCancelledContext(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `[]`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := api.NewClient(srv.URL).ListEntries(ctx, model.ListFilter{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if got := api.Message(err); got != "request cancelled" {
		t.Errorf("Message = %q", got)
	}
}

func TestMessageForOtherErrors(t *testing.T) {
	_, decErr := envelope.Entry([]byte(`{}`))
	if got := api.Message(decErr); !strings.HasPrefix(got, "invalid response format: ") {
		t.Errorf("Message(decode) = %q", got)
	}
	valErr := model.ValidateDate("nope")
	if got := api.Message(valErr); !strings.Contains(got, "invalid date") {
		t.Errorf("Message(validation) = %q", got)
	}
	if got := api.Message(nil); got != "" {
		t.Errorf("Message(nil) = %q", got)
	}
}

func TestAuthenticatedClientSendsBearer(t *testing.T) {
	srv, calls := newServer(t, http.StatusOK, `[]`)
	tok := &oauth2.Token{AccessToken: "secret", TokenType: "Bearer"}
	c := api.NewAuthenticatedClient(context.Background(), srv.URL, tok, nil, "", 5*time.Second)
	if _, err := c.ListEntries(context.Background(), model.ListFilter{}); err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if got := (*calls)[0].header.Get("Authorization"); got != "Bearer secret" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestRefreshedTokenSavedOnce(t *testing.T) {
	var refreshes int
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshes++
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token":"fresh","token_type":"Bearer","refresh_token":"r2","expires_in":3600}`)
	}))
	t.Cleanup(tokenSrv.Close)
	srv, calls := newServer(t, http.StatusOK, `[]`)

	path := api.TokenPath(t.TempDir())
	cfg := &oauth2.Config{
		ClientID: "standup",
		Endpoint: oauth2.Endpoint{TokenURL: tokenSrv.URL, AuthStyle: oauth2.AuthStyleInParams},
	}
	expired := &oauth2.Token{AccessToken: "old", RefreshToken: "r1", TokenType: "Bearer", Expiry: time.Now().Add(-time.Hour)}
	c := api.NewAuthenticatedClient(context.Background(), srv.URL, expired, cfg, path, 5*time.Second)
	ctx := context.Background()

	if _, err := c.ListEntries(ctx, model.ListFilter{}); err != nil {
		t.Fatalf("first ListEntries: %v", err)
	}
	tok, err := api.LoadToken(path)
	if err != nil || tok.AccessToken != "fresh" {
		t.Fatalf("saved token = %+v, %v", tok, err)
	}

	// The same token must not be written again.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ListEntries(ctx, model.ListFilter{}); err != nil {
		t.Fatalf("second ListEntries: %v", err)
	}
	if _, err := api.LoadToken(path); !errors.Is(err, api.ErrNoToken) {
		t.Errorf("token file rewritten for an unchanged token: %v", err)
	}
	if refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", refreshes)
	}
	if got := (*calls)[1].header.Get("Authorization"); got != "Bearer fresh" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	path := api.TokenPath(t.TempDir())
	if _, err := api.LoadToken(path); !errors.Is(err, api.ErrNoToken) {
		t.Fatalf("LoadToken on missing file: %v, want ErrNoToken", err)
	}
	if err := api.SaveToken(path, &oauth2.Token{AccessToken: "abc"}); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	tok, err := api.LoadToken(path)
	if err != nil {
		t.Fatalf("LoadToken: %v", err)
	}
	if tok.AccessToken != "abc" {
		t.Errorf("AccessToken = %q", tok.AccessToken)
	}
	if filepath.Base(path) != "token.json" {
		t.Errorf("TokenPath = %q", path)
	}
}

func TestOAuthConfigRequiresEndpoints(t *testing.T) {
	if api.OAuthConfig("id", "", "https://example.test/token", nil) != nil {
		t.Error("OAuthConfig without device endpoint should be nil")
	}
	cfg := api.OAuthConfig("id", "https://example.test/device", "https://example.test/token", []string{"standups"})
	if cfg == nil || cfg.Endpoint.DeviceAuthURL != "https://example.test/device" {
		t.Errorf("OAuthConfig = %+v", cfg)
	}
}
