package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned when no token has been stored yet.
var ErrNoToken = errors.New("not logged in (run `standup login`)")

// TokenPath returns the token file location under the data directory.
func TokenPath(base string) string {
	return filepath.Join(base, "auth", "token.json")
}

// OAuthConfig returns the device-code configuration, or nil when the
// service is not configured for OAuth2.
func OAuthConfig(clientID, deviceAuthURL, tokenURL string, scopes []string) *oauth2.Config {
	if deviceAuthURL == "" || tokenURL == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID: clientID,
		Scopes:   scopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: deviceAuthURL,
			TokenURL:      tokenURL,
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// LoadToken reads a previously saved token.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to log in again): %w", path, err)
	}
	if tok.AccessToken == "" {
		return nil, ErrNoToken
	}
	return &tok, nil
}

// SaveToken persists tok atomically.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// DeviceLogin runs the OAuth2 device code flow, printing the verification
// instructions to out, and stores the resulting token.
func DeviceLogin(ctx context.Context, cfg *oauth2.Config, path string, out io.Writer) (*oauth2.Token, error) {
	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "To sign in, use a web browser to open the page:")
	fmt.Fprintf(out, "  %s\n", resp.VerificationURI)
	fmt.Fprintf(out, "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(out)

	tok, err := cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}
	if err := SaveToken(path, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// savingTokenSource writes refreshed tokens back to disk so they survive
// the process. A token is written once, when its access token changes.
type savingTokenSource struct {
	ts   oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken == s.last {
		return tok, nil
	}
	// Best-effort save; the request can proceed without it.
	if err := SaveToken(s.path, tok); err == nil {
		s.last = tok.AccessToken
	}
	return tok, nil
}
