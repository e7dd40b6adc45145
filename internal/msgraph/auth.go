package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

var requiredScopes = []string{
	"https://graph.microsoft.com/Calendars.Read",
	"offline_access",
}

func msEndpoint(tenantID, path string) string {
	return "https://login.microsoftonline.com/" + tenantID + "/oauth2/v2.0/" + path
}

// TokenStore keeps the OAuth token of one installation on disk.
type TokenStore struct {
	Path string
}

// NewTokenStore stores tokens under dir/auth.
func NewTokenStore(dir string) TokenStore {
	return TokenStore{Path: filepath.Join(dir, "auth", "msgraph_tokens.json")}
}

// oauth2Config returns the oauth2.Config for Microsoft Graph using the
// provided tenant and client IDs.
func oauth2Config(tenantID, clientID string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: clientID,
		Scopes:   requiredScopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: msEndpoint(tenantID, "devicecode"),
			TokenURL:      msEndpoint(tenantID, "token"),
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// Load returns the saved token, or nil when there is none.
func (s TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", s.Path, err)
	}
	return &tok, nil
}

// Save persists tok.
func (s TokenStore) Save(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := s.Path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// Authenticate returns a client for Microsoft Graph. It uses the saved
// token, refreshes it if needed, or runs the device code flow and prints
// the sign-in instructions to out.
func Authenticate(ctx context.Context, store TokenStore, tenantID, clientID string, out io.Writer, log *slog.Logger) (*Client, error) {
	cfg := oauth2Config(tenantID, clientID)

	tok, err := store.Load()
	if err != nil {
		log.Warn("ignoring saved token", slog.String("error", err.Error()))
		tok = nil
	}

	if tok != nil && tok.Valid() {
		return NewClient(ctx, store, tok, cfg, log), nil
	}

	if tok != nil && tok.RefreshToken != "" {
		refreshed, err := cfg.TokenSource(ctx, tok).Token()
		if err == nil {
			if err := store.Save(refreshed); err != nil {
				log.Warn("could not save refreshed token", slog.String("error", err.Error()))
			}
			return NewClient(ctx, store, refreshed, cfg, log), nil
		}
		log.Info("token refresh failed, re-authenticating", slog.String("error", err.Error()))
	}

	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "To sign in, use a web browser to open the page:")
	fmt.Fprintf(out, "  %s\n", resp.VerificationURI)
	fmt.Fprintf(out, "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(out)

	newTok, err := cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}
	if err := store.Save(newTok); err != nil {
		log.Warn("could not save token", slog.String("error", err.Error()))
	}
	return NewClient(ctx, store, newTok, cfg, log), nil
}
