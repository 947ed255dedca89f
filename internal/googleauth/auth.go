// Package googleauth builds OAuth2 token sources for the Google APIs the
// pipeline talks to (Sheets and Gmail), from either a service account key or
// an OAuth2 client with a refresh token.
package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
)

// Scopes requested by the interactive flow.
var Scopes = []string{sheets.SpreadsheetsScope, gmail.GmailSendScope}

// Credentials selects an authentication method.
type Credentials struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	// Subject is the user a service account impersonates (domain-wide
	// delegation). Gmail sending with a service account needs it.
	Subject string
}

// HasOAuth reports whether a full OAuth2 client with refresh token is set.
func (c Credentials) HasOAuth() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// Validate checks that exactly one authentication method is configured.
func (c Credentials) Validate() error {
	hasServiceAccount := c.ServiceAccountPath != ""
	switch {
	case !c.HasOAuth() && !hasServiceAccount:
		return fmt.Errorf("%w: no Google authentication method configured", common.ErrMissingConfig)
	case c.HasOAuth() && hasServiceAccount:
		return fmt.Errorf("%w: multiple Google authentication methods configured; use either OAuth2 or service account", common.ErrInvalidConfig)
	}
	return nil
}

// TokenSource returns a token source for the given scopes.
func TokenSource(ctx context.Context, creds Credentials, scopes ...string) (oauth2.TokenSource, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	if creds.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(filepath.Clean(creds.ServiceAccountPath))
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, scopes...)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		jwtConfig.Subject = creds.Subject
		return jwtConfig.TokenSource(ctx), nil
	}

	client := oauthConfig(creds.ClientID, creds.ClientSecret, "", scopes)
	token := &oauth2.Token{
		RefreshToken: creds.RefreshToken,
		TokenType:    "Bearer",
	}
	return client.TokenSource(ctx, token), nil
}

// ClientOption returns an API client option authenticated for scopes.
func ClientOption(ctx context.Context, creds Credentials, scopes ...string) (option.ClientOption, error) {
	ts, err := TokenSource(ctx, creds, scopes...)
	if err != nil {
		return nil, err
	}
	return option.WithHTTPClient(oauth2.NewClient(ctx, ts)), nil
}

func oauthConfig(clientID, clientSecret, redirectURL string, scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       scopes,
	}
}

// InteractiveConfig configures the browser-based OAuth2 flow.
type InteractiveConfig struct {
	ClientID     string
	ClientSecret string
	// TokenFile is where the token is saved; empty skips saving.
	TokenFile string
	// ListenAddr is the local callback address.
	ListenAddr string
	Scopes     []string
	Timeout    time.Duration
}

// AuthURLPrinter receives the URL the user must open.
type AuthURLPrinter func(url string)

// Authenticate performs the OAuth2 flow interactively and returns a token
// carrying a refresh token.
func Authenticate(ctx context.Context, cfg InteractiveConfig, show AuthURLPrinter) (*oauth2.Token, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: OAuth2 client ID and secret are required", common.ErrMissingConfig)
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "localhost:8080"
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = Scopes
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}

	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	conf := oauthConfig(cfg.ClientID, cfg.ClientSecret, "http://"+listener.Addr().String()+"/callback", cfg.Scopes)
	state := uuid.NewString()

	codeChan := make(chan string, 1)
	errorChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errorChan <- errors.New("oauth state mismatch")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			errorChan <- fmt.Errorf("no authorization code received")
			_, _ = fmt.Fprint(w, "<html><body><h1>Authentication Failed</h1><p>No authorization code received. Please try again.</p></body></html>")
			return
		}

		codeChan <- code
		_, _ = fmt.Fprint(w, "<html><body><h1>Authentication Successful</h1><p>You can close this window and return to the terminal.</p></body></html>")
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorChan <- fmt.Errorf("callback server failed: %w", err)
		}
	}()
	defer func() {
		if err := server.Shutdown(context.Background()); err != nil {
			slog.Warn("Error shutting down callback server", "error", err)
		}
	}()

	show(conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	var authCode string
	select {
	case authCode = <-codeChan:
		slog.Info("Received authorization code")
	case err := <-errorChan:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(cfg.Timeout):
		return nil, fmt.Errorf("authentication timeout: no response received within %s", cfg.Timeout)
	}

	token, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if cfg.TokenFile != "" {
		if err := SaveToken(cfg.TokenFile, token); err != nil {
			slog.Warn("Failed to save token to file", "error", err, "file", cfg.TokenFile)
		} else {
			slog.Info("Token saved", "file", cfg.TokenFile)
		}
	}

	return token, nil
}

// LoadToken loads a token from file.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	f, err := os.Open(filepath.Clean(tokenFile))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return token, nil
}

// SaveToken writes a token to file with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Clean(path), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return nil
}
