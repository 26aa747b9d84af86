// Package auth holds the Google OAuth session used by the calendar source.
// A Manager is created once at startup and passed to whoever needs the
// token; there is no package-level token state.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"

	appLog "interviewpro/internal/log"
)

// ErrNotAuthenticated is returned when a token is required but the
// session was never established or has been logged out.
var ErrNotAuthenticated = errors.New("auth: not authenticated")

// Scopes requested at login.
var Scopes = []string{
	calendar.CalendarReadonlyScope,
	calendar.CalendarEventsReadonlyScope,
}

// Manager owns the OAuth token. It is safe for concurrent use.
type Manager struct {
	config    *oauth2.Config
	tokenFile string

	mu      sync.Mutex
	token   *oauth2.Token
	subs    map[int]func(bool)
	nextSub int
}

// NewManager returns a Manager for config, restoring a saved token from
// tokenFile when present. An empty tokenFile keeps the token in memory only.
func NewManager(config *oauth2.Config, tokenFile string) (*Manager, error) {
	m := &Manager{config: config, tokenFile: tokenFile, subs: make(map[int]func(bool))}
	if tokenFile == "" {
		return m, nil
	}
	tok, err := readToken(tokenFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		appLog.Error("auth: saved token unreadable; login required", err, "path", tokenFile)
	default:
		m.token = tok
	}
	return m, nil
}

// FromCredentialsFile builds a Manager from a Google OAuth client
// credentials JSON file.
func FromCredentialsFile(credentialsFile, tokenFile, redirectURL string) (*Manager, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("auth: read credentials: %w", err)
	}
	cfg, err := google.ConfigFromJSON(b, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("auth: parse credentials: %w", err)
	}
	if redirectURL != "" {
		cfg.RedirectURL = redirectURL
	}
	return NewManager(cfg, tokenFile)
}

// Static returns a Manager authenticated with a fixed access token and no
// refresh capability.
func Static(accessToken string) *Manager {
	m := &Manager{subs: make(map[int]func(bool))}
	if accessToken != "" {
		m.token = &oauth2.Token{AccessToken: accessToken}
	}
	return m
}

// IsAuthenticated reports whether a usable token is held: an unexpired
// access token or a refresh token.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != nil && (m.token.Valid() || m.token.RefreshToken != "")
}

// AccessToken returns the current access token, refreshing it if needed.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	ts, err := m.TokenSource(ctx)
	if err != nil {
		return "", err
	}
	tok, err := ts.Token()
	if err != nil {
		return "", fmt.Errorf("auth: token: %w", err)
	}
	return tok.AccessToken, nil
}

// AuthCodeURL is the consent page URL; offline access yields a refresh token.
func (m *Manager) AuthCodeURL(state string) (string, error) {
	if m.config == nil {
		return "", errors.New("auth: no oauth client configured")
	}
	return m.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// Exchange trades an authorization code for a token and starts the session.
func (m *Manager) Exchange(ctx context.Context, code string) error {
	if m.config == nil {
		return errors.New("auth: no oauth client configured")
	}
	tok, err := m.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("auth: exchange: %w", err)
	}
	return m.SetToken(tok)
}

// SetToken installs tok, persists it and notifies subscribers.
func (m *Manager) SetToken(tok *oauth2.Token) error {
	if tok == nil {
		return errors.New("auth: nil token")
	}
	m.mu.Lock()
	m.token = tok
	err := m.saveLocked()
	m.mu.Unlock()
	if err != nil {
		return err
	}
	appLog.Info("auth: logged in")
	m.notify(true)
	return nil
}

// Logout drops the token in memory and on disk and notifies subscribers.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.token = nil
	var err error
	if m.tokenFile != "" {
		if rmErr := os.Remove(m.tokenFile); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = fmt.Errorf("auth: remove token: %w", rmErr)
		}
	}
	m.mu.Unlock()
	appLog.Info("auth: logged out")
	m.notify(false)
	return err
}

// Subscribe registers fn to be called after every login and logout with
// the new state. The returned func unregisters it.
func (m *Manager) Subscribe(fn func(authenticated bool)) (cancel func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Manager) notify(authenticated bool) {
	m.mu.Lock()
	fns := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(authenticated)
	}
}

// TokenSource returns a source that refreshes through the OAuth config and
// saves refreshed tokens.
func (m *Manager) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == nil {
		return nil, ErrNotAuthenticated
	}
	if m.config == nil {
		return oauth2.StaticTokenSource(m.token), nil
	}
	base := m.config.TokenSource(ctx, m.token)
	return oauth2.ReuseTokenSource(m.token, &savingSource{m: m, base: base}), nil
}

// HTTPClient returns a client that authorizes requests with the session.
func (m *Manager) HTTPClient(ctx context.Context) (*http.Client, error) {
	ts, err := m.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}

type savingSource struct {
	m    *Manager
	base oauth2.TokenSource
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.token == nil {
		// logged out while refreshing
		return nil, ErrNotAuthenticated
	}
	if tok.AccessToken != s.m.token.AccessToken {
		s.m.token = tok
		if err := s.m.saveLocked(); err != nil {
			appLog.Error("auth: save refreshed token failed", err)
		}
	}
	return tok, nil
}

func readToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// saveLocked writes the token atomically with 0600 perms. Caller holds m.mu.
func (m *Manager) saveLocked() error {
	if m.tokenFile == "" || m.token == nil {
		return nil
	}
	data, err := json.Marshal(m.token)
	if err != nil {
		return fmt.Errorf("auth: encode token: %w", err)
	}
	dir := filepath.Dir(m.tokenFile)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("auth: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".token-*.json")
	if err != nil {
		return fmt.Errorf("auth: temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("auth: write token: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("auth: chmod token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("auth: close token: %w", err)
	}
	if err := os.Rename(tmpName, m.tokenFile); err != nil {
		return fmt.Errorf("auth: rename token: %w", err)
	}
	return nil
}
