// Package tidal provides the authenticated Tidal catalog adapter: the token
// lifecycle manager, the device-code login flow, and the HTTP catalog client
// the discovery pipeline reads from.
package tidal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ewilliams-labs/crescendo/internal/core/domain"
	"github.com/ewilliams-labs/crescendo/internal/core/ports"
	"github.com/ewilliams-labs/crescendo/internal/metrics"
)

const (
	defaultAuthBase      = "https://auth.tidal.com/v1/oauth2"
	defaultScopes        = "r_usr w_usr w_sub"
	defaultExpirySeconds = 86400
)

// AuthConfig carries the device-client credentials and endpoints for the
// authorization server.
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Scopes       string
}

// Authenticator is the token lifecycle manager. It loads the stored session
// lazily, caches it in memory, refreshes it behind a single-slot in-flight
// guard, and clears it when the authorization server rejects the refresh
// token.
type Authenticator struct {
	store      ports.SessionStore
	httpClient *http.Client
	cfg        AuthConfig
	logger     *log.Logger

	mu      sync.Mutex
	session *domain.Session // memory cache of the stored record
	refresh *refreshCall    // in-flight refresh, nil when idle

	now func() time.Time
}

// refreshCall is the single refresh allowed in flight at a time. Concurrent
// callers wait on done and share the outcome instead of issuing their own
// exchange.
type refreshCall struct {
	done chan struct{}
	sess domain.Session
	err  error
}

var _ ports.AuthFlow = (*Authenticator)(nil)

// NewAuthenticator constructs an Authenticator over the given session store.
func NewAuthenticator(store ports.SessionStore, httpClient *http.Client, cfg AuthConfig, logger *log.Logger) *Authenticator {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAuthBase
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Scopes == "" {
		cfg.Scopes = defaultScopes
	}
	return &Authenticator{
		store:      store,
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// ValidSession returns a session whose access token is usable, refreshing it
// first when it is expired or inside the grace window. It fails with
// ErrNotAuthenticated when no session is stored or the refresh is rejected.
func (a *Authenticator) ValidSession(ctx context.Context) (domain.Session, error) {
	s, ok, err := a.current(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	if !ok {
		return domain.Session{}, ports.ErrNotAuthenticated
	}
	if !s.Expired(a.now()) {
		return s, nil
	}
	return a.coalescedRefresh(ctx, s)
}

// Refresh forces a token refresh regardless of expiry. The catalog client
// calls this after a 401. Concurrent callers share a single exchange.
func (a *Authenticator) Refresh(ctx context.Context) (domain.Session, error) {
	s, ok, err := a.current(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	if !ok {
		return domain.Session{}, ports.ErrNotAuthenticated
	}
	return a.coalescedRefresh(ctx, s)
}

// IsAuthenticated reports whether a usable session is stored: a refresh
// token exists or the access token has not expired.
func (a *Authenticator) IsAuthenticated(ctx context.Context) bool {
	s, ok, err := a.current(ctx)
	if err != nil || !ok {
		return false
	}
	return s.Authenticated(a.now())
}

// Logout clears the stored session.
func (a *Authenticator) Logout(ctx context.Context) error {
	return a.clear(ctx)
}

// current returns the cached session, loading it from the store on first
// use. ok is false when nothing is stored.
func (a *Authenticator) current(ctx context.Context) (domain.Session, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session != nil {
		return *a.session, true, nil
	}

	s, err := a.store.Load(ctx)
	if err != nil {
		if err == ports.ErrNoSession {
			return domain.Session{}, false, nil
		}
		return domain.Session{}, false, fmt.Errorf("tidal auth: load session: %w", err)
	}
	a.session = &s
	return s, true, nil
}

// coalescedRefresh attaches the caller to the in-flight refresh, starting one
// if none is running. At most one token exchange is on the wire at any time.
func (a *Authenticator) coalescedRefresh(ctx context.Context, s domain.Session) (domain.Session, error) {
	a.mu.Lock()
	call := a.refresh
	if call == nil {
		call = &refreshCall{done: make(chan struct{})}
		a.refresh = call
		go a.runRefresh(call, s)
	}
	a.mu.Unlock()

	select {
	case <-call.done:
		return call.sess, call.err
	case <-ctx.Done():
		return domain.Session{}, ctx.Err()
	}
}

// runRefresh executes the exchange on a background context: the outcome is
// shared by every waiter, so one caller's cancellation must not fail the
// rest. The HTTP client's own timeout still bounds the call.
func (a *Authenticator) runRefresh(call *refreshCall, s domain.Session) {
	call.sess, call.err = a.doRefresh(context.Background(), s)
	close(call.done)

	a.mu.Lock()
	a.refresh = nil
	a.mu.Unlock()
}

func (a *Authenticator) doRefresh(ctx context.Context, s domain.Session) (domain.Session, error) {
	if s.RefreshToken == "" {
		if err := a.clear(ctx); err != nil {
			return domain.Session{}, err
		}
		return domain.Session{}, ports.ErrNotAuthenticated
	}

	metrics.TokenRefreshes.Inc()
	resp, err := a.postForm(ctx, a.cfg.BaseURL+"/token", url.Values{
		"client_id":     {a.cfg.ClientID},
		"client_secret": {a.cfg.ClientSecret},
		"refresh_token": {s.RefreshToken},
		"grant_type":    {"refresh_token"},
		"scope":         {a.cfg.Scopes},
	})
	if err != nil {
		// Transport failure: the refresh token may still be good, keep the
		// session and surface the error.
		return domain.Session{}, fmt.Errorf("tidal auth: refresh request: %w", err)
	}
	defer resp.Body.Close()

	var tok tokenResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&tok)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// The authorization server rejected the refresh token; the session
		// is dead. This is the only path that destroys a session outside of
		// an explicit logout.
		if authErr := tok.authError(); authErr != nil {
			a.logger.Warn("refresh rejected, clearing session", "status", resp.StatusCode, "reason", authErr)
		} else {
			a.logger.Warn("refresh rejected, clearing session", "status", resp.StatusCode)
		}
		if err := a.clear(ctx); err != nil {
			return domain.Session{}, err
		}
		return domain.Session{}, ports.ErrNotAuthenticated
	}
	if decodeErr != nil {
		return domain.Session{}, fmt.Errorf("tidal auth: decode token: %w", decodeErr)
	}

	updated := domain.Session{
		TokenType:    fallback(tok.TokenType, s.TokenType),
		AccessToken:  tok.AccessToken,
		RefreshToken: fallback(tok.RefreshToken, s.RefreshToken),
		ExpiryTime:   a.computeExpiry(tok.ExpiresIn),
		CountryCode:  fallback(tok.User.CountryCode, s.CountryCode),
	}
	if err := a.save(ctx, updated); err != nil {
		return domain.Session{}, err
	}
	return updated, nil
}

// save persists the session and updates the memory cache.
func (a *Authenticator) save(ctx context.Context, s domain.Session) error {
	if err := a.store.Save(ctx, s); err != nil {
		return fmt.Errorf("tidal auth: save session: %w", err)
	}
	a.mu.Lock()
	a.session = &s
	a.mu.Unlock()
	return nil
}

// clear removes the session from the store and the memory cache.
func (a *Authenticator) clear(ctx context.Context) error {
	a.mu.Lock()
	a.session = nil
	a.mu.Unlock()
	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("tidal auth: clear session: %w", err)
	}
	return nil
}

func (a *Authenticator) postForm(ctx context.Context, endpoint string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.httpClient.Do(req)
}

func (a *Authenticator) computeExpiry(expiresIn int64) int64 {
	if expiresIn <= 0 {
		expiresIn = defaultExpirySeconds
	}
	return a.now().Unix() + expiresIn
}

// tokenResponse is the authorization server's JSON shape for token grants.
// Error fields are populated on non-2xx responses.
type tokenResponse struct {
	TokenType    string `json:"token_type"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         struct {
		CountryCode string `json:"countryCode"`
	} `json:"user"`
	ErrorCode        string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// authError converts the embedded OAuth error fields into the typed error,
// or nil when the response carries none.
func (t tokenResponse) authError() *ports.AuthServerError {
	if t.ErrorCode == "" && t.ErrorDescription == "" {
		return nil
	}
	return &ports.AuthServerError{Code: t.ErrorCode, Description: t.ErrorDescription}
}

func fallback(value, prev string) string {
	if value == "" {
		return prev
	}
	return value
}
