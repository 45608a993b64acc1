package tidal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ewilliams-labs/crescendo/internal/core/domain"
	"github.com/ewilliams-labs/crescendo/internal/core/ports"
	"github.com/ewilliams-labs/crescendo/internal/metrics"
)

const (
	defaultAPIBase     = "https://api.tidal.com"
	defaultCountryCode = "US"
)

// Client is the authenticated HTTP client for the Tidal catalog API.
type Client struct {
	auth       *Authenticator
	httpClient *http.Client
	baseURL    string
	logger     *log.Logger
}

// compile-time interface assertion
var _ ports.CatalogProvider = (*Client)(nil)

// NewClient constructs a catalog client on top of the token lifecycle
// manager.
func NewClient(auth *Authenticator, httpClient *http.Client, baseURL string, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultAPIBase
	}
	return &Client{
		auth:       auth,
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// get performs an authenticated GET and decodes the JSON response into out.
// Every request carries the session's country code ("US" when absent). A 401
// triggers exactly one forced token refresh and one retry of the same
// request; a 401 on the retry surfaces as ErrNotAuthenticated, and any other
// non-2xx status becomes an APIError.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	sess, err := c.auth.ValidSession(ctx)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, path, params, sess)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		_ = resp.Body.Close()
		c.logger.Debug("401 from catalog, refreshing token", "path", path)
		refreshed, err := c.auth.Refresh(ctx)
		if err != nil {
			return err
		}
		resp, err = c.do(ctx, path, params, refreshed)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		metrics.CatalogRequests.WithLabelValues("unauthorized").Inc()
		return ports.ErrNotAuthenticated
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.CatalogRequests.WithLabelValues("error").Inc()
		return &ports.APIError{Status: resp.StatusCode, StatusText: http.StatusText(resp.StatusCode)}
	}
	metrics.CatalogRequests.WithLabelValues("ok").Inc()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tidal: decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string, params url.Values, sess domain.Session) (*http.Response, error) {
	q := url.Values{}
	country := sess.CountryCode
	if country == "" {
		country = defaultCountryCode
	}
	q.Set("countryCode", country)
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("tidal: build request: %w", err)
	}
	req.Header.Set("Authorization", sess.AuthorizationHeader())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tidal: request %s: %w", path, err)
	}
	return resp, nil
}
