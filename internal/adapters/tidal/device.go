package tidal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/ewilliams-labs/crescendo/internal/core/domain"
	"github.com/ewilliams-labs/crescendo/internal/core/ports"
)

const (
	deviceCodeGrant     = "urn:ietf:params:oauth:grant-type:device_code"
	defaultPollInterval = 5 // seconds, when the server reports none
)

func (a *Authenticator) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     a.cfg.ClientID,
		ClientSecret: a.cfg.ClientSecret,
		Scopes:       strings.Fields(a.cfg.Scopes),
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: a.cfg.BaseURL + "/device_authorization",
			TokenURL:      a.cfg.BaseURL + "/token",
		},
	}
}

// StartDeviceLogin initiates a device-code grant. This is a stateless request
// to the device-authorization endpoint; no session is required.
func (a *Authenticator) StartDeviceLogin(ctx context.Context) (ports.DeviceLogin, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	resp, err := a.oauthConfig().DeviceAuth(ctx)
	if err != nil {
		return ports.DeviceLogin{}, fmt.Errorf("tidal auth: device authorization: %w", err)
	}

	interval := resp.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	expiresIn := int64(time.Until(resp.Expiry).Round(time.Second).Seconds())

	return ports.DeviceLogin{
		VerificationURI:         resp.VerificationURI,
		VerificationURIComplete: resp.VerificationURIComplete,
		UserCode:                resp.UserCode,
		DeviceCode:              resp.DeviceCode,
		ExpiresIn:               expiresIn,
		Interval:                interval,
	}, nil
}

// PollDeviceLogin performs a single token exchange for the device code. It
// does no waiting itself: the caller invokes it repeatedly at the interval
// reported by StartDeviceLogin until it reaches a terminal status.
//
// The oauth2 package's DeviceAccessToken blocks and polls internally, which
// is the wrong shape for an externally scheduled poll, so the exchange is a
// plain form POST here.
func (a *Authenticator) PollDeviceLogin(ctx context.Context, deviceCode string) (ports.PollResult, error) {
	resp, err := a.postForm(ctx, a.cfg.BaseURL+"/token", url.Values{
		"client_id":     {a.cfg.ClientID},
		"client_secret": {a.cfg.ClientSecret},
		"device_code":   {deviceCode},
		"grant_type":    {deviceCodeGrant},
		"scope":         {a.cfg.Scopes},
	})
	if err != nil {
		return ports.PollResult{}, fmt.Errorf("tidal auth: poll device login: %w", err)
	}
	defer resp.Body.Close()

	var tok tokenResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&tok)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if decodeErr != nil {
			return ports.PollResult{}, fmt.Errorf("tidal auth: decode token: %w", decodeErr)
		}
		sess := domain.Session{
			TokenType:    tok.TokenType,
			AccessToken:  tok.AccessToken,
			RefreshToken: tok.RefreshToken,
			ExpiryTime:   a.computeExpiry(tok.ExpiresIn),
			CountryCode:  tok.User.CountryCode,
		}
		if err := a.save(ctx, sess); err != nil {
			return ports.PollResult{}, err
		}
		a.logger.Info("device login complete", "country", sess.CountryCode)
		return ports.PollResult{Status: ports.PollAuthenticated}, nil
	}

	authErr := tok.authError()
	if authErr == nil {
		return ports.PollResult{Status: ports.PollError, Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}, nil
	}
	switch authErr.Code {
	case "authorization_pending":
		return ports.PollResult{Status: ports.PollPending}, nil
	case "expired_token":
		return ports.PollResult{Status: ports.PollExpired}, nil
	}

	msg := authErr.Description
	if msg == "" {
		msg = authErr.Code
	}
	return ports.PollResult{Status: ports.PollError, Message: msg}, nil
}
