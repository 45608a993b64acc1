package domain

import "time"

// expiryGrace is subtracted from the stored expiry when deciding whether an
// access token is still usable, so requests already in flight don't race the
// real expiry.
const expiryGrace = 60 * time.Second

// Session is the stored OAuth token set for the catalog service. It is
// mutated only by the token lifecycle manager.
type Session struct {
	TokenType    string `json:"token_type"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiryTime   int64  `json:"expiry_time"` // absolute epoch seconds
	CountryCode  string `json:"country_code,omitempty"`
}

// Expired reports whether the access token is past, or within the grace
// window of, its expiry.
func (s Session) Expired(now time.Time) bool {
	return now.After(time.Unix(s.ExpiryTime, 0).Add(-expiryGrace))
}

// Authenticated reports whether the session can still produce a usable access
// token: either a refresh token exists or the current token has not expired.
func (s Session) Authenticated(now time.Time) bool {
	return s.RefreshToken != "" || !s.Expired(now)
}

// AuthorizationHeader returns the bearer header value for catalog requests.
func (s Session) AuthorizationHeader() string {
	return s.TokenType + " " + s.AccessToken
}
