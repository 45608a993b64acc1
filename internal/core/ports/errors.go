package ports

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated indicates there is no usable catalog session. The
// caller must run the device login flow before retrying.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrNoSession is returned by SessionStore.Load when no record is stored.
var ErrNoSession = errors.New("no stored session")

// APIError is a non-401 failure from the catalog API, surfaced verbatim.
type APIError struct {
	Status     int
	StatusText string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tidal api error: %d %s", e.Status, e.StatusText)
}

// AuthServerError is a rejection from the authorization server, distinct
// from catalog API failures.
type AuthServerError struct {
	Code        string
	Description string
}

func (e *AuthServerError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("auth server error: %s", e.Code)
	}
	return fmt.Sprintf("auth server error: %s: %s", e.Code, e.Description)
}
