package ports

import "context"

// Device login poll statuses. Pending and expired are ordinary flow states,
// not failures: the caller retries on pending and restarts the flow on
// expired.
const (
	PollAuthenticated = "authenticated"
	PollPending       = "pending"
	PollExpired       = "expired"
	PollError         = "error"
)

// DeviceLogin holds what a caller needs to complete a device-code grant on a
// second device.
type DeviceLogin struct {
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete"`
	UserCode                string `json:"user_code"`
	DeviceCode              string `json:"device_code"`
	ExpiresIn               int64  `json:"expires_in"`
	Interval                int64  `json:"interval"`
}

// PollResult is the outcome of a single device-login poll.
type PollResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// AuthFlow is the device-code authentication surface exposed to callers
// outside the catalog adapter.
type AuthFlow interface {
	// IsAuthenticated reports whether a usable session is stored.
	IsAuthenticated(ctx context.Context) bool

	// StartDeviceLogin requests a device authorization. No session required.
	StartDeviceLogin(ctx context.Context) (DeviceLogin, error)

	// PollDeviceLogin performs one token exchange for the device code. It
	// never waits; the caller schedules retries at the reported interval.
	PollDeviceLogin(ctx context.Context, deviceCode string) (PollResult, error)

	// Logout clears the stored session.
	Logout(ctx context.Context) error
}
