// Package identity mints and verifies session credentials on top of ID tokens issued by
// the external identity provider.
package identity

import "time"

// Identity is the verified principal attached to an authenticated request.
type Identity struct {
	UID       string
	Email     string
	SessionID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

const (
	// SessionLifetime is how long a freshly minted session stays valid.
	SessionLifetime = 7 * 24 * time.Hour

	minSessionLifetime = 5 * time.Minute
	maxSessionLifetime = 14 * 24 * time.Hour

	// Provider tokens older than this are not exchanged for a session.
	recentSignIn = 5 * time.Minute
)
