package domain

import "time"

// RefreshToken is the persisted half of a rotating refresh pair. Only the
// SHA-256 fingerprint of the opaque value is stored.
type RefreshToken struct {
	ID        string
	UserID    string
	TenantID  string
	SessionID string // stable across rotations; what sign-out revokes
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Revoked reports whether the token has been explicitly invalidated.
func (t RefreshToken) Revoked() bool { return t.RevokedAt != nil }

// TokenPair is what a successful sign-in or refresh returns to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	SessionID    string
	ExpiresIn    time.Duration
}
