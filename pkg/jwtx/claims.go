package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the default lifetime for access tokens. Short,
// because a stolen access token cannot be revoked before it expires.
const DefaultAccessTokenTTL = 15 * time.Minute

// DefaultRefreshTokenTTL is the default lifetime for refresh tokens. This is
// the absolute ceiling on how long a sign-in can survive without re-entering
// credentials.
const DefaultRefreshTokenTTL = 7 * 24 * time.Hour

// Claims are the access-token claims the session gateway issues. Changes
// must stay additive so older tokens keep verifying during a deploy.
type Claims struct {
	jwt.RegisteredClaims

	// SID identifies the sign-in session the token belongs to. Every token
	// minted for one sign-in (across refreshes) carries the same SID, which
	// is what sign-out revokes.
	SID string `json:"sid,omitempty"`

	// TID scopes the identity to a tenant. All business data access is
	// keyed by this downstream.
	TID string `json:"tid,omitempty"`

	// Email of the authenticated identity.
	Email string `json:"email,omitempty"`

	// EmailVerified mirrors the identity's verification flag.
	EmailVerified bool `json:"email_verified,omitempty"`
}

// NewSessionClaims builds minimally-correct claims for a session access
// token.
func NewSessionClaims(
	userID, sessionID, tenantID, email string,
	emailVerified bool,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{issuer},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		SID:           sessionID,
		TID:           tenantID,
		Email:         email,
		EmailVerified: emailVerified,
	}
}
