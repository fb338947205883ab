package domain

import "time"

// User is the authentication identity. It carries only what credential
// verification needs; everything business-facing lives on Profile.
type User struct {
	ID              string
	TenantID        string
	Email           string
	PasswordHash    string     // argon2id encoded
	EmailVerifiedAt *time.Time // nil until the address is confirmed
	TOTPSecret      *string    // nil unless a second factor is enrolled
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EmailVerified reports whether the address has been confirmed.
func (u User) EmailVerified() bool { return u.EmailVerifiedAt != nil }

// TOTPEnrolled reports whether sign-in requires a TOTP code.
func (u User) TOTPEnrolled() bool { return u.TOTPSecret != nil && *u.TOTPSecret != "" }
