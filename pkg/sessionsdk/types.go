package sessionsdk

import "time"

// ProfileStatus is the readiness of the tenant-profile gate. It is distinct
// from raw authentication state: a user can be signed in while their profile
// is still loading, was never provisioned, or failed to fetch.
type ProfileStatus string

const (
	// StatusNone means no user is signed in; there is no profile state
	// and the shell shows the sign-in screen.
	StatusNone ProfileStatus = ""

	// StatusLoading covers the window between a user appearing and the
	// first profile fetch settling.
	StatusLoading ProfileStatus = "loading"

	// StatusReady means the profile fetched fine; the shell may render
	// the protected application.
	StatusReady ProfileStatus = "ready"

	// StatusMissing means the login is valid but no tenant record was
	// provisioned. Retrying does not help; an admin must act.
	StatusMissing ProfileStatus = "missing"

	// StatusError is a transient fetch failure, recoverable with
	// RetryProfileFetch.
	StatusError ProfileStatus = "error"

	// StatusExpired means the backend stopped honoring the session while
	// the user was still signed in locally.
	StatusExpired ProfileStatus = "expired"
)

// AuthUser is the minimal identity projection derived from a live session.
type AuthUser struct {
	ID            string
	Email         string
	EmailVerified bool
}

// UserProfile is the tenant-scoped business record for an identity.
type UserProfile struct {
	UserID      string
	TenantID    string
	Name        string
	Role        string
	State       string
	LastLoginAt *time.Time
}

// IsAdmin reports whether the profile carries the admin role.
func (p UserProfile) IsAdmin() bool { return p.Role == "admin" }

// Session is the credential bundle proving an authenticated identity to the
// gateway. At most one valid Session exists client-side at a time; a new one
// fully supersedes the prior one.
type Session struct {
	ID           string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         AuthUser
}

// Credentials is the sign-in input. TOTPCode is only needed for accounts
// with an enrolled second factor.
type Credentials struct {
	Email    string
	Password string
	TOTPCode string
}

// Wire types shared between the gateway handlers and the HTTP client.

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code,omitempty"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	SessionID    string `json:"session_id"`
	ExpiresIn    int64  `json:"expires_in"`

	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SessionInfoResponse struct {
	UserID        string `json:"user_id"`
	TenantID      string `json:"tenant_id"`
	SessionID     string `json:"session_id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

type ProfileResponse struct {
	UserID      string     `json:"user_id"`
	TenantID    string     `json:"tenant_id"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	State       string     `json:"state"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

type BootstrapRequest struct {
	TenantName    string `json:"tenant_name"`
	AdminEmail    string `json:"admin_email"`
	AdminName     string `json:"admin_name"`
	AdminPassword string `json:"admin_password"`
}

type BootstrapResponse struct {
	TenantID    string `json:"tenant_id"`
	AdminUserID string `json:"admin_user_id"`
}

type ProvisionRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
