package sessionsdk

import (
	"context"
	"errors"
)

// Sentinel errors surfaced by backend implementations. The Store matches on
// these with errors.Is; anything else is treated as a transient failure.
var (
	ErrInvalidCredentials = errors.New("sessionsdk: invalid credentials")
	ErrTOTPRequired       = errors.New("sessionsdk: totp code required")
	ErrInvalidTOTP        = errors.New("sessionsdk: invalid totp code")
	ErrTenantSuspended    = errors.New("sessionsdk: tenant suspended")
	ErrProfileDisabled    = errors.New("sessionsdk: profile disabled")
	ErrProfileNotFound    = errors.New("sessionsdk: profile not provisioned")
	ErrNoSession          = errors.New("sessionsdk: no session")
)

// Event describes a session-lifecycle change emitted by an AuthBackend.
type Event int

const (
	// EventSignedIn fires when a sign-in succeeds.
	EventSignedIn Event = iota

	// EventRefreshed fires when the session tokens rotate successfully.
	EventRefreshed

	// EventInvalidated fires when the backend stops honoring the current
	// session while the client still holds it: a rejected refresh, a
	// server-side revocation, anything of that shape. This is the single
	// trigger for the Store's expired state.
	EventInvalidated

	// EventSignedOut fires when the session ends through SignOut.
	EventSignedOut
)

// AuthBackend is the credential capability the Store consumes. The HTTP
// Client implements it against the session gateway; tests use fakes.
type AuthBackend interface {
	// SignIn exchanges credentials for a session. Failures come back as
	// sentinel errors, never panics.
	SignIn(ctx context.Context, creds Credentials) (Session, error)

	// SignOut invalidates the current session server-side and forgets it
	// locally. Safe to call with no session.
	SignOut(ctx context.Context) error

	// CurrentSession returns the live session, if any.
	CurrentSession() (Session, bool)

	// Subscribe registers fn for session-lifecycle events. The returned
	// function unsubscribes; it is safe to call more than once.
	Subscribe(fn func(Event)) (unsubscribe func())
}

// ProfileFetcher is the tenant-profile capability. Tenant scoping happens
// server-side; the caller only supplies the user id. A never-provisioned
// profile is reported as ErrProfileNotFound, which the Store maps to the
// missing state rather than the error state.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, userID string) (UserProfile, error)
}
