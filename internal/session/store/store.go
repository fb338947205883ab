package store

import (
	"context"
	"errors"
	"time"

	"github.com/fixplanhq/fixplan/internal/session/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it;
// everything above talks to the sub-repositories so the driver can swap
// without touching services.
type Store interface {
	Tenants() Tenants
	Users() Users
	Profiles() Profiles
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// WithTx executes fn inside a transaction, rolling back when fn errors
	// and committing otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Tenants() Tenants
	Users() Users
	Profiles() Profiles
	RefreshTokens() RefreshTokens

	Commit() error
	Rollback() error
}

type Tenants interface {
	CreateTenant(ctx context.Context, t domain.Tenant) error
	GetTenantByID(ctx context.Context, id string) (domain.Tenant, error)
	SetTenantStatus(ctx context.Context, id string, status domain.TenantStatus) error

	// IsEmpty reports whether no tenant exists yet; true means the
	// deployment still needs bootstrapping.
	IsEmpty(ctx context.Context) (bool, error)
}

type Users interface {
	CreateUser(ctx context.Context, u domain.User) error
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is the sign-in lookup. Emails are globally unique so
	// the sign-in form does not need a tenant selector.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
}

type Profiles interface {
	CreateProfile(ctx context.Context, p domain.Profile) error

	// GetProfile is tenant-scoped by construction: a profile row outside
	// the caller's tenant is indistinguishable from a missing one.
	GetProfile(ctx context.Context, tenantID, userID string) (domain.Profile, error)

	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
	SetState(ctx context.Context, userID string, state domain.ProfileState) error
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken revokes a single token by fingerprint (rotation).
	RevokeRefreshToken(ctx context.Context, hash string) error

	// RevokeSession revokes every token of a sign-in session (sign-out,
	// including the inactivity-timeout path). Revoking an already-revoked
	// or unknown session is a no-op, which makes sign-out idempotent.
	RevokeSession(ctx context.Context, sessionID string) error

	// DeleteExpired purges tokens that expired before the cutoff.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
