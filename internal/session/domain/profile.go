package domain

import "time"

// Profile roles within a tenant. Admin unlocks user administration and
// provisioning; the rest differ only in what the application shell shows.
const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleTechnician = "technician"
	RoleRequester  = "requester"
)

// ProfileState is the provisioning state of a profile row.
type ProfileState string

const (
	ProfileActive   ProfileState = "active"
	ProfileDisabled ProfileState = "disabled"
)

// Profile is the tenant-scoped business record for an identity. A User with
// no Profile row can authenticate but cannot enter the application; that is
// the "account setup required" case the shell surfaces.
type Profile struct {
	UserID      string
	TenantID    string
	Name        string
	Role        string
	State       ProfileState
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsAdmin reports whether the profile carries the admin role.
func (p Profile) IsAdmin() bool { return p.Role == RoleAdmin }
