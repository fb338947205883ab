package domain

import "time"

// TenantStatus gates whether any sign-in into the tenant is honored.
type TenantStatus string

const (
	TenantActive    TenantStatus = "active"
	TenantSuspended TenantStatus = "suspended"
)

// Tenant is an isolated customer namespace. Every user, profile, and
// refresh token belongs to exactly one tenant.
type Tenant struct {
	ID        string
	Name      string
	Status    TenantStatus
	CreatedAt time.Time
}
