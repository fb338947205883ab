package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/fixplanhq/fixplan/internal/session/domain"
	"github.com/fixplanhq/fixplan/internal/session/store"
	"github.com/fixplanhq/fixplan/pkg/cryptox"
	"github.com/fixplanhq/fixplan/pkg/idx"
	"github.com/fixplanhq/fixplan/pkg/slogx"
)

var (
	// ErrProfileNotFound means the identity authenticated fine but no
	// profile row exists in its tenant. Clients surface this as "account
	// setup required" rather than an error.
	ErrProfileNotFound = errors.New("profile_not_found")

	ErrNotAdmin     = errors.New("not_admin")
	ErrInvalidRole  = errors.New("invalid_role")
	ErrEmailTaken   = errors.New("email_taken")
	ErrInvalidInput = errors.New("invalid_input")
)

// ProfileService reads and provisions tenant-scoped profiles.
type ProfileService struct {
	Store store.Store
}

// GetProfile loads the profile for userID within tenantID. The lookup is
// tenant-scoped, so a profile in another tenant is reported as missing, not
// forbidden; the distinction would leak which user ids exist.
func (s *ProfileService) GetProfile(ctx context.Context, tenantID, userID string) (domain.Profile, error) {
	p, err := s.Store.Profiles().GetProfile(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, ErrProfileNotFound
		}
		return domain.Profile{}, err
	}
	return p, nil
}

// ProvisionInput describes a user+profile pair an admin creates.
type ProvisionInput struct {
	Email    string
	Name     string
	Role     string
	Password string
}

func validRole(role string) bool {
	switch role {
	case domain.RoleAdmin, domain.RoleManager, domain.RoleTechnician, domain.RoleRequester:
		return true
	default:
		return false
	}
}

// Provision creates a user and its profile in the acting admin's tenant.
// actorUserID must resolve to an active admin profile in tenantID.
func (s *ProfileService) Provision(ctx context.Context, tenantID, actorUserID string, in ProvisionInput) (domain.Profile, error) {
	l := slogx.FromContext(ctx)

	actor, err := s.Store.Profiles().GetProfile(ctx, tenantID, actorUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, ErrNotAdmin
		}
		return domain.Profile{}, err
	}
	if !actor.IsAdmin() || actor.State != domain.ProfileActive {
		return domain.Profile{}, ErrNotAdmin
	}

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if in.Email == "" || in.Name == "" || in.Password == "" {
		return domain.Profile{}, ErrInvalidInput
	}
	if !validRole(in.Role) {
		return domain.Profile{}, ErrInvalidRole
	}

	passHash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.Profile{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		TenantID:     tenantID,
		Email:        in.Email,
		PasswordHash: passHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	profile := domain.Profile{
		UserID:    user.ID,
		TenantID:  tenantID,
		Name:      in.Name,
		Role:      in.Role,
		State:     domain.ProfileActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.Profiles().CreateProfile(ctx, profile)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Profile{}, ErrEmailTaken
		}
		return domain.Profile{}, err
	}

	l.Info("provisioned profile",
		slog.String("tenant_id", tenantID),
		slog.String("user_id", user.ID),
		slog.String("role", in.Role),
	)
	return profile, nil
}

// SetState enables or disables a profile in the acting admin's tenant.
// Disabling takes effect at the next refresh, not instantly; outstanding
// access tokens ride out their short TTL.
func (s *ProfileService) SetState(ctx context.Context, tenantID, actorUserID, userID string, state domain.ProfileState) error {
	actor, err := s.Store.Profiles().GetProfile(ctx, tenantID, actorUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotAdmin
		}
		return err
	}
	if !actor.IsAdmin() || actor.State != domain.ProfileActive {
		return ErrNotAdmin
	}

	// Scope the target to the tenant before touching it.
	if _, err := s.Store.Profiles().GetProfile(ctx, tenantID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProfileNotFound
		}
		return err
	}
	return s.Store.Profiles().SetState(ctx, userID, state)
}
