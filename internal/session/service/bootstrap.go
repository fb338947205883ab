package service

import (
	"context"
	"crypto/subtle"
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
	ErrBootstrapAlready      = errors.New("already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
)

// BootstrapData is the first-tenant payload.
type BootstrapData struct {
	TenantName    string
	AdminEmail    string
	AdminName     string
	AdminPassword string
}

// BootstrapService seeds the very first tenant and its admin. It only works
// while the deployment is empty and the caller knows the bootstrap token.
type BootstrapService struct {
	Store store.Store
	Token string // pre-configured bootstrap token
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Tenants().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap creates the tenant, its admin user, and the admin profile in one
// transaction. Returns the new tenant and admin user ids.
func (s *BootstrapService) Bootstrap(ctx context.Context, token string, req BootstrapData) (string, string, error) {
	l := slogx.FromContext(ctx)

	if bootstrapped, err := s.IsBootstrapped(ctx); err != nil {
		return "", "", err
	} else if bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped deployment")
		return "", "", ErrBootstrapAlready
	}

	if s.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return "", "", ErrBootstrapUnauthorized
	}

	req.TenantName = strings.TrimSpace(req.TenantName)
	req.AdminEmail = strings.TrimSpace(strings.ToLower(req.AdminEmail))
	req.AdminName = strings.TrimSpace(req.AdminName)
	if req.TenantName == "" || req.AdminEmail == "" || req.AdminName == "" || req.AdminPassword == "" {
		return "", "", ErrInvalidInput
	}

	passHash, err := cryptox.HashPassword(req.AdminPassword)
	if err != nil {
		return "", "", err
	}

	now := time.Now().UTC()
	tenantID := idx.New().String()
	adminID := idx.New().String()

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Tenants().CreateTenant(ctx, domain.Tenant{
			ID:        tenantID,
			Name:      req.TenantName,
			Status:    domain.TenantActive,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		if err := tx.Users().CreateUser(ctx, domain.User{
			ID:              adminID,
			TenantID:        tenantID,
			Email:           req.AdminEmail,
			PasswordHash:    passHash,
			EmailVerifiedAt: &now, // the operator vouches for the first admin
			CreatedAt:       now,
			UpdatedAt:       now,
		}); err != nil {
			return err
		}

		return tx.Profiles().CreateProfile(ctx, domain.Profile{
			UserID:    adminID,
			TenantID:  tenantID,
			Name:      req.AdminName,
			Role:      domain.RoleAdmin,
			State:     domain.ProfileActive,
			CreatedAt: now,
			UpdatedAt: now,
		})
	})
	if err != nil {
		return "", "", err
	}

	l.Info("bootstrapped deployment",
		slog.String("tenant_id", tenantID),
		slog.String("admin_user_id", adminID),
	)
	return tenantID, adminID, nil
}
