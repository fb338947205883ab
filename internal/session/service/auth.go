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
	"github.com/fixplanhq/fixplan/pkg/jwtx"
	"github.com/fixplanhq/fixplan/pkg/slogx"
	"github.com/pquerna/otp/totp"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrTOTPRequired       = errors.New("totp_required")
	ErrInvalidTOTP        = errors.New("invalid_totp")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrTenantSuspended    = errors.New("tenant_suspended")
	ErrProfileDisabled    = errors.New("profile_disabled")
)

// AuthService owns sign-in, refresh, and sign-out. It issues short-lived
// access tokens plus rotating opaque refresh tokens; every token minted for
// one sign-in carries the same session id, which is the unit of revocation.
type AuthService struct {
	Signer     *jwtx.Signer
	Store      store.Store
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// SignIn verifies credentials and mints a token pair.
//
// Failures that the caller can act on come back as sentinel errors; password
// mismatch and unknown email are collapsed into ErrInvalidCredentials so the
// response cannot be used to probe which addresses exist.
func (s *AuthService) SignIn(ctx context.Context, email, password, totpCode string) (*domain.TokenPair, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn comparable time so the response does not reveal
			// whether the address exists.
			_, _ = cryptox.HashPassword(password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Info("sign-in password mismatch", slog.String("user_id", u.ID))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if u.TOTPEnrolled() {
		if totpCode == "" {
			return nil, ErrTOTPRequired
		}
		if !totp.Validate(totpCode, *u.TOTPSecret) {
			l.Info("sign-in TOTP mismatch", slog.String("user_id", u.ID))
			return nil, ErrInvalidTOTP
		}
	}

	tenant, err := s.Store.Tenants().GetTenantByID(ctx, u.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant.Status != domain.TenantActive {
		l.Warn("sign-in into suspended tenant",
			slog.String("user_id", u.ID),
			slog.String("tenant_id", tenant.ID),
		)
		return nil, ErrTenantSuspended
	}

	// A disabled profile blocks sign-in outright. A missing profile does
	// not: the user authenticates and the shell shows account setup.
	hasProfile := false
	profile, err := s.Store.Profiles().GetProfile(ctx, u.TenantID, u.ID)
	switch {
	case err == nil:
		if profile.State == domain.ProfileDisabled {
			return nil, ErrProfileDisabled
		}
		hasProfile = true
	case errors.Is(err, store.ErrNotFound):
		// fall through
	default:
		return nil, err
	}

	sessionID := idx.New().String()
	pair, err := s.issue(ctx, u, sessionID, now)
	if err != nil {
		return nil, err
	}

	if hasProfile {
		if err := s.Store.Profiles().TouchLastLogin(ctx, u.ID, now); err != nil {
			// Non-fatal; the sign-in already succeeded.
			l.Error("failed to touch last login", slog.Any("error", err), slog.String("user_id", u.ID))
		}
	}

	l.Info("sign-in succeeded",
		slog.String("user_id", u.ID),
		slog.String("tenant_id", u.TenantID),
		slog.String("session_id", sessionID),
	)
	return pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is minted within the same session, atomically. A revoked, expired,
// or unknown token yields ErrInvalidRefresh, which is the signal the client
// treats as session invalidation.
func (s *AuthService) Refresh(ctx context.Context, refreshOpaque string) (*domain.TokenPair, error) {
	now := time.Now().UTC()

	fp := cryptox.FingerprintToken(refreshOpaque)
	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}
	if rt.Revoked() || now.After(rt.ExpiresAt) {
		return nil, ErrInvalidRefresh
	}

	u, err := s.Store.Users().GetUserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	tenant, err := s.Store.Tenants().GetTenantByID(ctx, u.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant.Status != domain.TenantActive {
		return nil, ErrTenantSuspended
	}

	accessToken, err := s.signAccess(u, rt.SessionID, now)
	if err != nil {
		return nil, err
	}

	newOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	newRT := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TenantID:  u.TenantID,
		SessionID: rt.SessionID,
		TokenHash: cryptox.FingerprintToken(newOpaque),
		ExpiresAt: now.Add(s.RefreshTTL),
		CreatedAt: now,
	}

	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, newRT)
	}); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newOpaque,
		SessionID:    rt.SessionID,
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// SignOut revokes every refresh token of the session. It is idempotent:
// signing out an already-revoked or unknown session succeeds, so a client
// retrying sign-out (or timing out an already-dead session) never errors.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	l := slogx.FromContext(ctx)
	if err := s.Store.RefreshTokens().RevokeSession(ctx, sessionID); err != nil {
		return err
	}
	l.Info("session revoked", slog.String("session_id", sessionID))
	return nil
}

func (s *AuthService) issue(ctx context.Context, u domain.User, sessionID string, now time.Time) (*domain.TokenPair, error) {
	accessToken, err := s.signAccess(u, sessionID, now)
	if err != nil {
		return nil, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	rt := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TenantID:  u.TenantID,
		SessionID: sessionID,
		TokenHash: cryptox.FingerprintToken(refreshOpaque),
		ExpiresAt: now.Add(s.RefreshTTL),
		CreatedAt: now,
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshOpaque,
		SessionID:    sessionID,
		ExpiresIn:    s.AccessTTL,
	}, nil
}

func (s *AuthService) signAccess(u domain.User, sessionID string, now time.Time) (string, error) {
	claims := jwtx.NewSessionClaims(
		u.ID, sessionID, u.TenantID, u.Email,
		u.EmailVerified(),
		s.AccessTTL, s.Issuer, now,
	)
	return s.Signer.Sign(claims)
}
