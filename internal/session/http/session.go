package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fixplanhq/fixplan/internal/session/service"
	"github.com/fixplanhq/fixplan/pkg/httpx"
	"github.com/fixplanhq/fixplan/pkg/sessionsdk"
	"github.com/fixplanhq/fixplan/pkg/slogx"
)

type SignInHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP exchanges credentials for a token pair. The response carries
// the identity projection so the client never has to decode the JWT.
func (h *SignInHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogx.FromContext(ctx)

	var req sessionsdk.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	pair, err := h.AuthService.SignIn(ctx, req.Email, req.Password, req.TOTPCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "email or password is incorrect")
		case errors.Is(err, service.ErrTOTPRequired):
			httpx.WriteError(w, http.StatusUnauthorized, "totp_required", "a TOTP code is required for this account")
		case errors.Is(err, service.ErrInvalidTOTP):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_totp", "the TOTP code is incorrect")
		case errors.Is(err, service.ErrTenantSuspended):
			httpx.WriteError(w, http.StatusForbidden, "tenant_suspended", "this organization is suspended")
		case errors.Is(err, service.ErrProfileDisabled):
			httpx.WriteError(w, http.StatusForbidden, "profile_disabled", "this account has been disabled")
		default:
			l.Error("sign-in failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "an internal error occurred")
		}
		return
	}

	user, err := h.AuthService.Store.Users().GetUserByEmail(ctx, req.Email)
	if err != nil {
		l.Error("sign-in user reload failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "an internal error occurred")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionsdk.TokenResponse{
		AccessToken:   pair.AccessToken,
		TokenType:     "Bearer",
		RefreshToken:  pair.RefreshToken,
		SessionID:     pair.SessionID,
		ExpiresIn:     int64(pair.ExpiresIn.Seconds()),
		UserID:        user.ID,
		Email:         user.Email,
		EmailVerified: user.EmailVerified(),
	})
}

type SignOutHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP revokes the caller's session. Revoking an already-dead session
// still returns 204; sign-out is idempotent end to end.
func (h *SignOutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogx.FromContext(ctx)

	claims, ok := httpx.ClaimsFrom(ctx)
	if !ok || claims.SID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "token carries no session")
		return
	}

	if err := h.AuthService.SignOut(ctx, claims.SID); err != nil {
		l.Error("sign-out failed", "error", err, "session_id", claims.SID)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "an internal error occurred")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type SessionInfoHandler struct{}

// ServeHTTP introspects the caller's access token.
func (h *SessionInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "missing token claims")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionsdk.SessionInfoResponse{
		UserID:        claims.Subject,
		TenantID:      claims.TID,
		SessionID:     claims.SID,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
	})
}

type RefreshHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP rotates a refresh token. A 401 here is the signal the client
// treats as session invalidation.
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogx.FromContext(ctx)

	var req sessionsdk.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "refresh_token is required")
		return
	}

	pair, err := h.AuthService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRefresh):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_refresh_token", "the refresh token is invalid, expired, or revoked")
		case errors.Is(err, service.ErrTenantSuspended):
			httpx.WriteError(w, http.StatusForbidden, "tenant_suspended", "this organization is suspended")
		default:
			l.Error("refresh failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "an internal error occurred")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: pair.RefreshToken,
		SessionID:    pair.SessionID,
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
	})
}
