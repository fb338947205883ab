package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fixplanhq/fixplan/internal/session/domain"
	"github.com/fixplanhq/fixplan/internal/session/service"
	"github.com/fixplanhq/fixplan/pkg/httpx"
	"github.com/fixplanhq/fixplan/pkg/sessionsdk"
	"github.com/fixplanhq/fixplan/pkg/slogx"
)

type ProfileHandler struct {
	ProfileService *service.ProfileService
}

// ServeHTTP returns the caller's tenant-scoped profile. 404 with
// profile_not_found is the "account setup required" case, distinct from a
// transient server error: the client maps it to missing, not error.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogx.FromContext(ctx)

	claims, ok := httpx.ClaimsFrom(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "missing token claims")
		return
	}

	p, err := h.ProfileService.GetProfile(ctx, claims.TID, claims.Subject)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "profile_not_found", "no profile has been provisioned for this account")
			return
		}
		l.Error("profile fetch failed", "error", err, "user_id", claims.Subject)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "an internal error occurred")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, profileResponse(p))
}

type ProvisionHandler struct {
	ProfileService *service.ProfileService
}

// ServeHTTP creates a user and profile in the caller's tenant. Admin only.
func (h *ProvisionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogx.FromContext(ctx)

	claims, ok := httpx.ClaimsFrom(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "missing token claims")
		return
	}

	var req sessionsdk.ProvisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	p, err := h.ProfileService.Provision(ctx, claims.TID, claims.Subject, service.ProvisionInput{
		Email:    req.Email,
		Name:     req.Name,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAdmin):
			httpx.WriteError(w, http.StatusForbidden, "not_admin", "only an active admin can provision accounts")
		case errors.Is(err, service.ErrInvalidRole):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_role", "role must be admin, manager, technician, or requester")
		case errors.Is(err, service.ErrInvalidInput):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email, name, and password are required")
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusConflict, "email_taken", "an account with this email already exists")
		default:
			l.Error("provision failed", "error", err, "tenant_id", claims.TID)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "an internal error occurred")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, profileResponse(p))
}

func profileResponse(p domain.Profile) sessionsdk.ProfileResponse {
	return sessionsdk.ProfileResponse{
		UserID:      p.UserID,
		TenantID:    p.TenantID,
		Name:        p.Name,
		Role:        p.Role,
		State:       string(p.State),
		LastLoginAt: p.LastLoginAt,
	}
}
