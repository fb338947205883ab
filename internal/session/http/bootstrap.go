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

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP seeds the first tenant and admin. Only available while the
// deployment is empty and a bootstrap token is configured.
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogx.FromContext(ctx)

	if h.BootstrapService.Token == "" {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "bootstrap is not enabled")
		return
	}

	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "X-Bootstrap-Token header is required")
		return
	}

	var req sessionsdk.BootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	tenantID, adminID, err := h.BootstrapService.Bootstrap(ctx, token, service.BootstrapData{
		TenantName:    req.TenantName,
		AdminEmail:    req.AdminEmail,
		AdminName:     req.AdminName,
		AdminPassword: req.AdminPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBootstrapAlready):
			httpx.WriteError(w, http.StatusConflict, "already_bootstrapped", "this deployment has already been bootstrapped")
		case errors.Is(err, service.ErrBootstrapUnauthorized):
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid bootstrap token")
		case errors.Is(err, service.ErrInvalidInput):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "tenant name, admin email, name, and password are required")
		default:
			l.Error("bootstrap failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "an internal error occurred")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, sessionsdk.BootstrapResponse{
		TenantID:    tenantID,
		AdminUserID: adminID,
	})
}
