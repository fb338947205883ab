package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	httpapi "github.com/fixplanhq/fixplan/internal/session/http"
	"github.com/fixplanhq/fixplan/internal/session/service"
	"github.com/fixplanhq/fixplan/internal/session/store/drivers/sqlite"
	"github.com/fixplanhq/fixplan/pkg/jwtx"
	"github.com/fixplanhq/fixplan/pkg/sessionsdk"
	"github.com/fixplanhq/fixplan/pkg/slogx"
)

/*
 * Common constants and helpers for session gateway end-to-end tests. The
 * gateway runs in-process behind an httptest server with an in-memory
 * database, so every test gets a fresh deployment.
 */

const (
	bootstrapToken = "test-bootstrap-token-12345"

	tenantName    = "Example Facilities"
	adminEmail    = "admin@example.com"
	adminName     = "Avery Admin"
	adminPassword = "Admin123!"

	techEmail    = "tech@example.com"
	techName     = "Terry Technician"
	techPassword = "Tech123!"
)

// setupGateway boots a fully wired gateway and returns a client pointed at
// it plus the base URL for raw requests.
func setupGateway(t *testing.T) (*sessionsdk.Client, string) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	pub, priv, err := jwtx.GenerateKey()
	require.NoError(t, err)
	signer, err := jwtx.NewSigner("e2e-key-001", priv)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifier("e2e-key-001", pub, "fixplan-e2e")
	require.NoError(t, err)

	logger := slogx.New(slogx.Config{
		Service: "session-gateway",
		Env:     "test",
		Level:   "error",
		Format:  "text",
	})

	router := httpapi.NewRouter(verifier, "e2e", st, logger)
	router.AuthService = &service.AuthService{
		Signer:     signer,
		Store:      st,
		Issuer:     "fixplan-e2e",
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
	router.ProfileService = &service.ProfileService{Store: st}
	router.BootstrapService = &service.BootstrapService{Store: st, Token: bootstrapToken}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return sessionsdk.NewClient(srv.URL), srv.URL
}

// bootstrapGateway seeds the first tenant and admin.
func bootstrapGateway(t *testing.T, client *sessionsdk.Client) sessionsdk.BootstrapResponse {
	t.Helper()

	resp, err := client.Bootstrap(context.Background(), bootstrapToken, sessionsdk.BootstrapRequest{
		TenantName:    tenantName,
		AdminEmail:    adminEmail,
		AdminName:     adminName,
		AdminPassword: adminPassword,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.TenantID)
	require.NotEmpty(t, resp.AdminUserID)
	return resp
}

// provisionTechnician creates the standard non-admin account. The client
// must hold an admin session.
func provisionTechnician(t *testing.T, client *sessionsdk.Client) sessionsdk.ProfileResponse {
	t.Helper()

	profile, err := client.Provision(context.Background(), sessionsdk.ProvisionRequest{
		Email:    techEmail,
		Name:     techName,
		Role:     "technician",
		Password: techPassword,
	})
	require.NoError(t, err)
	require.Equal(t, "technician", profile.Role)
	return profile
}

// getSessionInfo introspects an access token via GET /v1/session.
func getSessionInfo(t *testing.T, baseURL, accessToken string) sessionsdk.SessionInfoResponse {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, baseURL+"/v1/session", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info sessionsdk.SessionInfoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	return info
}

// revokeSessionRaw revokes a session server-side without touching the
// client's local state, simulating revocation from another device.
func revokeSessionRaw(t *testing.T, baseURL, accessToken string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodDelete, baseURL+"/v1/session", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}
