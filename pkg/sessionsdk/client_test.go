package sessionsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeWire(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func tokenResponse(access, refresh string) TokenResponse {
	return TokenResponse{
		AccessToken:   access,
		TokenType:     "Bearer",
		RefreshToken:  refresh,
		SessionID:     "sess-1",
		ExpiresIn:     900,
		UserID:        "user-1",
		Email:         "tech@example.com",
		EmailVerified: true,
	}
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func recordEvents(c *Client) *[]Event {
	var events []Event
	c.Subscribe(func(ev Event) { events = append(events, ev) })
	return &events
}

func TestClientSignIn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("success stores the session and emits", func(t *testing.T) {
		t.Parallel()
		mux := http.NewServeMux()
		mux.HandleFunc("POST /v1/session", func(w http.ResponseWriter, r *http.Request) {
			var req SignInRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "tech@example.com", req.Email)
			writeWire(t, w, http.StatusOK, tokenResponse("access-1", "refresh-1"))
		})
		c := newTestClient(t, mux)
		events := recordEvents(c)

		session, err := c.SignIn(ctx, Credentials{Email: "tech@example.com", Password: "pw"})
		require.NoError(t, err)
		require.Equal(t, "sess-1", session.ID)
		require.Equal(t, "user-1", session.User.ID)
		require.True(t, session.User.EmailVerified)

		current, ok := c.CurrentSession()
		require.True(t, ok)
		require.Equal(t, "access-1", current.AccessToken)
		require.Equal(t, []Event{EventSignedIn}, *events)
	})

	t.Run("error codes map to sentinels", func(t *testing.T) {
		t.Parallel()
		cases := []struct {
			code   string
			status int
			want   error
		}{
			{"invalid_credentials", http.StatusUnauthorized, ErrInvalidCredentials},
			{"totp_required", http.StatusUnauthorized, ErrTOTPRequired},
			{"invalid_totp", http.StatusUnauthorized, ErrInvalidTOTP},
			{"tenant_suspended", http.StatusForbidden, ErrTenantSuspended},
			{"profile_disabled", http.StatusForbidden, ErrProfileDisabled},
		}
		for _, tc := range cases {
			t.Run(tc.code, func(t *testing.T) {
				t.Parallel()
				mux := http.NewServeMux()
				mux.HandleFunc("POST /v1/session", func(w http.ResponseWriter, r *http.Request) {
					writeWire(t, w, tc.status, ErrorResponse{Error: tc.code})
				})
				c := newTestClient(t, mux)

				_, err := c.SignIn(ctx, Credentials{Email: "tech@example.com", Password: "bad"})
				require.ErrorIs(t, err, tc.want)

				_, ok := c.CurrentSession()
				require.False(t, ok)
			})
		}
	})

	t.Run("non-json failure falls back to server_error", func(t *testing.T) {
		t.Parallel()
		mux := http.NewServeMux()
		mux.HandleFunc("POST /v1/session", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})
		c := newTestClient(t, mux)

		_, err := c.SignIn(ctx, Credentials{Email: "tech@example.com", Password: "pw"})
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "server_error", apiErr.Code)
		require.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	})
}

func TestClientFetchProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	freshSession := func() Session {
		return Session{
			ID:           "sess-1",
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			ExpiresAt:    time.Now().Add(10 * time.Minute),
			User:         AuthUser{ID: "user-1", Email: "tech@example.com"},
		}
	}

	t.Run("sends the bearer token and decodes the profile", func(t *testing.T) {
		t.Parallel()
		mux := http.NewServeMux()
		mux.HandleFunc("GET /v1/profile", func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
			writeWire(t, w, http.StatusOK, ProfileResponse{
				UserID:   "user-1",
				TenantID: "tenant-1",
				Name:     "Terry Technician",
				Role:     "technician",
				State:    "active",
			})
		})
		c := newTestClient(t, mux)
		c.RestoreSession(freshSession())

		profile, err := c.FetchProfile(ctx, "user-1")
		require.NoError(t, err)
		require.Equal(t, "tenant-1", profile.TenantID)
		require.Equal(t, "technician", profile.Role)
	})

	t.Run("404 maps to the not-found sentinel", func(t *testing.T) {
		t.Parallel()
		mux := http.NewServeMux()
		mux.HandleFunc("GET /v1/profile", func(w http.ResponseWriter, r *http.Request) {
			writeWire(t, w, http.StatusNotFound, ErrorResponse{Error: "profile_not_found"})
		})
		c := newTestClient(t, mux)
		c.RestoreSession(freshSession())

		_, err := c.FetchProfile(ctx, "user-1")
		require.ErrorIs(t, err, ErrProfileNotFound)
	})

	t.Run("mismatched user id is rejected locally", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, http.NewServeMux())
		c.RestoreSession(freshSession())

		_, err := c.FetchProfile(ctx, "someone-else")
		require.Error(t, err)
	})

	t.Run("no session at all", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, http.NewServeMux())

		_, err := c.FetchProfile(ctx, "user-1")
		require.ErrorIs(t, err, ErrNoSession)
	})
}

func TestClientRefresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	staleSession := func() Session {
		return Session{
			ID:           "sess-1",
			AccessToken:  "access-old",
			RefreshToken: "refresh-old",
			ExpiresAt:    time.Now().Add(-time.Minute),
			User:         AuthUser{ID: "user-1", Email: "tech@example.com"},
		}
	}

	t.Run("stale token is rotated before the call", func(t *testing.T) {
		t.Parallel()
		mux := http.NewServeMux()
		mux.HandleFunc("POST /v1/session/refresh", func(w http.ResponseWriter, r *http.Request) {
			var req RefreshRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "refresh-old", req.RefreshToken)
			// Refresh responses carry no identity projection.
			writeWire(t, w, http.StatusOK, TokenResponse{
				AccessToken:  "access-new",
				TokenType:    "Bearer",
				RefreshToken: "refresh-new",
				SessionID:    "sess-1",
				ExpiresIn:    900,
			})
		})
		mux.HandleFunc("GET /v1/profile", func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "Bearer access-new", r.Header.Get("Authorization"))
			writeWire(t, w, http.StatusOK, ProfileResponse{UserID: "user-1", TenantID: "tenant-1"})
		})
		c := newTestClient(t, mux)
		c.RestoreSession(staleSession())
		events := recordEvents(c)

		_, err := c.FetchProfile(ctx, "user-1")
		require.NoError(t, err)
		require.Equal(t, []Event{EventRefreshed}, *events)

		current, ok := c.CurrentSession()
		require.True(t, ok)
		require.Equal(t, "refresh-new", current.RefreshToken)
		require.Equal(t, "sess-1", current.ID)
		// Identity survives the rotation.
		require.Equal(t, "user-1", current.User.ID)
	})

	t.Run("rejected refresh drops the session and emits invalidated", func(t *testing.T) {
		t.Parallel()
		mux := http.NewServeMux()
		mux.HandleFunc("POST /v1/session/refresh", func(w http.ResponseWriter, r *http.Request) {
			writeWire(t, w, http.StatusUnauthorized, ErrorResponse{Error: "invalid_refresh_token"})
		})
		c := newTestClient(t, mux)
		c.RestoreSession(staleSession())
		events := recordEvents(c)

		_, err := c.FetchProfile(ctx, "user-1")
		require.Error(t, err)
		require.Equal(t, []Event{EventInvalidated}, *events)

		_, ok := c.CurrentSession()
		require.False(t, ok)
	})

	t.Run("transport failure keeps the session for a later retry", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.NewServeMux())
		c := NewClient(srv.URL)
		srv.Close() // connections now refused
		c.RestoreSession(staleSession())
		events := recordEvents(c)

		_, err := c.FetchProfile(ctx, "user-1")
		require.Error(t, err)
		require.Empty(t, *events)

		_, ok := c.CurrentSession()
		require.True(t, ok)
	})
}

func TestClientSignOut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := Session{
		ID:          "sess-1",
		AccessToken: "access-1",
		ExpiresAt:   time.Now().Add(10 * time.Minute),
		User:        AuthUser{ID: "user-1"},
	}

	t.Run("revokes server-side and forgets locally", func(t *testing.T) {
		t.Parallel()
		var calls int
		mux := http.NewServeMux()
		mux.HandleFunc("DELETE /v1/session", func(w http.ResponseWriter, r *http.Request) {
			calls++
			require.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNoContent)
		})
		c := newTestClient(t, mux)
		c.RestoreSession(session)
		events := recordEvents(c)

		require.NoError(t, c.SignOut(ctx))
		require.Equal(t, 1, calls)
		require.Equal(t, []Event{EventSignedOut}, *events)

		_, ok := c.CurrentSession()
		require.False(t, ok)

		// Second call has nothing to do and stays silent.
		require.NoError(t, c.SignOut(ctx))
		require.Equal(t, 1, calls)
	})

	t.Run("server failure still forgets the session", func(t *testing.T) {
		t.Parallel()
		mux := http.NewServeMux()
		mux.HandleFunc("DELETE /v1/session", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		c := newTestClient(t, mux)
		c.RestoreSession(session)

		err := c.SignOut(ctx)
		require.Error(t, err)

		_, ok := c.CurrentSession()
		require.False(t, ok)
	})
}

func TestClientLivez(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", func(w http.ResponseWriter, r *http.Request) {
		writeWire(t, w, http.StatusOK, HealthResponse{Status: "ok", Version: "v0.1.0"})
	})
	c := newTestClient(t, mux)

	health, err := c.Livez(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
}
