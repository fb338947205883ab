package http

import (
	"net/http"
	"time"

	"github.com/fixplanhq/fixplan/internal/session/store"
	"github.com/fixplanhq/fixplan/pkg/httpx"
	"github.com/fixplanhq/fixplan/pkg/sessionsdk"
)

// LivezHandler reports basic process health. Always 200 while serving.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, sessionsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler reports readiness: the database must answer a ping.
func ReadyzHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			httpx.WriteError(w, http.StatusServiceUnavailable, "not_ready", "database is unreachable")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, sessionsdk.HealthResponse{Status: "ok"})
	}
}
