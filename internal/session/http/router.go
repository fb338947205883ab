package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fixplanhq/fixplan/internal/session/service"
	"github.com/fixplanhq/fixplan/internal/session/store"
	"github.com/fixplanhq/fixplan/pkg/httpx"
	"github.com/fixplanhq/fixplan/pkg/jwtx"
	"github.com/fixplanhq/fixplan/pkg/slogx"
)

// Router holds shared dependencies for the gateway's HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     *jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService      *service.AuthService
	ProfileService   *service.ProfileService
	BootstrapService *service.BootstrapService
}

func NewRouter(
	verifier *jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSession()
	r.registerProfiles()
	r.registerBootstrap()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSession() {
	signIn := &SignInHandler{AuthService: r.AuthService}
	signOut := &SignOutHandler{AuthService: r.AuthService}
	refresh := &RefreshHandler{AuthService: r.AuthService}
	info := &SessionInfoHandler{}

	// Credential endpoint: tight limit, it is the brute-force surface.
	r.Mux.Handle("POST /v1/session",
		httpx.Chain(signIn,
			httpx.RateLimit(httpx.SignInLimit),
		),
	)

	r.Mux.Handle("DELETE /v1/session",
		httpx.Chain(signOut,
			httpx.RequireBearer(r.verifier),
			httpx.RateLimit(httpx.ModerateLimit),
		),
	)

	// Refresh authenticates with the refresh token itself, not a bearer.
	r.Mux.Handle("POST /v1/session/refresh",
		httpx.Chain(refresh,
			httpx.RateLimit(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/session",
		httpx.Chain(info,
			httpx.RequireBearer(r.verifier),
			httpx.RateLimit(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerProfiles() {
	get := &ProfileHandler{ProfileService: r.ProfileService}
	provision := &ProvisionHandler{ProfileService: r.ProfileService}

	r.Mux.Handle("GET /v1/profile",
		httpx.Chain(get,
			httpx.RequireBearer(r.verifier),
			httpx.RateLimit(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /v1/profiles",
		httpx.Chain(provision,
			httpx.RequireBearer(r.verifier),
			httpx.RateLimit(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerBootstrap() {
	h := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(h,
			httpx.RateLimit(httpx.SignInLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.store))
}
