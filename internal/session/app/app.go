package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/fixplanhq/fixplan/internal/session/http"
	"github.com/fixplanhq/fixplan/internal/session/service"
	"github.com/fixplanhq/fixplan/internal/session/store"
	"github.com/fixplanhq/fixplan/internal/session/store/drivers/sqlite"
	"github.com/fixplanhq/fixplan/pkg/jwtx"
	"github.com/fixplanhq/fixplan/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application wires the session gateway together: store, signing keys,
// services, and the HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	authService         *service.AuthService
	profileService      *service.ProfileService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New builds a fully wired Application.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "session-gateway",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	// The signing key is ephemeral: a restart invalidates outstanding
	// access tokens, which clients recover from via refresh.
	pub, priv, err := jwtx.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generating signing key: %w", err)
	}
	kid := fmt.Sprintf("%s-%d", cfg.Issuer, time.Now().Unix())

	signer, err := jwtx.NewSigner(kid, priv)
	if err != nil {
		return nil, err
	}
	verifier, err := jwtx.NewVerifier(kid, pub, cfg.Issuer)
	if err != nil {
		return nil, err
	}

	app.initServices(signer)
	app.initHTTP(verifier)

	return app, nil
}

// Run starts the gateway and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("session gateway starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains the HTTP server, stops housekeeping, and closes the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down session gateway")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("session gateway stopped")
	return nil
}

// Router exposes the wired router, mainly for in-process tests.
func (app *Application) Router() *httpapi.Router { return app.router }

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("applying migrations: %w", err)
	}

	app.logger.Info("database migrations applied")
	return nil
}

func (app *Application) initServices(signer *jwtx.Signer) {
	app.authService = &service.AuthService{
		Signer:     signer,
		Store:      app.db,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
	app.profileService = &service.ProfileService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{
		Store: app.db,
		Token: app.cfg.BootstrapToken,
	}
	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP(verifier *jwtx.Verifier) {
	router := httpapi.NewRouter(verifier, BuildVersion, app.db, app.logger)
	router.AuthService = app.authService
	router.ProfileService = app.profileService
	router.BootstrapService = app.bootstrapService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
