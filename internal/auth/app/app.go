package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/grantd/internal/auth/http"
	"github.com/aussiebroadwan/grantd/internal/auth/metrics"
	"github.com/aussiebroadwan/grantd/internal/auth/oauth2"
	"github.com/aussiebroadwan/grantd/internal/auth/service"
	"github.com/aussiebroadwan/grantd/internal/auth/store"
	"github.com/aussiebroadwan/grantd/pkg/cryptox"
	"github.com/aussiebroadwan/grantd/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X".
var BuildVersion = "v0.1.0"

// Application encapsulates the grantd service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	metrics  *metrics.Metrics
	services *Services

	oauth2       *oauth2.Server
	housekeeping *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "grantd",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(),
	}

	// Set pepper path for secret and password hashing
	cryptox.SetPepperPath(cfg.PepperFile)

	db, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	app.db = db
	app.logger.Info("store ready", "driver", cfg.StoreDriver, "file", cfg.DatabaseFile)

	app.services = NewServices(db, cfg, app.metrics)

	if cfg.ScopesFile != "" {
		ctx := slogx.WithContext(context.Background(), app.logger)
		n, err := app.services.Scopes.SeedFromFile(ctx, cfg.ScopesFile)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to seed scopes: %w", err)
		}
		app.logger.Info("scope registry seeded", "file", cfg.ScopesFile, "created", n)
	}

	app.oauth2 = oauth2.NewServer(
		app.services.Clients,
		app.services.Access,
		app.services.Refresh,
		NewGrantRegistry(app.services, cfg.OAuth2),
		app.metrics,
	)
	app.housekeeping = app.services.Housekeeping(app.logger, cfg.HousekeepingInterval)

	app.initHTTP()
	return app, nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeeping.Start()

	app.logger.Info("grantd starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"grants", app.oauth2.Grants().GrantTypes(),
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeeping.Stop()
			_ = app.db.Close()
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

// Shutdown drains in-flight requests, stops housekeeping and closes the
// store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down grantd...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeeping.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}

	app.logger.Info("grantd stopped")
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.cfg.RateLimits, app.logger)

	router.OAuth2 = app.oauth2
	router.Resource = oauth2.NewResourceServer(app.services.Access)
	router.ClientService = app.services.Clients
	router.ScopeService = app.services.Scopes
	router.BootstrapService = app.services.Bootstrap
	router.Metrics = app.metrics
	router.Tracing = app.cfg.Tracing
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
