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

	httpapi "github.com/aussiebroadwan/hospitalauth/internal/auth/http"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/obs"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/service"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/store"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/hospitalauth/pkg/cryptox"
	"github.com/aussiebroadwan/hospitalauth/pkg/jwtx"
	"github.com/aussiebroadwan/hospitalauth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger
	now    service.Clock

	// Core dependencies
	db         store.Store
	keyManager *jwtx.KeyManager
	hasher     *cryptox.Hasher
	metrics    *obs.Metrics

	// Services
	tokenService     *service.TokenService
	userService      *service.UserService
	loginService     *service.LoginService
	refreshService   *service.RefreshService
	sessionService   *service.SessionService
	bootstrapService *service.BootstrapService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "hospital-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: obs.New(),
	}
	ctx := slogx.WithContext(context.Background(), app.logger)

	hasher, err := NewHasher(cfg)
	if err != nil {
		return nil, err
	}
	app.hasher = hasher

	if app.db, err = OpenStore(ctx, cfg); err != nil {
		return nil, err
	}
	app.logger.Info("database ready", slog.String("driver", cfg.DatabaseDriver))

	keyManager, err := InitAuthKeys(cfg, app.now.Now, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}
	app.keyManager = keyManager

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if _, err := app.bootstrapService.EnsureSuperAdmin(ctx, cfg.Bootstrap); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("auth service starting",
		slog.Int("port", app.cfg.Port),
		slog.String("version", BuildVersion),
		slog.String("algorithm", app.keyManager.Algorithm()),
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", slog.Any("error", err))
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", slog.Any("error", err))
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", slog.Any("error", err))
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// NewHasher loads (or creates) the pepper and returns the password hasher.
func NewHasher(cfg Config) (*cryptox.Hasher, error) {
	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	return cryptox.NewHasher(pepper)
}

// OpenStore connects to the configured database and applies migrations.
func OpenStore(ctx context.Context, cfg Config) (store.Store, error) {
	var (
		db  store.Store
		err error
	)
	switch cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(fmt.Sprintf("file:%s", cfg.DatabaseFile))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}

	slogx.FromContext(ctx).Info("database migrations applied successfully")
	return db, nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	tokens, err := service.NewTokenService(
		app.keyManager,
		app.cfg.Issuer,
		app.cfg.AccessTTL,
		app.cfg.RefreshTTL,
		app.now,
	)
	if err != nil {
		return err
	}
	app.tokenService = tokens

	app.userService = &service.UserService{Store: app.db, Hasher: app.hasher, Now: app.now}
	app.loginService = &service.LoginService{
		Credentials: &service.CredentialVerifier{
			Store:         app.db,
			Hasher:        app.hasher,
			Now:           app.now,
			LookupTimeout: app.cfg.UserLookupTimeout,
		},
		Tokens: tokens,
	}
	app.refreshService = &service.RefreshService{
		Store:         app.db,
		Tokens:        tokens,
		LookupTimeout: app.cfg.UserLookupTimeout,
	}
	app.sessionService = &service.SessionService{
		Store:         app.db,
		Tokens:        tokens,
		LookupTimeout: app.cfg.UserLookupTimeout,
	}
	app.bootstrapService = &service.BootstrapService{Users: app.userService}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.keyManager, app.db, app.metrics, app.logger)

	// Wire services to router
	router.LoginService = app.loginService
	router.RefreshService = app.refreshService
	router.SessionService = app.sessionService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
