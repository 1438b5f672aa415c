// Package app wires the export engine together: configuration, logging,
// the order store, the mail sender, the export service and the HTTP
// surface the external scheduler triggers.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/g-result/uoden/internal/config"
	apperrors "github.com/g-result/uoden/internal/errors"
	"github.com/g-result/uoden/internal/infrastructure"
	"github.com/g-result/uoden/internal/mailer"
	customMiddleware "github.com/g-result/uoden/internal/middleware"
	"github.com/g-result/uoden/internal/services"
	"github.com/g-result/uoden/internal/store"
	handlers "github.com/g-result/uoden/internal/transport/http"
)

// Version is the application version, overridable at build time
var Version = "dev"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	Router        *chi.Mux
	Server        *http.Server
	Store         *store.Store
	Sender        mailer.Sender
	ExportService *services.ExportService
}

// New creates a new application instance with dependency injection
func New(ctx context.Context) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", Version),
		slog.String("export_format", cfg.Export.Format),
		slog.String("mail_provider", cfg.Mail.Provider))

	if cfg.Security.TriggerSecret == "" {
		return nil, apperrors.NewConfigError("trigger secret is required for the web server", nil)
	}

	orderStore, err := store.New(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect order store: %w", err)
	}

	sender := mailer.New(cfg.Mail, logger)
	exportService := services.NewExportService(orderStore, sender, cfg, logger)

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		Store:         orderStore,
		Sender:        sender,
		ExportService: exportService,
	}
	app.setupRouter()
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(chimiddleware.Recoverer)
	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.RateLimiter(a.Config.Security.RateLimit.RPS, a.Config.Security.RateLimit.Burst))
	}

	exportHandler := handlers.NewExportHandler(a.ExportService, a.Logger)
	healthHandler := handlers.NewHealthHandler(a.Store, Version, a.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/healthz", healthHandler.Routes())
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.TriggerAuth(a.Config.Security.TriggerSecret, a.Logger))
			r.Mount("/exports", exportHandler.Routes())
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	a.Router = r
}

// Run starts the HTTP server and blocks until shutdown
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case sig := <-stop:
		a.Logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.Info("context canceled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	a.Store.Close()
	a.Logger.Info("application stopped")
	return nil
}
