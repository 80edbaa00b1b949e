// Package app assembles the upload-and-report server: configuration,
// logging, observability, router and lifecycle.
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

	"attendcli/internal/attendance"
	"attendcli/internal/config"
	"attendcli/internal/exporter"
	"attendcli/internal/infrastructure"
	customMiddleware "attendcli/internal/middleware"
	handlers "attendcli/internal/transport/http"
)

const (
	// Version of the service, surfaced on the health endpoint
	Version = "v1.0.0"
	AppName = "attendcli - attendance check-in reconciler"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Pipeline      *attendance.Pipeline
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", Version))

	providers, err := infrastructure.InitializeOTel(nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	pipeline := attendance.NewPipeline(logger).WithMetrics(metrics)

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		Pipeline:      pipeline,
	}
	app.Router = app.buildRouter()
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

// buildRouter assembles the middleware chain and routes
func (a *Application) buildRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.Recovery(a.Logger))
	r.Use(customMiddleware.Logging(a.Logger))
	if a.Config.Server.RateLimit.Enabled {
		r.Use(customMiddleware.RateLimit(a.Config.Server.RateLimit.RPS, a.Config.Server.RateLimit.Burst))
	}

	reportHandler := handlers.NewReportHandler(
		a.Pipeline,
		exporter.NewWorkbookWriter(a.Logger),
		a.Logger,
		a.Config.Server.MaxUploadBytes,
	)
	healthHandler := handlers.NewHealthHandler(Version)
	metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Post("/report", reportHandler.Generate)
		r.Get("/health", healthHandler.Handle)
	})
	r.Get("/metrics", metricsHandler.Handle)

	return r
}

// Run starts the HTTP server and blocks until shutdown
func (a *Application) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("HTTP server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		a.Logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	return a.Shutdown()
}

// Shutdown drains in-flight requests and releases resources
func (a *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			a.Logger.Warn("observability shutdown failed", slog.String("error", err.Error()))
		}
	}

	infrastructure.CloseLogFile()
	a.Logger.Info("shutdown complete")
	return nil
}
