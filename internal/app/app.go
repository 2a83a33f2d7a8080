package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"stockdash/internal/config"
	apperrors "stockdash/internal/errors"
	"stockdash/internal/exporter"
	"stockdash/internal/infrastructure"
	customMiddleware "stockdash/internal/middleware"
	"stockdash/internal/services"
	handlers "stockdash/internal/transport/http"
)

// rateLimitEvictInterval is how often idle rate limit buckets are dropped
const rateLimitEvictInterval = 5 * time.Minute

// Application represents the dashboard server
type Application struct {
	Config      *config.Config
	Router      *chi.Mux
	Server      *http.Server
	Logger      *slog.Logger
	Telemetry   *infrastructure.Telemetry
	Services    *ServiceContainer
	RateLimiter *customMiddleware.RateLimiter
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Dashboard *services.DashboardService
	Health    *services.HealthService
}

// NewApplication wires the services, router and server. telemetry may be
// nil, in which case nothing is recorded.
func NewApplication(cfg *config.Config, logger *slog.Logger, telemetry *infrastructure.Telemetry, checks map[string]services.HealthChecker) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if telemetry == nil {
		telemetry = infrastructure.NoopTelemetry()
	}

	a := &Application{
		Config:    cfg,
		Logger:    logger,
		Telemetry: telemetry,
		Services: &ServiceContainer{
			Dashboard: services.NewDashboardService(telemetry, logger),
			Health:    services.NewHealthService(config.AppVersion, checks, logger),
		},
	}

	a.setupRouter()
	a.createServer()

	return a, nil
}

// setupRouter builds the chi router.
// Order: RequestID → RealIP → error/logging → security headers → routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	errorHandler := apperrors.NewErrorHandler(a.Logger, false)
	errorMiddleware := apperrors.NewErrorMiddleware(errorHandler, a.Logger)

	r.Use(customMiddleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(errorMiddleware.Handler)
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.HTTPMetrics(a.Telemetry.Metrics))

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	r.Get("/health", healthHandler.HealthCheck)
	r.Get("/health/ready", healthHandler.ReadinessCheck)
	r.Get("/health/live", healthHandler.LivenessCheck)
	r.Get("/version", healthHandler.Version)
	r.Method(http.MethodGet, "/metrics", handlers.NewMetricsHandler(a.Telemetry.MetricsHandler, errorHandler))

	r.Route("/api", func(r chi.Router) {
		r.Use(otelhttp.NewMiddleware("stockdash.api"))
		r.Use(render.SetContentType(render.ContentTypeJSON))

		if rl := a.Config.Security.RateLimit; rl.Enabled {
			a.RateLimiter = customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, errorHandler, a.Logger)
			r.Use(a.RateLimiter.Handler)
		}

		r.Use(customMiddleware.MaxBodySize(a.Config.Server.MaxUploadBytes))

		dashboardHandler := handlers.NewDashboardHandler(
			a.Services.Dashboard,
			exporter.NewWorkbookRenderer(a.Logger),
			a.Logger,
			errorHandler,
		)
		r.Mount("/dashboard", dashboardHandler.Routes())
	})

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run serves until ctx is cancelled or the listener fails, then shuts the
// server and telemetry down within the configured shutdown timeout.
func (a *Application) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "Starting dashboard server",
			slog.String("address", a.Server.Addr),
			slog.String("version", config.AppVersion))

		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if a.RateLimiter != nil {
		g.Go(func() error {
			a.RateLimiter.Run(gctx, rateLimitEvictInterval)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop gracefully stops the server and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down dashboard server")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if err := a.Telemetry.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Dashboard server shutdown complete")
	return nil
}
