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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"adpulse/internal/analytics"
	"adpulse/internal/config"
	apierrors "adpulse/internal/errors"
	"adpulse/internal/infrastructure"
	"adpulse/internal/ingest"
	customMiddleware "adpulse/internal/middleware"
	"adpulse/internal/services"
	"adpulse/internal/store"
	handlers "adpulse/internal/transport/http"
)

// BuildTime is set at compile time via -ldflags
var BuildTime = time.Now().UTC().Format(time.RFC3339)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Store         *store.Store
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Services      *ServiceContainer
	systemMetrics *infrastructure.SystemMetricsCollector
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Dataset   *services.DatasetService
	Analytics *services.AnalyticsService
	Health    *services.HealthService
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize single infrastructure logger
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	// Ensure all required directories exist
	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution()

	// Initialize OpenTelemetry metrics
	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices opens the store and wires the business services
func (a *Application) initializeServices() error {
	st, err := store.Open(a.Config.GetDatabasePath(), a.Logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	a.Store = st

	// Metrics stay nil when the exporter is disabled; the services and
	// record helpers tolerate that.
	var businessMetrics *infrastructure.BusinessMetrics
	if a.OTelProviders.Meter != nil {
		businessMetrics, err = infrastructure.CreateBusinessMetrics(a.OTelProviders.Meter)
		if err != nil {
			return fmt.Errorf("failed to create business metrics: %w", err)
		}

		collector, err := infrastructure.NewSystemMetricsCollector(a.OTelProviders.Meter, 30*time.Second)
		if err != nil {
			return fmt.Errorf("failed to create system metrics collector: %w", err)
		}
		a.systemMetrics = collector
	}

	validator := ingest.NewService(a.Logger)
	engine := analytics.NewEngine(a.Logger)

	a.Services = &ServiceContainer{
		Dataset:   services.NewDatasetService(st, validator, a.Config, a.Logger, businessMetrics),
		Analytics: services.NewAnalyticsService(st, engine, a.Logger, businessMetrics),
		Health:    services.NewHealthService(config.AppVersion, BuildTime, st, a.Logger),
	}

	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Middleware ordering: RequestID → RealIP → metrics → logger → recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	if a.OTelProviders.Meter != nil {
		metricsMiddleware, err := customMiddleware.NewMetricsMiddleware(a.OTelProviders)
		if err != nil {
			a.Logger.Error("Failed to create metrics middleware", slog.String("error", err.Error()))
		} else {
			r.Use(metricsMiddleware.Handler)
		}
	}

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.CORS(a.getCORSConfig()))

	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	// Verbose request logging with body capture, development only
	if a.Config.Logging.Development {
		r.Use(apierrors.NewErrorMiddleware(errorHandler, a.Logger).Handler)
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r, errorHandler)

	// Prometheus scrape endpoint, unauthenticated
	metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP)
	r.Mount("/metrics", metricsHandler.Routes())

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router, errorHandler *apierrors.ErrorHandler) {
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

		// Public endpoints
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		// Everything else requires a bearer token
		r.Group(func(r chi.Router) {
			authenticator := customMiddleware.NewAuthenticator(a.Config.Auth, a.Logger)
			r.Use(authenticator.Handler)
			r.Use(customMiddleware.AuditLog(a.Logger))

			datasetHandler := handlers.NewDatasetHandler(
				a.Services.Dataset,
				a.Config.Upload.MaxFileSize,
				a.Logger,
				errorHandler,
			)
			r.Mount("/datasets", datasetHandler.Routes())

			analyticsHandler := handlers.NewAnalyticsHandler(a.Services.Analytics, a.Logger, errorHandler)
			r.Mount("/analytics", analyticsHandler.Routes())
			r.Get("/dashboard", analyticsHandler.Dashboard)
		})
	})

	r.Get("/version", healthHandler.Version)
}

// getCORSConfig returns CORS configuration from the security settings
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
		},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}

	if !a.Config.Security.EnableCORS {
		cfg.AllowedOrigins = nil
	}

	return cfg
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.systemMetrics != nil {
		a.systemMetrics.Stop()
	}

	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.ErrorContext(ctx, "Error closing store", slog.String("error", err.Error()))
		}
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if a.systemMetrics != nil {
		go a.systemMetrics.Start(gctx)
	}

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "Starting application",
			slog.String("name", config.AppName),
			slog.String("version", config.AppVersion),
			slog.Int("port", a.Config.Server.Port),
			slog.String("level", a.Config.Logging.Level))

		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("Shutdown signal received")
		return a.Stop(context.Background())
	})

	return g.Wait()
}
