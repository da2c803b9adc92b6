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

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"

	"taskdash/internal/config"
	"taskdash/internal/dataprocessing"
	apierrors "taskdash/internal/errors"
	"taskdash/internal/files"
	"taskdash/internal/infrastructure"
	taskmw "taskdash/internal/middleware"
	"taskdash/internal/services"
	handlers "taskdash/internal/transport/http"
	ws "taskdash/internal/websocket"
	"taskdash/pkg/contracts"
	"taskdash/pkg/contracts/domain"
	"taskdash/pkg/contracts/events"
)

// Options adjusts how an Application is assembled
type Options struct {
	// OTel overrides the OpenTelemetry setup. Nil uses DefaultOTelConfig.
	OTel *infrastructure.OTelConfig
}

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Services      *ServiceContainer
	Hub           *ws.Hub
	Watcher       *files.Watcher
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apierrors.ErrorHandler
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Dataset   *files.Cache[*dataprocessing.Dataset]
	Dashboard *services.DashboardService
	Export    *services.ExportService
	Health    *services.HealthService
}

// New wires every component for cfg. Nothing runs until Start.
func New(cfg *config.Config, logger *slog.Logger, opts Options) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	otelProviders, err := infrastructure.InitializeOTel(opts.OTel, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	// Disabled signals fall back to the global no-op providers
	if otelProviders.Meter == nil {
		otelProviders.Meter = otel.Meter(infrastructure.MeterName)
	}
	if otelProviders.Tracer == nil {
		otelProviders.Tracer = otel.Tracer(infrastructure.MeterName)
	}

	businessMetrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       businessMetrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
	}

	if err := a.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	a.setupRouter()
	a.createServer()

	return a, nil
}

// initializeServices builds the dataset cache, the services on top of it, the
// websocket hub and, when enabled, the file watcher
func (a *Application) initializeServices() error {
	dataFiles := a.Config.Data.Files()

	wsMetrics, err := ws.NewOTelMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create websocket metrics: %w", err)
	}
	a.Hub = ws.NewHub(a.Logger, wsMetrics)

	loader := dataprocessing.NewLoader(dataFiles, a.Logger)
	cache := services.NewDatasetCache(loader, a.Metrics, a.Logger)
	dashboard := services.NewDashboardService(cache, a.Metrics, a.Logger)

	a.Services = &ServiceContainer{
		Dataset:   cache,
		Dashboard: dashboard,
		Export:    services.NewExportService(dashboard, a.Metrics, a.Logger),
		Health: services.NewHealthService(contracts.Version, contracts.BuildTime,
			files.NewDiscovery(dataFiles), cache, a.Hub, a.Logger),
	}

	if a.Config.Data.Watch {
		watcher, err := files.NewWatcher(dataFiles.All(), a.Config.Data.WatchDebounce, a.onDataChange, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		a.Watcher = watcher
	}

	return nil
}

// onDataChange reloads the dataset after the watcher saw an input change and
// tells connected dashboards about the new version
func (a *Application) onDataChange(ctx context.Context, paths []string) {
	a.Logger.InfoContext(ctx, "data files changed", slog.Any("paths", paths))

	info, err := a.Services.Dashboard.Reload(ctx)
	if err != nil {
		a.Logger.ErrorContext(ctx, "reload after file change failed", slog.String("error", err.Error()))
		return
	}

	err = a.Hub.BroadcastDatasetReloaded(ctx, events.DatasetReloaded{
		Version:  info.Version,
		LoadedAt: info.LoadedAt,
		Warnings: len(info.Warnings),
		Reason:   "file_change",
	})
	if err != nil && !errors.Is(err, ws.ErrHubStopped) {
		a.Logger.WarnContext(ctx, "reload notification failed", slog.String("error", err.Error()))
	}
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// The websocket route only gets middleware that leaves the ResponseWriter alone
	r.Use(taskmw.RequestID)
	r.Use(taskmw.RealIP)
	r.With(taskmw.WebSocketTraceMiddleware(a.Logger)).
		Handle("/ws", ws.NewHandler(a.Hub, a.Config.WebSocket, a.Config.Security.AllowedOrigins, a.Logger))

	r.Group(func(r chi.Router) {
		r.Use(taskmw.StructuredLogger(a.Logger))
		r.Use(taskmw.Recoverer(a.ErrorHandler))

		otelMiddleware, err := taskmw.NewOTelMiddleware(a.OTelProviders, a.Metrics)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(taskmw.SecurityHeaders)
		r.Use(taskmw.StripSlashes)
		r.Use(taskmw.Compress(5))
		if a.Config.Security.EnableCORS {
			r.Use(taskmw.CORS(taskmw.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				MaxAge:         300,
				Logger:         a.Logger,
			}))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(taskmw.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
				a.ErrorHandler,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	r.Mount("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP).Routes())

	a.Router = r
}

// setupAPIRoutes mounts every handler under /api
func (a *Application) setupAPIRoutes(r chi.Router) {
	validation := taskmw.NewValidationMiddleware(a.Logger, a.ErrorHandler)
	trend := domain.TrendParams{
		Granularity: a.Config.Dashboard.TrendGranularity,
		Window:      a.Config.Dashboard.RollingWindow,
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(taskmw.Timeout(a.Config.Server.RequestTimeout, a.Logger, a.ErrorHandler))

		healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		r.Mount("/dashboard", handlers.NewDashboardHandler(a.Services.Dashboard, validation, trend, a.Logger, a.ErrorHandler).Routes())
		r.Mount("/tasks", handlers.NewTaskHandler(a.Services.Dashboard, validation, a.Logger, a.ErrorHandler).Routes())
		r.Mount("/projects", handlers.NewProjectHandler(a.Services.Dashboard, validation, a.Logger, a.ErrorHandler).Routes())
		r.Mount("/data", handlers.NewDataHandler(a.Services.Export, a.Services.Dashboard, a.Hub, validation, a.Logger, a.ErrorHandler).Routes())

		r.Post("/client-logs", handlers.NewClientLogHandler(validation, a.Logger, a.ErrorHandler).Handle)
	})
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

// Start warms the dataset, starts the hub and the watcher, then serves HTTP in
// the background. A serve failure cancels ctx through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("data_dir", a.Config.Data.Dir))

	a.Hub.Start()

	if a.Watcher != nil {
		if err := a.Watcher.Start(ctx); err != nil {
			a.Logger.WarnContext(ctx, "File watching disabled", slog.String("error", err.Error()))
		}
	}

	// A failed warm-up is not fatal; views report the dataset as unavailable
	if info, err := a.Services.Dashboard.Info(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Initial dataset load failed", slog.String("error", err.Error()))
	} else {
		a.Logger.InfoContext(ctx, "Dataset loaded",
			slog.String("version", info.Version),
			slog.Int("warnings", len(info.Warnings)))
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.Watcher != nil {
		a.Watcher.Stop()
	}
	a.Hub.Stop()

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run starts the application and blocks until ctx is done or SIGINT/SIGTERM
// arrives, then shuts down
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.InfoContext(ctx, "Received shutdown signal")

	return a.Stop(ctx)
}
