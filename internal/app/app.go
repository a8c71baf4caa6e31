// Package app composes the watchdog server: configuration, logging,
// observability, the validation service, and the HTTP router.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"watchdog/internal/config"
	"watchdog/internal/engine"
	apierrors "watchdog/internal/errors"
	"watchdog/internal/infrastructure"
	"watchdog/internal/middleware"
	"watchdog/internal/services"
	transport "watchdog/internal/transport/http"
)

// Version is the service version reported by the health endpoint.
const Version = "1.0.0"

// App is the assembled watchdog server.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	providers *infrastructure.OTelProviders
	server    *http.Server
}

// New loads configuration and wires the server.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig wires the server from an explicit configuration.
func NewWithConfig(cfg *config.Config) (*App, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	runsDir, err := cfg.EnsureRunsDir()
	if err != nil {
		return nil, err
	}

	engineOpts := []engine.Option{engine.WithWorkers(cfg.Engine.Workers)}
	if cfg.Engine.RequireRules {
		engineOpts = append(engineOpts, engine.WithRequiredRules())
	}

	service, err := services.NewValidationService(services.ValidationServiceOptions{
		Logger:  logger,
		Engine:  engine.New(logger, engineOpts...),
		Tracer:  providers.Tracer,
		Meter:   providers.Meter,
		RunsDir: runsDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create validation service: %w", err)
	}

	var defaultRules *config.RulesDocument
	if cfg.Paths.RulesFile != "" {
		if _, statErr := os.Stat(cfg.Paths.RulesFile); statErr == nil {
			defaultRules, err = config.LoadRulesDocument(cfg.Paths.RulesFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load default rules: %w", err)
			}
			logger.Info("loaded default rules document",
				slog.String("path", cfg.Paths.RulesFile),
				slog.Int("rules", len(defaultRules.Rules)))
		}
	}

	router := buildRouter(cfg, logger, providers, service, defaultRules)

	return &App{
		cfg:       cfg,
		logger:    logger,
		providers: providers,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}, nil
}

func buildRouter(
	cfg *config.Config,
	logger *slog.Logger,
	providers *infrastructure.OTelProviders,
	service *services.ValidationService,
	defaultRules *config.RulesDocument,
) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, logger).Handler)

	errorHandler := apierrors.NewErrorHandler(logger)
	validateHandler := transport.NewValidateHandler(service, defaultRules, logger, errorHandler, cfg.Server.MaxUploadBytes)
	healthHandler := transport.NewHealthHandler(Version)

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/", validateHandler.Routes())
		r.Mount("/health", healthHandler.Routes())
	})

	if providers.PrometheusHTTP != nil {
		r.Method(http.MethodGet, "/metrics", providers.PrometheusHTTP)
	}

	return r
}

// Run starts the server and blocks until the context is cancelled, then
// shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if err := a.providers.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("observability shutdown failed", slog.String("error", err.Error()))
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// Handler exposes the router for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}
