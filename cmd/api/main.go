package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"rafiqe/internal/advisory"
	"rafiqe/internal/advisory/gemini"
	"rafiqe/internal/config"
	"rafiqe/internal/database"
	"rafiqe/internal/handlers"
	"rafiqe/internal/logger"
	"rafiqe/internal/models"
	"rafiqe/internal/services"
	"rafiqe/internal/store"
	"rafiqe/internal/validator"

	_ "rafiqe/internal/docs" // Import swagger docs
)

// @title           Rafiqe API
// @version         1.0
// @description     Rafiqe is a personal budgeting assistant: income split into buckets, expense tracking and advisory plans.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

const shutdownTimeout = 10 * time.Second

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.Env}); err != nil {
			return fmt.Errorf("failed to initialize sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	gateway, err := newGateway(cfg)
	if err != nil {
		return err
	}

	validator.Register()

	budgetService, err := services.NewBudgetService(ctx, services.Options{
		Repository: repo,
		Gateway:    gateway,
		Defaults: services.Defaults{
			Income:   cfg.DefaultIncome,
			Currency: cfg.DefaultCurrency,
			Locale:   models.Locale(cfg.DefaultLocale),
		},
		AdvisorEnabled: cfg.AdvisorEnabled(),
		Logger:         logger.Named("budget"),
	})
	if err != nil {
		return fmt.Errorf("failed to start budget service: %w", err)
	}
	defer budgetService.Close()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(budgetService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Rafiqe server on port %s", cfg.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// openRepository selects where the budget is persisted.
func openRepository(cfg *config.Config) (store.Repository, func(), error) {
	if cfg.DBDriver == config.DriverMemory {
		return store.NewMemoryRepository(), func() {}, nil
	}

	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := dbManager.RunMigrations(); err != nil {
		_ = dbManager.Close()
		return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	closeFn := func() {
		if err := dbManager.Close(); err != nil {
			logger.Get().Warnf("database close error: %v", err)
		}
	}
	return store.NewGormRepository(dbManager.DB()), closeFn, nil
}

// newGateway wires the advisory client behind retry and failure reporting.
// Without an API key every advisory call fails fast.
func newGateway(cfg *config.Config) (*advisory.Gateway, error) {
	opts := []advisory.GatewayOption{
		advisory.WithRetryPolicy(advisory.RetryPolicy{
			Retries:   cfg.AdvisorRetries,
			BaseDelay: cfg.AdvisorBackoffBase,
			Sleep:     advisory.ContextSleep,
		}),
		advisory.WithLogger(logger.Named("advisory")),
	}
	if cfg.SentryDSN != "" {
		opts = append(opts, advisory.WithReporter(advisory.SentryReporter{}))
	}

	if !cfg.AdvisorEnabled() {
		logger.Get().Warn("ADVISOR_API_KEY not set, advisory features are disabled")
		return advisory.NewGateway(nil, opts...), nil
	}

	client, err := gemini.New(gemini.Options{
		APIKey:           cfg.AdvisorAPIKey,
		BaseURL:          cfg.AdvisorBaseURL,
		Model:            cfg.AdvisorModel,
		ImageModel:       cfg.AdvisorImageModel,
		HTTPClient:       &http.Client{Timeout: cfg.AdvisorTimeout},
		TransportRetries: 2,
		Logger:           logger.Named("gemini"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create advisory client: %w", err)
	}
	return advisory.NewGateway(client, opts...), nil
}
