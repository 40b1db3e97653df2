package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dukerupert/regcheck/internal"
	"github.com/dukerupert/regcheck/internal/events"
	"github.com/dukerupert/regcheck/internal/handler/api"
	"github.com/dukerupert/regcheck/internal/middleware"
	"github.com/dukerupert/regcheck/internal/pipeline"
	"github.com/dukerupert/regcheck/internal/postgres"
	"github.com/dukerupert/regcheck/internal/router"
	"github.com/dukerupert/regcheck/internal/service"
	"github.com/dukerupert/regcheck/internal/telemetry"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	cleanup, err := telemetry.InitSentry(cfg.Sentry, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer cleanup()

	svcCfg := service.IntakeConfig{
		Metrics: telemetry.NewMetrics("regcheck"),
		Logger:  logger,
	}

	var db api.Pinger
	if cfg.Database.Configured() {
		logger.Info("Connecting to database...")
		sqlDB, err := sql.Open("pgx", cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		if err := sqlDB.Ping(); err != nil {
			sqlDB.Close()
			return fmt.Errorf("database ping failed: %w", err)
		}

		logger.Info("Running database migrations...")
		if err := internal.RunMigrations(sqlDB); err != nil {
			sqlDB.Close()
			return fmt.Errorf("migration failed: %w", err)
		}
		sqlDB.Close()

		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to create connection pool: %w", err)
		}
		defer pool.Close()

		store := postgres.NewStore(pool)
		svcCfg.Store = store
		db = store
		logger.Info("Database connection established")
	}

	if cfg.NATS.Configured() {
		publisher, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, logger)
		if err != nil {
			return fmt.Errorf("nats connection failed: %w", err)
		}
		defer publisher.Close()
		svcCfg.Publisher = publisher
		logger.Info("NATS publisher connected", "url", cfg.NATS.URL)
	}

	svc := service.NewIntakeService(pipeline.NewProcessor(nil), svcCfg)

	httpMetrics := middleware.NewMetrics("regcheck")
	validation := api.NewValidationHandler(svc, svcCfg.Metrics, logger)
	health := api.NewHealthHandler(db, logger)

	r := router.New(
		middleware.RequestID,
		middleware.WithRequestLogger(logger),
		httpMetrics.Middleware,
	)
	r.Post("/api/validate", validation.ValidateRecord)
	r.Post("/api/validate/batch", validation.ValidateBatch)
	r.Get("/healthz", health.Health)
	r.Handle(http.MethodGet, "/metrics", httpMetrics.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting intake server", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	logger.Info("Server stopped")

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
