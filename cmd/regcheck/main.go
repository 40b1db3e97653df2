package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dukerupert/regcheck/internal"
	"github.com/dukerupert/regcheck/internal/email"
	"github.com/dukerupert/regcheck/internal/events"
	"github.com/dukerupert/regcheck/internal/pipeline"
	"github.com/dukerupert/regcheck/internal/postgres"
	"github.com/dukerupert/regcheck/internal/service"
	"github.com/dukerupert/regcheck/internal/storage"
	"github.com/dukerupert/regcheck/internal/telemetry"
)

func run() error {
	var (
		file     = flag.String("file", "", "input reference: a local path or s3://bucket/key (required)")
		echo     = flag.Bool("print", true, "echo accepted rows to stdout")
		store    = flag.Bool("store", false, "persist outcomes to Postgres (requires DATABASE_URL)")
		publish  = flag.Bool("publish", false, "publish row and run events to NATS (requires NATS_URL)")
		report   = flag.Bool("report", false, "email the run summary (requires SMTP configuration)")
		env      = flag.String("env", "", "override ENV (dev, prod)")
		logLevel = flag.String("log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	)
	flag.Parse()

	if *file == "" {
		flag.Usage()
		return fmt.Errorf("-file is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	if *env != "" {
		cfg.Env = *env
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	// Row output owns stdout; logs go to stderr.
	logger := internal.NewLogger(os.Stderr, cfg.Env, cfg.LogLevel)

	cleanup, err := telemetry.InitSentry(cfg.Sentry, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer cleanup()

	svcCfg := service.IntakeConfig{
		Metrics: telemetry.NewMetrics("regcheck"),
		Logger:  logger,
	}

	if *store {
		if !cfg.Database.Configured() {
			return fmt.Errorf("-store requires DATABASE_URL")
		}

		sqlDB, err := sql.Open("pgx", cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		if err := sqlDB.Ping(); err != nil {
			sqlDB.Close()
			return fmt.Errorf("database ping failed: %w", err)
		}
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

		svcCfg.Store = postgres.NewStore(pool)
	}

	if *publish {
		if !cfg.NATS.Configured() {
			return fmt.Errorf("-publish requires NATS_URL")
		}

		publisher, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, logger)
		if err != nil {
			return fmt.Errorf("nats connection failed: %w", err)
		}
		defer publisher.Close()

		svcCfg.Publisher = publisher
	}

	opts := service.BatchOptions{
		Ref:           *file,
		Out:           os.Stdout,
		PrintAccepted: *echo,
	}

	if *report {
		if !cfg.Email.Configured() {
			return fmt.Errorf("-report requires SMTP_HOST, SMTP_FROM, and REPORT_TO")
		}

		svcCfg.Mailer = email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.Email.Host,
			Port:     int(cfg.Email.Port),
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
		}, logger)
		opts.ReportFrom = cfg.Email.From
		opts.ReportTo = service.SplitRecipients(cfg.Email.To)
	}

	src, err := storage.NewSource(*file, cfg.Input)
	if err != nil {
		return err
	}

	svc := service.NewIntakeService(pipeline.NewProcessor(nil), svcCfg)

	summary, err := svc.RunBatch(ctx, src, opts)
	if err != nil {
		telemetry.CaptureError(err, map[string]interface{}{"source": *file})
		return err
	}

	logger.Info("batch complete",
		"source", *file,
		"total", summary.Total,
		"accepted", summary.Accepted,
		"rejected", summary.Rejected,
	)
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
