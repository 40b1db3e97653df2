// Package service orchestrates batch runs: it resolves the input source,
// drives the row pipeline, and fans accepted/rejected outcomes out to the
// configured integrations (Postgres, NATS, report mail).
package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/regcheck/internal/domain"
	"github.com/dukerupert/regcheck/internal/email"
	"github.com/dukerupert/regcheck/internal/events"
	"github.com/dukerupert/regcheck/internal/pipeline"
	"github.com/dukerupert/regcheck/internal/storage"
	"github.com/dukerupert/regcheck/internal/telemetry"
)

// RunStore persists batch-run outcomes. Implemented by postgres.Store.
type RunStore interface {
	CreateRun(ctx context.Context, source string) (uuid.UUID, error)
	FinishRun(ctx context.Context, runID uuid.UUID, summary pipeline.Summary) error
	InsertRegistration(ctx context.Context, runID uuid.UUID, line int, reg domain.Registration) error
	InsertRejection(ctx context.Context, runID uuid.UUID, line int, rec domain.Record, rowErr error) error
}

// IntakeService runs batches. Every collaborator except the processor is
// optional; a zero-integration service is just the console pipeline.
type IntakeService struct {
	proc      *pipeline.Processor
	store     RunStore
	publisher events.Publisher
	mailer    email.Sender
	metrics   *telemetry.Metrics
	logger    *slog.Logger
}

// IntakeConfig wires the optional integrations into an IntakeService.
type IntakeConfig struct {
	Store     RunStore
	Publisher events.Publisher
	Mailer    email.Sender
	Metrics   *telemetry.Metrics
	Logger    *slog.Logger
}

// NewIntakeService creates an IntakeService around the given processor.
func NewIntakeService(proc *pipeline.Processor, cfg IntakeConfig) *IntakeService {
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &IntakeService{
		proc:      proc,
		store:     cfg.Store,
		publisher: publisher,
		mailer:    cfg.Mailer,
		metrics:   cfg.Metrics,
		logger:    logger,
	}
}

// BatchOptions controls one batch run.
type BatchOptions struct {
	// Ref is the input reference: a file path or s3://bucket/key.
	Ref string

	// Out receives per-row and summary console output.
	Out io.Writer

	// PrintAccepted echoes accepted rows.
	PrintAccepted bool

	// ReportFrom/ReportTo enable the summary email when both are set and a
	// mailer is wired.
	ReportFrom string
	ReportTo   []string
}

// RunBatch opens the input, processes every line, and delivers the
// configured side effects. The input handle is held only for the duration
// of the loop. Row rejections never fail the batch; an input that cannot
// be opened or read does, with no summary produced.
func (s *IntakeService) RunBatch(ctx context.Context, src storage.Source, opts BatchOptions) (pipeline.Summary, error) {
	started := time.Now()

	input, err := src.Open(ctx, opts.Ref)
	if err != nil {
		return pipeline.Summary{}, err
	}
	defer input.Close()

	var runID uuid.UUID
	if s.store != nil {
		runID, err = s.store.CreateRun(ctx, opts.Ref)
		if err != nil {
			return pipeline.Summary{}, err
		}
	}

	runner := pipeline.NewRunner(s.proc, pipeline.RunnerConfig{
		Out:           opts.Out,
		PrintAccepted: opts.PrintAccepted,
		Sinks:         s.sinks(runID),
		Metrics:       s.metrics,
		Logger:        s.logger,
	})

	summary, err := runner.Run(ctx, input)
	if err != nil {
		return summary, err
	}

	took := time.Since(started)
	s.metrics.ObserveRun(took, summary.Total)
	s.finishRun(ctx, runID, opts, summary, started, took)

	return summary, nil
}

// ValidateRecord applies the full per-row sequence to a single record,
// for the intake API.
func (s *IntakeService) ValidateRecord(line []byte) (domain.Record, error) {
	return s.proc.ProcessRow(line)
}

func (s *IntakeService) sinks(runID uuid.UUID) []pipeline.RowSink {
	sinks := []pipeline.RowSink{&eventSink{publisher: s.publisher}}
	if s.store != nil {
		sinks = append(sinks, &storeSink{store: s.store, runID: runID})
	}
	return sinks
}

func (s *IntakeService) finishRun(ctx context.Context, runID uuid.UUID, opts BatchOptions, summary pipeline.Summary, started time.Time, took time.Duration) {
	if s.store != nil {
		if err := s.store.FinishRun(ctx, runID, summary); err != nil {
			s.logger.Error("failed to finish run", "run_id", runID, "error", err)
		}
	}

	runEvent := events.RunEvent{
		Source:     opts.Ref,
		Total:      summary.Total,
		Accepted:   summary.Accepted,
		Rejected:   summary.Rejected,
		DurationMS: took.Milliseconds(),
	}
	if runID != uuid.Nil {
		runEvent.RunID = runID.String()
	}
	if err := s.publisher.PublishRun(ctx, runEvent); err != nil {
		s.logger.Error("failed to publish run event", "error", err)
	}

	if s.mailer != nil && opts.ReportFrom != "" && len(opts.ReportTo) > 0 {
		report := email.BuildRunReport(opts.ReportFrom, opts.ReportTo, opts.Ref, summary, started, took)
		if _, err := s.mailer.Send(ctx, report); err != nil {
			s.logger.Error("failed to send run report", "error", err)
		}
	}
}

// storeSink persists row outcomes under one run.
type storeSink struct {
	store RunStore
	runID uuid.UUID
}

func (s *storeSink) Accepted(ctx context.Context, line int, rec domain.Record) error {
	reg, err := domain.NewRegistration(rec)
	if err != nil {
		return err
	}
	return s.store.InsertRegistration(ctx, s.runID, line, reg)
}

func (s *storeSink) Rejected(ctx context.Context, line int, rec domain.Record, rowErr error) error {
	return s.store.InsertRejection(ctx, s.runID, line, rec, rowErr)
}

// eventSink publishes row outcomes.
type eventSink struct {
	publisher events.Publisher
}

func (s *eventSink) Accepted(ctx context.Context, line int, rec domain.Record) error {
	return s.publisher.PublishRow(ctx, events.RowEvent{
		Line:   line,
		Status: events.StatusAccepted,
		Record: rec,
	})
}

func (s *eventSink) Rejected(ctx context.Context, line int, rec domain.Record, rowErr error) error {
	return s.publisher.PublishRow(ctx, events.RowEvent{
		Line:    line,
		Status:  events.StatusRejected,
		Code:    domain.ErrorCode(rowErr),
		Message: domain.ErrorMessage(rowErr),
		Record:  rec,
	})
}

// SplitRecipients parses a comma-separated recipient list from config.
func SplitRecipients(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
