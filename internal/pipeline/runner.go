package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dukerupert/regcheck/internal/domain"
	"github.com/dukerupert/regcheck/internal/telemetry"
)

// maxLineSize bounds a single input line. Records are small; anything past
// this is a malformed input rather than a legitimate row.
const maxLineSize = 1 << 20

// Summary holds the tallies of one batch run.
type Summary struct {
	Total    int
	Accepted int
	Rejected int
}

// RowSink receives per-row outcomes for side effects beyond console output
// (persistence, events). Sink errors are logged and never change a row's
// accepted/rejected status or abort the run.
type RowSink interface {
	Accepted(ctx context.Context, line int, rec domain.Record) error
	Rejected(ctx context.Context, line int, rec domain.Record, err error) error
}

// RunnerConfig configures a Runner. The zero value writes to stdout, does
// not echo accepted rows, and has no sinks or metrics.
type RunnerConfig struct {
	// Out receives the per-row and summary console output.
	Out io.Writer

	// PrintAccepted echoes a confirmation line for each accepted row.
	PrintAccepted bool

	Sinks   []RowSink
	Metrics *telemetry.Metrics
	Logger  *slog.Logger
}

// Runner drives the read-validate-report loop over a line-delimited JSON
// input. Lines are processed strictly in order so output is deterministic.
type Runner struct {
	proc          *Processor
	out           io.Writer
	printAccepted bool
	sinks         []RowSink
	metrics       *telemetry.Metrics
	logger        *slog.Logger
}

// NewRunner creates a Runner around the given processor.
func NewRunner(proc *Processor, cfg RunnerConfig) *Runner {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		proc:          proc,
		out:           out,
		printAccepted: cfg.PrintAccepted,
		sinks:         cfg.Sinks,
		metrics:       cfg.Metrics,
		logger:        logger,
	}
}

// Run processes every line of input, starting at line number 1.
//
// Row-level failures are reported and counted, never fatal. After the last
// line a two-line summary is written. A read error is the one fatal
// condition: it propagates and no summary is produced. Either way the
// input reader is the caller's to close.
func (r *Runner) Run(ctx context.Context, input io.Reader) (Summary, error) {
	var s Summary

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		s.Total++
		lineNum := s.Total

		rec, err := r.proc.ProcessRow(scanner.Bytes())
		if err != nil {
			s.Rejected++
			r.metrics.ObserveRejected(domain.ErrorCode(err))
			fmt.Fprintf(r.out, "[%04d][ERROR:] %s, [DATA]: %s\n", lineNum, domain.ErrorMessage(err), rec)
			r.notifyRejected(ctx, lineNum, rec, err)
			continue
		}

		s.Accepted++
		r.metrics.ObserveAccepted()
		if r.printAccepted {
			fmt.Fprintf(r.out, "[%04d [OK]: %s\n", lineNum, rec)
		}
		r.notifyAccepted(ctx, lineNum, rec)
	}

	if err := scanner.Err(); err != nil {
		return s, fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintf(r.out, "Read %d rows\n", s.Total)
	fmt.Fprintf(r.out, "OK rows: %04d, Rejected rows: %04d\n", s.Accepted, s.Rejected)

	return s, nil
}

// RunFile opens path, processes it, and guarantees the file is closed when
// the loop ends. An open failure is fatal and produces no summary.
func (r *Runner) RunFile(ctx context.Context, path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	return r.Run(ctx, f)
}

func (r *Runner) notifyAccepted(ctx context.Context, line int, rec domain.Record) {
	for _, sink := range r.sinks {
		if err := sink.Accepted(ctx, line, rec); err != nil {
			r.logger.Error("row sink failed", "line", line, "status", "accepted", "error", err)
		}
	}
}

func (r *Runner) notifyRejected(ctx context.Context, line int, rec domain.Record, rowErr error) {
	for _, sink := range r.sinks {
		if err := sink.Rejected(ctx, line, rec, rowErr); err != nil {
			r.logger.Error("row sink failed", "line", line, "status", "rejected", "error", err)
		}
	}
}
