package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes pipeline events as JSON to NATS subjects under a
// configurable prefix: <prefix>.rows.accepted, <prefix>.rows.rejected and
// <prefix>.runs.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	logger *slog.Logger
}

// NewNATSPublisher connects to the NATS server at url. prefix defaults to
// "regcheck" when empty.
func NewNATSPublisher(url, prefix string, logger *slog.Logger) (*NATSPublisher, error) {
	if prefix == "" {
		prefix = "regcheck"
	}
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(url,
		nats.Name("regcheck"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("connected to NATS", "url", url, "subject_prefix", prefix)

	return &NATSPublisher{conn: conn, prefix: prefix, logger: logger}, nil
}

// PublishRow emits one row outcome on the status-specific subject.
func (p *NATSPublisher) PublishRow(ctx context.Context, ev RowEvent) error {
	return p.publish(RowSubject(p.prefix, ev.Status), ev)
}

// PublishRun emits the run summary.
func (p *NATSPublisher) PublishRun(ctx context.Context, ev RunEvent) error {
	return p.publish(RunSubject(p.prefix), ev)
}

func (p *NATSPublisher) publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// Close flushes pending publishes and drops the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Flush(); err != nil {
		p.logger.Warn("NATS flush failed on close", "error", err)
	}
	p.conn.Close()
}

// RowSubject returns the subject for row events of the given status.
func RowSubject(prefix, status string) string {
	return fmt.Sprintf("%s.rows.%s", prefix, status)
}

// RunSubject returns the subject for run-summary events.
func RunSubject(prefix string) string {
	return fmt.Sprintf("%s.runs", prefix)
}
