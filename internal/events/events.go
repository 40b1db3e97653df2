// Package events publishes row and run outcomes for downstream consumers
// (rejection triage, registration ingestion).
package events

import (
	"context"

	"github.com/dukerupert/regcheck/internal/domain"
)

// RowEvent describes one processed input row.
type RowEvent struct {
	Line    int           `json:"line"`
	Status  string        `json:"status"` // "accepted" or "rejected"
	Code    string        `json:"code,omitempty"`
	Message string        `json:"message,omitempty"`
	Record  domain.Record `json:"record,omitempty"`
}

// RunEvent summarizes one completed batch run.
type RunEvent struct {
	RunID      string `json:"run_id,omitempty"`
	Source     string `json:"source"`
	Total      int    `json:"total"`
	Accepted   int    `json:"accepted"`
	Rejected   int    `json:"rejected"`
	DurationMS int64  `json:"duration_ms"`
}

// Row event statuses.
const (
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Publisher emits pipeline events. Implementations must be safe to call
// after a failed connection; publish errors are row-sink errors and never
// abort a run.
type Publisher interface {
	PublishRow(ctx context.Context, ev RowEvent) error
	PublishRun(ctx context.Context, ev RunEvent) error
	Close()
}

// NoopPublisher drops all events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishRow(context.Context, RowEvent) error { return nil }
func (NoopPublisher) PublishRun(context.Context, RunEvent) error { return nil }
func (NoopPublisher) Close()                                     {}
