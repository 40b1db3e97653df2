package email

import (
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/regcheck/internal/pipeline"
)

// BuildRunReport composes the run-summary email for a completed batch.
func BuildRunReport(from string, to []string, source string, s pipeline.Summary, started time.Time, took time.Duration) *Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Validation run for %s\n\n", source)
	fmt.Fprintf(&b, "Started:  %s\n", started.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Duration: %s\n\n", took.Round(time.Millisecond))
	fmt.Fprintf(&b, "Read %d rows\n", s.Total)
	fmt.Fprintf(&b, "OK rows: %04d, Rejected rows: %04d\n", s.Accepted, s.Rejected)

	return &Email{
		From:     from,
		To:       to,
		Subject:  fmt.Sprintf("regcheck: %d/%d rows accepted (%s)", s.Accepted, s.Total, source),
		TextBody: b.String(),
	}
}
