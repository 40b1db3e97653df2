package email

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dukerupert/regcheck/internal/pipeline"
)

func TestBuildRunReport(t *testing.T) {
	started := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	summary := pipeline.Summary{Total: 10, Accepted: 7, Rejected: 3}

	ev := BuildRunReport("reports@example.com", []string{"ops@example.com"},
		"s3://intake/batch.json", summary, started, 1500*time.Millisecond)

	assert.Equal(t, []string{"ops@example.com"}, ev.To)
	assert.Equal(t, "regcheck: 7/10 rows accepted (s3://intake/batch.json)", ev.Subject)
	assert.Contains(t, ev.TextBody, "Read 10 rows")
	assert.Contains(t, ev.TextBody, "OK rows: 0007, Rejected rows: 0003")
	assert.Contains(t, ev.TextBody, "2023-06-01T12:00:00Z")
}
