package pipeline

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/regcheck/internal/domain"
)

const (
	nullAddressLine = `{"license_plate":"ABC123","make_model":"Ford Focus","year":2020,` +
		`"registered_name":"Jane Doe","registered_address":null,"registered_date":"2023-01-01"}`
	missingYearLine = `{"license_plate":"ABC123","make_model":"Ford Focus",` +
		`"registered_name":"Jane Doe","registered_address":"123 Main St\nSpringfield, IL 62704",` +
		`"registered_date":"2023-01-01"}`
	badAddressLine = `{"license_plate":"ABC123","make_model":"Ford Focus","year":2020,` +
		`"registered_name":"Jane Doe","registered_address":"123 Main St, Springfield, IL 62704",` +
		`"registered_date":"2023-01-01"}`
)

// mockSink records sink callbacks for assertions.
type mockSink struct {
	AcceptedFunc func(ctx context.Context, line int, rec domain.Record) error
	RejectedFunc func(ctx context.Context, line int, rec domain.Record, err error) error

	accepted []int
	rejected []int
}

func (m *mockSink) Accepted(ctx context.Context, line int, rec domain.Record) error {
	m.accepted = append(m.accepted, line)
	if m.AcceptedFunc != nil {
		return m.AcceptedFunc(ctx, line, rec)
	}
	return nil
}

func (m *mockSink) Rejected(ctx context.Context, line int, rec domain.Record, err error) error {
	m.rejected = append(m.rejected, line)
	if m.RejectedFunc != nil {
		return m.RejectedFunc(ctx, line, rec, err)
	}
	return nil
}

func TestRun_MixedInput(t *testing.T) {
	input := strings.Join([]string{validLine, nullAddressLine, missingYearLine, badAddressLine}, "\n")

	var out strings.Builder
	r := NewRunner(NewProcessor(nil), RunnerConfig{Out: &out, PrintAccepted: true})

	summary, err := r.Run(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, Summary{Total: 4, Accepted: 1, Rejected: 3}, summary)
	assert.Equal(t, summary.Total, summary.Accepted+summary.Rejected)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 6)

	assert.Equal(t, `[0001 [OK]: {"city":"Springfield","license_plate":"ABC123",`+
		`"make_model":"Ford Focus","registered_date":"2023-01-01","registered_name":"Jane Doe",`+
		`"state":"IL","street_address":"123 Main St","year":2020,"zip":"62704"}`, lines[0])

	assert.True(t, strings.HasPrefix(lines[1], "[0002][ERROR:] registered_address cannot be Null., [DATA]: "))
	assert.Contains(t, lines[1], `"registered_address":null`)

	assert.True(t, strings.HasPrefix(lines[2], "[0003][ERROR:] Missing required field: year, [DATA]: "))

	assert.True(t, strings.HasPrefix(lines[3],
		"[0004][ERROR:] Unknown address format: 123 Main St, Springfield, IL 62704, [DATA]: "))

	assert.Equal(t, "Read 4 rows", lines[4])
	assert.Equal(t, "OK rows: 0001, Rejected rows: 0003", lines[5])
}

func TestRun_AcceptedRowsSilentByDefault(t *testing.T) {
	var out strings.Builder
	r := NewRunner(NewProcessor(nil), RunnerConfig{Out: &out})

	_, err := r.Run(context.Background(), strings.NewReader(validLine))
	require.NoError(t, err)

	assert.Equal(t, "Read 1 rows\nOK rows: 0001, Rejected rows: 0000\n", out.String())
}

func TestRun_EmptyInput(t *testing.T) {
	var out strings.Builder
	r := NewRunner(NewProcessor(nil), RunnerConfig{Out: &out, PrintAccepted: true})

	summary, err := r.Run(context.Background(), strings.NewReader(""))
	require.NoError(t, err)

	assert.Equal(t, Summary{}, summary)
	assert.Equal(t, "Read 0 rows\nOK rows: 0000, Rejected rows: 0000\n", out.String())
}

func TestRun_DecodeFailurePrintsEmptyData(t *testing.T) {
	var out strings.Builder
	r := NewRunner(NewProcessor(nil), RunnerConfig{Out: &out})

	summary, err := r.Run(context.Background(), strings.NewReader("not json"))
	require.NoError(t, err)

	assert.Equal(t, Summary{Total: 1, Rejected: 1}, summary)
	assert.True(t, strings.HasSuffix(strings.Split(out.String(), "\n")[0], ", [DATA]: {}"))
}

func TestRun_IsDeterministic(t *testing.T) {
	input := strings.Join([]string{validLine, badAddressLine, missingYearLine}, "\n")

	run := func() string {
		var out strings.Builder
		r := NewRunner(NewProcessor(nil), RunnerConfig{Out: &out, PrintAccepted: true})
		_, err := r.Run(context.Background(), strings.NewReader(input))
		require.NoError(t, err)
		return out.String()
	}

	assert.Equal(t, run(), run())
}

func TestRun_SinksReceiveOutcomes(t *testing.T) {
	input := strings.Join([]string{validLine, nullAddressLine}, "\n")

	sink := &mockSink{
		RejectedFunc: func(_ context.Context, _ int, _ domain.Record, err error) error {
			assert.Equal(t, domain.ENULLVALUE, domain.ErrorCode(err))
			return nil
		},
	}

	var out strings.Builder
	r := NewRunner(NewProcessor(nil), RunnerConfig{Out: &out, Sinks: []RowSink{sink}})

	_, err := r.Run(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []int{1}, sink.accepted)
	assert.Equal(t, []int{2}, sink.rejected)
}

func TestRun_SinkErrorsDoNotAbort(t *testing.T) {
	sink := &mockSink{
		AcceptedFunc: func(context.Context, int, domain.Record) error {
			return errors.New("store unavailable")
		},
	}

	var out strings.Builder
	r := NewRunner(NewProcessor(nil), RunnerConfig{Out: &out, Sinks: []RowSink{sink}})

	summary, err := r.Run(context.Background(), strings.NewReader(validLine))
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 1, Accepted: 1}, summary)
	assert.Contains(t, out.String(), "OK rows: 0001")
}

func TestRunFile_OpenFailureIsFatal(t *testing.T) {
	var out strings.Builder
	r := NewRunner(NewProcessor(nil), RunnerConfig{Out: &out})

	_, err := r.RunFile(context.Background(), "does/not/exist.json")
	require.Error(t, err)

	// No summary on a fatal open failure.
	assert.Equal(t, "", out.String())
}

func TestRunFile(t *testing.T) {
	path := t.TempDir() + "/rows.json"
	require.NoError(t, writeFile(path, validLine+"\n"+missingYearLine+"\n"))

	var out strings.Builder
	r := NewRunner(NewProcessor(nil), RunnerConfig{Out: &out})

	summary, err := r.RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 2, Accepted: 1, Rejected: 1}, summary)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
