package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/regcheck/internal/domain"
	"github.com/dukerupert/regcheck/internal/pipeline"
	"github.com/dukerupert/regcheck/internal/service"
)

const validBody = `{"license_plate": "ABC-1234", "make_model": "Toyota Camry", "year": 2020, "registered_name": "John Smith", "registered_address": "123 Main Street\nSpringfield, IL 62701", "registered_date": "2020-03-15"}`

func newTestHandler() *ValidationHandler {
	svc := service.NewIntakeService(pipeline.NewProcessor(nil), service.IntakeConfig{})
	return NewValidationHandler(svc, nil, nil)
}

func TestValidateRecord_Accepted(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader(validBody))
	w := httptest.NewRecorder()
	h.ValidateRecord(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "accepted", resp.Status)
	assert.Equal(t, "123 Main Street", resp.Record["street_address"])
	assert.Equal(t, "Springfield", resp.Record["city"])
	assert.Equal(t, "IL", resp.Record["state"])
	assert.Equal(t, "62701", resp.Record["zip"])
	assert.NotContains(t, resp.Record, "registered_address")
}

func TestValidateRecord_MissingField(t *testing.T) {
	h := newTestHandler()

	body := `{"license_plate": "ABC-1234"}`
	req := httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ValidateRecord(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.EMISSINGFIELD, resp.Error.Code)
	assert.Equal(t, "Missing required field: make_model", resp.Error.Message)
}

func TestValidateRecord_BadJSON(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	h.ValidateRecord(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateBatch(t *testing.T) {
	h := newTestHandler()

	body := validBody + "\n" + `{"license_plate": "XYZ-9999"}` + "\n"
	req := httptest.NewRequest(http.MethodPost, "/api/validate/batch", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ValidateBatch(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 1, resp.Accepted)
	assert.Equal(t, 1, resp.Rejected)
	require.Len(t, resp.Rows, 2)

	assert.Equal(t, 1, resp.Rows[0].Line)
	assert.Equal(t, "accepted", resp.Rows[0].Status)
	assert.Empty(t, resp.Rows[0].Code)

	assert.Equal(t, 2, resp.Rows[1].Line)
	assert.Equal(t, "rejected", resp.Rows[1].Status)
	assert.Equal(t, domain.EMISSINGFIELD, resp.Rows[1].Code)
	assert.Equal(t, "Missing required field: make_model", resp.Rows[1].Message)
}

func TestValidateBatch_EmptyBody(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/validate/batch", strings.NewReader(""))
	w := httptest.NewRecorder()
	h.ValidateBatch(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Total)
	assert.Empty(t, resp.Rows)
}

func TestHealth_NoDatabase(t *testing.T) {
	h := NewHealthHandler(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.NotContains(t, resp, "database")
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth_DatabaseDown(t *testing.T) {
	down := pingFunc(func(ctx context.Context) error {
		return errors.New("connection refused")
	})
	h := NewHealthHandler(down, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
	assert.Equal(t, "unreachable", resp["database"])
}

func TestHealth_DatabaseUp(t *testing.T) {
	up := pingFunc(func(ctx context.Context) error { return nil })
	h := NewHealthHandler(up, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "ok", resp["database"])
}
