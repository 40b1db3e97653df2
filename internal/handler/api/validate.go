// Package api exposes the record validation pipeline over HTTP for
// callers that want per-record or small-batch checks without a full
// batch run.
package api

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/dukerupert/regcheck/internal/domain"
	"github.com/dukerupert/regcheck/internal/middleware"
	"github.com/dukerupert/regcheck/internal/telemetry"
)

// maxBodySize caps request bodies. Large batches belong in the batch CLI,
// not the intake API.
const maxBodySize = 1 << 20 // 1 MiB

// RecordValidator applies the per-row validation sequence to one encoded
// record. Implemented by service.IntakeService.
type RecordValidator interface {
	ValidateRecord(line []byte) (domain.Record, error)
}

// ValidationHandler serves the /api/validate endpoints.
type ValidationHandler struct {
	validator RecordValidator
	metrics   *telemetry.Metrics
	logger    *slog.Logger
}

// NewValidationHandler creates a validation handler.
func NewValidationHandler(validator RecordValidator, metrics *telemetry.Metrics, logger *slog.Logger) *ValidationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidationHandler{
		validator: validator,
		metrics:   metrics,
		logger:    logger,
	}
}

// ValidateResponse is the body returned for an accepted record.
type ValidateResponse struct {
	Status string        `json:"status"`
	Record domain.Record `json:"record"`
}

// ValidateRecord handles POST /api/validate. The body is a single JSON
// record. An accepted record is returned in normalized form with the
// address split into its components; a rejected record yields the error
// envelope with the rejection code and message.
func (h *ValidationHandler) ValidateRecord(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		middleware.RespondWithError(w, r, domain.Invalid("api.validate", "request body too large or unreadable"))
		return
	}

	rec, err := h.validator.ValidateRecord(body)
	if err != nil {
		h.metrics.ObserveRejected(domain.ErrorCode(err))
		middleware.RespondWithError(w, r, err)
		return
	}
	h.metrics.ObserveAccepted()

	respondWithJSON(w, http.StatusOK, ValidateResponse{
		Status: "accepted",
		Record: rec,
	})
}

// BatchRow is one row outcome in a batch validation response.
type BatchRow struct {
	Line    int           `json:"line"`
	Status  string        `json:"status"`
	Code    string        `json:"code,omitempty"`
	Message string        `json:"message,omitempty"`
	Record  domain.Record `json:"record,omitempty"`
}

// BatchResponse summarizes a batch validation request.
type BatchResponse struct {
	Total    int        `json:"total"`
	Accepted int        `json:"accepted"`
	Rejected int        `json:"rejected"`
	Rows     []BatchRow `json:"rows"`
}

// ValidateBatch handles POST /api/validate/batch. The body is
// newline-delimited JSON, one record per line. Every line gets an
// outcome; rejected lines never fail the request.
func (h *ValidationHandler) ValidateBatch(w http.ResponseWriter, r *http.Request) {
	resp := BatchResponse{Rows: []BatchRow{}}

	scanner := bufio.NewScanner(http.MaxBytesReader(w, r.Body, maxBodySize))
	scanner.Buffer(make([]byte, 0, 64*1024), maxBodySize)

	line := 0
	for scanner.Scan() {
		line++
		resp.Total++

		rec, err := h.validator.ValidateRecord(scanner.Bytes())
		if err != nil {
			resp.Rejected++
			h.metrics.ObserveRejected(domain.ErrorCode(err))
			resp.Rows = append(resp.Rows, BatchRow{
				Line:    line,
				Status:  "rejected",
				Code:    domain.ErrorCode(err),
				Message: domain.ErrorMessage(err),
				Record:  rec,
			})
			continue
		}

		resp.Accepted++
		h.metrics.ObserveAccepted()
		resp.Rows = append(resp.Rows, BatchRow{
			Line:   line,
			Status: "accepted",
			Record: rec,
		})
	}
	if err := scanner.Err(); err != nil {
		middleware.RespondWithError(w, r, domain.Invalid("api.validate_batch", "request body too large or unreadable"))
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
