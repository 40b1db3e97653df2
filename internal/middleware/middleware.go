// Package middleware provides the HTTP middleware chain for the intake
// server: request IDs, request-scoped logging, and Prometheus metrics.
package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/dukerupert/regcheck/internal/domain"
)

// contextKey is a private type for context keys defined in this package.
type contextKey string

// RespondWithError writes a structured JSON error response and logs it.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	message := domain.ErrorMessage(err)
	status := ErrorCodeToHTTPStatus(code)

	logger := GetLogger(r.Context())

	attrs := []any{
		"error", err.Error(),
		"code", code,
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
	}
	if reqID := GetRequestID(r.Context()); reqID != "" {
		attrs = append(attrs, "request_id", reqID)
	}

	if status >= 500 {
		logger.Error("request failed", attrs...)
	} else {
		logger.Info("request rejected", attrs...)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes. Row
// rejection codes map to 422: the request was well-formed JSON but the
// record failed validation. Undecodable bodies map to 400.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EDECODE, domain.EINVALID:
		return http.StatusBadRequest // 400
	case domain.EMISSINGFIELD, domain.ENULLVALUE, domain.EADDRESSFORMAT:
		return http.StatusUnprocessableEntity // 422
	case domain.ENOTFOUND:
		return http.StatusNotFound // 404
	case domain.EINTERNAL:
		return http.StatusInternalServerError // 500
	default:
		return http.StatusInternalServerError // 500
	}
}
