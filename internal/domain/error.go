package domain

import (
	"errors"
	"fmt"
)

// Application error codes.
// Row-scoped codes describe why a record was rejected; the remaining codes
// map to HTTP status codes on the intake API.
const (
	// Row rejection codes, in the order the pipeline applies its checks.
	EDECODE        = "decode"         // line is not a JSON object
	EMISSINGFIELD  = "missing_field"  // a required field key is absent
	ENULLVALUE     = "null_value"     // a required field's value is null
	EADDRESSFORMAT = "address_format" // registered_address does not match the expected shape

	EINVALID  = "invalid"   // 400 - bad input outside row processing
	ENOTFOUND = "not_found" // 404 - resource not found
	EINTERNAL = "internal"  // 500 - internal error (hide details)
)

// Error represents an application error with a code and message.
// It implements the error interface and supports error wrapping.
type Error struct {
	// Code is a machine-readable error code (e.g., EMISSINGFIELD).
	Code string

	// Message is a human-readable message. For row rejection codes the
	// message is part of the output contract and must not be reworded.
	Message string

	// Op is the operation where the error occurred (e.g., "record.decode").
	// Used for logging, never shown in row output.
	Op string

	// Field is the required field that failed, for missing/null rejections.
	Field string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		if e.Op != "" {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap implements error unwrapping for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode extracts the error code from an error.
// Returns EINTERNAL for non-domain errors.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return EINTERNAL
}

// ErrorMessage extracts the user-facing message from an error.
// For internal or unknown errors a generic message is returned so
// implementation details never leak into responses.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		if e.Code == EINTERNAL {
			return "An internal error occurred. Please try again later."
		}
		return e.Message
	}

	return "An internal error occurred. Please try again later."
}

// ErrorField extracts the offending field name from a missing/null
// rejection. Empty for other errors.
func ErrorField(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// IsCode returns true if err has the given error code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// Errorf creates a new domain error with a formatted message.
func Errorf(code, op, format string, args ...interface{}) error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// Internal wraps an underlying error as an internal error. The message
// shown to users will be generic; the wrapped error is for logging.
func Internal(err error, op, message string) error {
	return &Error{
		Code:    EINTERNAL,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NotFound creates a not found error for a resource.
func NotFound(op, resource, identifier string) error {
	return &Error{
		Code:    ENOTFOUND,
		Op:      op,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
	}
}

// Invalid creates a validation error for a single issue.
func Invalid(op, message string) error {
	return &Error{
		Code:    EINVALID,
		Op:      op,
		Message: message,
	}
}

// =============================================================================
// Row rejection errors
// =============================================================================
//
// The message strings below are the per-row diagnostic contract: downstream
// consumers match on them, so they are fixed verbatim.

// DecodeErr wraps a JSON decoding failure for one input line.
func DecodeErr(err error) error {
	return &Error{
		Code:    EDECODE,
		Op:      "record.decode",
		Message: fmt.Sprintf("invalid JSON: %v", err),
		Err:     err,
	}
}

// MissingField reports the first absent required field.
func MissingField(field string) error {
	return &Error{
		Code:    EMISSINGFIELD,
		Op:      "record.schema",
		Field:   field,
		Message: fmt.Sprintf("Missing required field: %s", field),
	}
}

// NullValue reports the first required field whose value is null.
func NullValue(field string) error {
	return &Error{
		Code:    ENULLVALUE,
		Op:      "record.nulls",
		Field:   field,
		Message: fmt.Sprintf("%s cannot be Null.", field),
	}
}

// AddressFormat reports an unparseable registered_address. display is the
// human-readable form of the raw value (outer whitespace trimmed, internal
// line breaks replaced by ", ").
func AddressFormat(display string) error {
	return &Error{
		Code:    EADDRESSFORMAT,
		Op:      "record.address",
		Message: fmt.Sprintf("Unknown address format: %s", display),
	}
}
