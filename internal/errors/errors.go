// Package errors provides the structured error surface of the HTTP API:
// APIError values with stable error codes and RFC 7807 problem responses.
package errors

import (
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New creates a new APIError.
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details.
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidRequest = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrRunNotFound    = New(http.StatusNotFound, "RUN_NOT_FOUND", "Validation run not found")
	ErrInternalServer = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// ErrInvalidRulesDoc creates an error for a rules document that failed to
// parse or validate.
func ErrInvalidRulesDoc(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_RULES_DOC", "Rules document is invalid", err.Error())
}

// ErrUnsupportedFormat creates an error for an upload in a format no loader
// handles.
func ErrUnsupportedFormat(ext string) *APIError {
	return NewWithDetails(http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT",
		"Unsupported batch file format", ext)
}

// ErrUnmappedRole creates a configuration error for an enabled rule whose
// role has no mapped column.
func ErrUnmappedRole(detail string) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, "UNMAPPED_ROLE", "Field mapping is incomplete", detail)
}

// ErrUnknownField creates a configuration error for a mapping that points at
// a column absent from the batch schema.
func ErrUnknownField(detail string) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, "UNKNOWN_FIELD", "Mapped column not present in batch", detail)
}

// ErrEmptyRuleSet creates a configuration error for a run that required
// enabled rules but had none.
func ErrEmptyRuleSet() *APIError {
	return New(http.StatusUnprocessableEntity, "EMPTY_RULE_SET", "No enabled rules configured")
}
