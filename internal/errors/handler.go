package errors

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"watchdog/internal/engine"
	"watchdog/internal/infrastructure"
	"watchdog/internal/quarantine"
)

// ErrorHandler converts errors into RFC 7807 responses and logs them.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger: logger.With(slog.String("component", "error_handler")),
	}
}

// HandleError converts any error to RFC 7807 format and responds.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	traceID := infrastructure.GetTraceID(r.Context())

	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("trace_id", traceID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", traceID)

	// Written directly: chi render's responder would stamp the response with
	// application/json, and problem responses must go out as problem+json.
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	if encodeErr := json.NewEncoder(w).Encode(problem); encodeErr != nil {
		h.logger.ErrorContext(r.Context(), "failed to write problem response",
			slog.String("error", encodeErr.Error()))
	}
}

// ErrorToProblem maps an error to RFC 7807 problem details. Configuration
// errors from the engine surface as 422s naming the unresolved role or
// field; alignment errors are programming bugs and surface as 500s.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			r.URL.Path,
		)
	}

	var unmapped *engine.UnmappedRoleError
	if errors.As(err, &unmapped) {
		return problemFromAPIError(ErrUnmappedRole(unmapped.Error()), TypeConfig, r)
	}
	var unknown *engine.UnknownFieldError
	if errors.As(err, &unknown) {
		return problemFromAPIError(ErrUnknownField(unknown.Error()), TypeConfig, r)
	}
	var empty *engine.EmptyRuleSetError
	if errors.As(err, &empty) {
		return problemFromAPIError(ErrEmptyRuleSet(), TypeConfig, r)
	}
	var misaligned *quarantine.AlignmentError
	if errors.As(err, &misaligned) {
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeInternal,
			"Partition Alignment Failure",
			misaligned.Error(),
			r.URL.Path,
		)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		problemType := TypeValidation
		switch apiErr.StatusCode {
		case http.StatusNotFound:
			problemType = TypeNotFound
		case http.StatusUnsupportedMediaType:
			problemType = TypeUnsupported
		case http.StatusUnprocessableEntity:
			problemType = TypeConfig
		case http.StatusInternalServerError:
			problemType = TypeInternal
		}
		return problemFromAPIError(apiErr, problemType, r)
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	)
}

func problemFromAPIError(apiErr *APIError, problemType string, r *http.Request) *ProblemDetails {
	pd := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		apiErr.Message,
		"",
		r.URL.Path,
	)
	pd.WithExtension("error_code", apiErr.ErrorCode)
	if apiErr.Details != nil {
		pd.WithExtension("details", apiErr.Details)
	}
	return pd
}
