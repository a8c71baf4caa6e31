package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchdog/internal/engine"
	"watchdog/internal/quarantine"
	"watchdog/internal/shared/testutil"
)

func TestErrorToProblem(t *testing.T) {
	logger, _ := testutil.NewLogger(t)
	h := NewErrorHandler(logger)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", nil)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
	}{
		{
			name:       "unmapped role",
			err:        &engine.UnmappedRoleError{Rule: "price_non_negative", Role: "price"},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeConfig,
			wantCode:   "UNMAPPED_ROLE",
		},
		{
			name:       "unknown field",
			err:        &engine.UnknownFieldError{Role: "price", Field: "Unit Price"},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeConfig,
			wantCode:   "UNKNOWN_FIELD",
		},
		{
			name:       "empty rule set",
			err:        &engine.EmptyRuleSetError{},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeConfig,
			wantCode:   "EMPTY_RULE_SET",
		},
		{
			name:       "wrapped engine error",
			err:        fmt.Errorf("run failed: %w", &engine.UnmappedRoleError{Rule: "r", Role: "price"}),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeConfig,
			wantCode:   "UNMAPPED_ROLE",
		},
		{
			name:       "alignment error",
			err:        &quarantine.AlignmentError{Rows: 10, Verdicts: 9},
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
		{
			name:       "api error",
			err:        ErrRunNotFound,
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
			wantCode:   "RUN_NOT_FOUND",
		},
		{
			name:       "cancelled context",
			err:        context.Canceled,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "unknown error",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem := h.ErrorToProblem(tt.err, req)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, problem.Extensions["error_code"])
			}
		})
	}
}

func TestHandleError_Response(t *testing.T) {
	logger, handler := testutil.NewLogger(t)
	h := NewErrorHandler(logger)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/nope", nil)
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, ErrRunNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TypeNotFound, body["type"])
	assert.Equal(t, "RUN_NOT_FOUND", body["error_code"])
	assert.Equal(t, "/api/v1/runs/nope", body["instance"])
	_, hasTrace := body["trace_id"]
	assert.True(t, hasTrace)

	assert.Equal(t, 1, handler.ErrorCount(), "failed requests are logged")
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(422, TypeConfig, "Field mapping is incomplete", "role price", "/api/v1/validate")
	pd.WithExtension("error_code", "UNMAPPED_ROLE")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, float64(422), body["status"])
	assert.Equal(t, "role price", body["detail"])
	assert.Equal(t, "UNMAPPED_ROLE", body["error_code"])
}
