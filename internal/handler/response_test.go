package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/repodocs/internal/apperror"
)

func TestWriteError_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"validation", apperror.ValidationFailed("owner", "owner is required"), http.StatusBadRequest, "validation_error"},
		{"unauthenticated", apperror.Unauthenticated("no token provided"), http.StatusUnauthorized, "unauthenticated"},
		{"forbidden", apperror.Forbidden("re-authenticate"), http.StatusForbidden, "forbidden"},
		{"not found", apperror.NotFound("user", "x"), http.StatusNotFound, "not_found"},
		{"upstream keeps provider status", apperror.Upstream(http.StatusTooManyRequests, "rate limited"), http.StatusTooManyRequests, "upstream_error"},
		{"upstream without status maps to 500", &apperror.AppError{Err: apperror.ErrUpstream, Message: "boom"}, http.StatusInternalServerError, "upstream_error"},
		{"config", apperror.Config("JWT_SECRET"), http.StatusInternalServerError, "configuration_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeError(rr, tt.err)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.wantKind)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		})
	}
}

func TestWriteError_WrappedErrorsStillClassify(t *testing.T) {
	err := fmt.Errorf("service/docs: fetching repository metadata: %w",
		apperror.Upstream(http.StatusForbidden, "rate limited"))

	rr := httptest.NewRecorder()
	writeError(rr, err)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "rate limited")
}

func TestWriteError_UnknownErrorHidesDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, errors.New("pq: connection refused to 10.0.0.3"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "An internal error occurred")
	assert.NotContains(t, rr.Body.String(), "10.0.0.3")
}
