package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/pkg/apperrors"
)

func runHandleAPIError(t *testing.T, err error) (*httptest.ResponseRecorder, dto.APIResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleAPIError(c, err)

	var body dto.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHandleAPIErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"invalid credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"expired token", apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{"account disabled", apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeForbidden},
		{"permission denied", apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden},
		{"duplicate violation", apperrors.ErrDuplicateViolation, http.StatusConflict, dto.ErrorCodeResourceConflict},
		{"invalid status change", apperrors.ErrInvalidStatusChange, http.StatusConflict, dto.ErrorCodeResourceConflict},
		{"student ID exists", apperrors.ErrStudentIDAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"department has students", apperrors.ErrDepartmentHasRelations, http.StatusConflict, dto.ErrorCodeResourceConflict},
		{"invalid student ID", apperrors.ErrInvalidStudentID, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"validation failed", apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"student not found", apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"report not found", apperrors.ErrReportNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"setting not found", apperrors.ErrSettingNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"unexpected error", errors.New("pq: connection refused"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := runHandleAPIError(t, tt.err)
			assert.Equal(t, tt.status, rec.Code)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestHandleAPIErrorWrappedSentinel(t *testing.T) {
	wrapped := errors.New("context: " + apperrors.ErrStudentNotFound.Error())
	// A plain message match is not enough; wrapping must use %w.
	rec, _ := runHandleAPIError(t, wrapped)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec, body := runHandleAPIError(t, errors.Join(errors.New("lookup failed"), apperrors.ErrStudentNotFound))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Student not found", body.Error.Message)
}

func TestHandleAPIErrorUsesCustomErrorMessageAndDetails(t *testing.T) {
	err := apperrors.NewCustomError(apperrors.ErrDuplicateViolation, "an identical violation report already exists (case #7)").
		WithDetails(map[string]interface{}{"existingId": 7})

	rec, body := runHandleAPIError(t, err)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "an identical violation report already exists (case #7)", body.Error.Message)

	details, ok := body.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(7), details["existingId"])
}

func TestHandleAPIErrorNeverLeaksInternalDetails(t *testing.T) {
	_, body := runHandleAPIError(t, errors.New("dial tcp 10.0.0.5:5432: i/o timeout"))
	require.NotNil(t, body.Error)
	assert.Equal(t, "Internal server error", body.Error.Message)
	assert.NotContains(t, body.Error.Message, "10.0.0.5")
	assert.Nil(t, body.Error.Details)
}
