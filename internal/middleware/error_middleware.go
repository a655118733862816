package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/pkg/apperrors"
)

// HandleAPIError maps service errors onto HTTP responses. Controllers call
// this for every error path so status codes and payload shapes stay uniform.
func HandleAPIError(c *gin.Context, err error) {
	var custom *apperrors.CustomError
	message := ""
	var details interface{}
	if errors.As(err, &custom) {
		message = custom.Message
		details = custom.Details
	}

	respond := func(status int, code dto.ErrorCode, fallback string) {
		if message == "" {
			message = fallback
		}
		errorDetail := dto.NewErrorDetail(code, message)
		if details != nil {
			errorDetail = errorDetail.WithDetails(details)
		}
		c.JSON(status, dto.APIResponse{Error: errorDetail})
	}

	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respond(http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		respond(http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		respond(http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrTokenNotFound):
		respond(http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found")
	case errors.Is(err, apperrors.ErrAccountDisabled):
		respond(http.StatusForbidden, dto.ErrorCodeForbidden, "Account is disabled")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		respond(http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied")

	case errors.Is(err, apperrors.ErrDuplicateViolation):
		respond(http.StatusConflict, dto.ErrorCodeResourceConflict, "Duplicate violation report")
	case errors.Is(err, apperrors.ErrInvalidStatusChange):
		respond(http.StatusConflict, dto.ErrorCodeResourceConflict, "Invalid status change")
	case errors.Is(err, apperrors.ErrUsernameAlreadyExists):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Username already exists")
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists")
	case errors.Is(err, apperrors.ErrStudentIDAlreadyExists):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Student ID already exists")
	case errors.Is(err, apperrors.ErrDepartmentAlreadyExists):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Department code already exists")
	case errors.Is(err, apperrors.ErrSectionAlreadyExists):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Section code already exists")
	case errors.Is(err, apperrors.ErrDepartmentHasRelations):
		respond(http.StatusConflict, dto.ErrorCodeResourceConflict, "Department has enrolled students")

	case errors.Is(err, apperrors.ErrInvalidStudentID):
		respond(http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Invalid student ID")
	case errors.Is(err, apperrors.ErrInvalidSettingValue):
		respond(http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Invalid setting value")
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		if message == "" {
			message = err.Error()
		}
		respond(http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed")

	case isNotFound(err):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, notFoundMessage(err))

	case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists")
	case errors.Is(err, apperrors.ErrConflict):
		respond(http.StatusConflict, dto.ErrorCodeResourceConflict, "Conflict")

	default:
		// Never leak internal error details to the client.
		message = ""
		details = nil
		respond(http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error")
	}
}

var notFoundSentinels = []error{
	apperrors.ErrResourceNotFound,
	apperrors.ErrUserNotFound,
	apperrors.ErrStudentNotFound,
	apperrors.ErrDepartmentNotFound,
	apperrors.ErrSectionNotFound,
	apperrors.ErrViolationNotFound,
	apperrors.ErrViolationTypeNotFound,
	apperrors.ErrViolationLevelNotFound,
	apperrors.ErrReportNotFound,
	apperrors.ErrAnnouncementNotFound,
	apperrors.ErrSettingNotFound,
}

func isNotFound(err error) bool {
	for _, sentinel := range notFoundSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// notFoundMessage picks a resource-specific message for not-found errors
func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrStudentNotFound):
		return "Student not found"
	case errors.Is(err, apperrors.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, apperrors.ErrDepartmentNotFound):
		return "Department not found"
	case errors.Is(err, apperrors.ErrSectionNotFound):
		return "Section not found"
	case errors.Is(err, apperrors.ErrViolationNotFound):
		return "Violation not found"
	case errors.Is(err, apperrors.ErrViolationTypeNotFound):
		return "Violation type not found"
	case errors.Is(err, apperrors.ErrViolationLevelNotFound):
		return "Violation level not found"
	case errors.Is(err, apperrors.ErrReportNotFound):
		return "Report not found"
	case errors.Is(err, apperrors.ErrAnnouncementNotFound):
		return "Announcement not found"
	case errors.Is(err, apperrors.ErrSettingNotFound):
		return "Setting not found"
	}
	return "Resource not found"
}
