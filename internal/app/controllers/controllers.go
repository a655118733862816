// Package controllers exposes the HTTP handlers for the OSAS API. Handlers
// bind and validate requests, delegate to the services layer, and render the
// shared response envelope; error mapping is centralized in the middleware
// package.
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/osasdev/osas/internal/app/models/dto"
)

// parseIDParam parses a numeric path parameter, writing a 400 response and
// returning false when it is not a valid positive integer.
func parseIDParam(ctx *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+label+" ID").
			WithDetails(label + " ID must be a valid number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// bindJSON binds the request body, writing a 400 response and returning
// false on malformed input.
func bindJSON(ctx *gin.Context, obj interface{}, label string) bool {
	if err := ctx.ShouldBindJSON(obj); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+label+" data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return false
	}
	return true
}
