package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osasdev/osas/internal/app/models"
	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/app/services"
	"github.com/osasdev/osas/internal/middleware"
	"github.com/osasdev/osas/internal/pkg/helpers"
)

// ViolationController handles violation lifecycle operations
type ViolationController struct {
	violationService *services.ViolationService
}

// NewViolationController creates a new ViolationController
func NewViolationController(violationService *services.ViolationService) *ViolationController {
	return &ViolationController{
		violationService: violationService,
	}
}

// CreateViolation records a new violation report
// @Summary Report a violation
// @Description Records a new violation report with duplicate protection and automatic case ID assignment
// @Tags violations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateViolationRequest true "Violation information"
// @Success 201 {object} dto.APIResponse{data=models.Violation} "Violation recorded successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Student, type or level not found"
// @Failure 409 {object} dto.ErrorResponse "Duplicate violation report"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /violations [post]
func (c *ViolationController) CreateViolation(ctx *gin.Context) {
	var req dto.CreateViolationRequest
	if !bindJSON(ctx, &req, "violation") {
		return
	}

	violation, err := c.violationService.CreateViolation(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      violation,
		Timestamp: time.Now(),
	})
}

// ListViolations lists violations with filters and pagination
// @Summary List violations
// @Description Retrieves violations filtered by student, status, archived flag or free-text search
// @Tags violations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId query string false "Filter by student ID"
// @Param status query string false "Filter by status" Enums(permitted, warning, disciplinary, resolved)
// @Param archived query bool false "Filter by archived flag"
// @Param search query string false "Search in case ID, location and notes"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse} "Violations retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /violations [get]
func (c *ViolationController) ListViolations(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	q := dto.ViolationListQuery{
		StudentID: ctx.Query("studentId"),
		Status:    ctx.Query("status"),
		Search:    ctx.Query("search"),
		Page:      page,
		Size:      size,
	}
	if archivedStr := ctx.Query("archived"); archivedStr != "" {
		archived, err := strconv.ParseBool(archivedStr)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid archived filter").
				WithDetails("archived must be true or false")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		q.Archived = &archived
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	violations, total, err := c.violationService.ListViolations(ctx, q, offset, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.PaginatedResponse{
			Items:      violations,
			Pagination: helpers.NewPaginationInfo(total, page, size),
		},
		Timestamp: time.Now(),
	})
}

// GetViolationByID retrieves a single violation
// @Summary Get violation by ID
// @Description Retrieves a specific violation by its database ID
// @Tags violations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Violation ID"
// @Success 200 {object} dto.APIResponse{data=models.Violation} "Violation retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid violation ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Violation not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /violations/{id} [get]
func (c *ViolationController) GetViolationByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "violation")
	if !ok {
		return
	}

	violation, err := c.violationService.GetViolationByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      violation,
		Timestamp: time.Now(),
	})
}

// UpdateViolationStatus applies an explicit status change
// @Summary Update violation status
// @Description Changes a violation's status following the allowed progression
// @Tags violations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Violation ID"
// @Param request body dto.UpdateViolationStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.Violation} "Status updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Violation not found"
// @Failure 409 {object} dto.ErrorResponse "Invalid status transition"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /violations/{id}/status [put]
func (c *ViolationController) UpdateViolationStatus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "violation")
	if !ok {
		return
	}

	var req dto.UpdateViolationStatusRequest
	if !bindJSON(ctx, &req, "status") {
		return
	}

	violation, err := c.violationService.UpdateStatus(ctx, id, models.ViolationStatus(req.Status))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      violation,
		Timestamp: time.Now(),
	})
}

// ListViolationTypes lists the configured violation types
// @Summary List violation types
// @Tags violations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.ViolationType} "Violation types retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /violations/types [get]
func (c *ViolationController) ListViolationTypes(ctx *gin.Context) {
	types, err := c.violationService.ListTypes(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      types,
		Timestamp: time.Now(),
	})
}

// ListViolationLevels lists the configured severity levels
// @Summary List violation levels
// @Tags violations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.ViolationLevel} "Violation levels retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /violations/levels [get]
func (c *ViolationController) ListViolationLevels(ctx *gin.Context) {
	levels, err := c.violationService.ListLevels(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      levels,
		Timestamp: time.Now(),
	})
}

// RunArchive triggers the monthly archive/reset check
// @Summary Run the monthly archive check
// @Description Archives last month's violations and resets student counters if this month's pass has not run yet
// @Tags violations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ArchiveRunResponse} "Archive check completed"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /violations/archive [post]
func (c *ViolationController) RunArchive(ctx *gin.Context) {
	result, err := c.violationService.CheckAndTriggerAutoArchive(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      result,
		Timestamp: time.Now(),
	})
}

// GetLastArchiveRun returns the most recent archival checkpoint
// @Summary Get last archive run
// @Tags violations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.MonthlyReset} "Last archive run retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /violations/archive/last [get]
func (c *ViolationController) GetLastArchiveRun(ctx *gin.Context) {
	last, err := c.violationService.LastArchiveRun(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      last,
		Timestamp: time.Now(),
	})
}
