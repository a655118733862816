package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/app/services"
	"github.com/osasdev/osas/internal/middleware"
)

// SectionController handles section operations
type SectionController struct {
	sectionService *services.SectionService
}

// NewSectionController creates a new SectionController
func NewSectionController(sectionService *services.SectionService) *SectionController {
	return &SectionController{
		sectionService: sectionService,
	}
}

// ListSections lists sections
// @Summary List sections
// @Tags sections
// @Produce json
// @Security BearerAuth
// @Param departmentId query int false "Filter by department ID"
// @Param status query string false "Filter by status" Enums(active, archived)
// @Success 200 {object} dto.APIResponse{data=[]models.Section} "Sections retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sections [get]
func (c *SectionController) ListSections(ctx *gin.Context) {
	var departmentID int64
	if v := ctx.Query("departmentId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid department ID").
				WithDetails("departmentId must be a valid number")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		departmentID = id
	}

	sections, err := c.sectionService.ListSections(ctx, departmentID, ctx.Query("status"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      sections,
		Timestamp: time.Now(),
	})
}

// GetSectionByID retrieves a section by ID
// @Summary Get section by ID
// @Tags sections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Success 200 {object} dto.APIResponse{data=models.Section} "Section retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid section ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Section not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sections/{id} [get]
func (c *SectionController) GetSectionByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "section")
	if !ok {
		return
	}

	section, err := c.sectionService.GetSectionByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      section,
		Timestamp: time.Now(),
	})
}

// CreateSection creates a new section
// @Summary Create a new section
// @Tags sections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSectionRequest true "Section information"
// @Success 201 {object} dto.APIResponse{data=models.Section} "Section created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Failure 409 {object} dto.ErrorResponse "Section code already exists in department"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sections [post]
func (c *SectionController) CreateSection(ctx *gin.Context) {
	var req dto.CreateSectionRequest
	if !bindJSON(ctx, &req, "section") {
		return
	}

	section, err := c.sectionService.CreateSection(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      section,
		Timestamp: time.Now(),
	})
}

// UpdateSection updates an existing section
// @Summary Update a section
// @Tags sections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Param request body dto.UpdateSectionRequest true "Updated section information"
// @Success 200 {object} dto.APIResponse{data=models.Section} "Section updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Section or department not found"
// @Failure 409 {object} dto.ErrorResponse "Section code already exists in department"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sections/{id} [put]
func (c *SectionController) UpdateSection(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "section")
	if !ok {
		return
	}

	var req dto.UpdateSectionRequest
	if !bindJSON(ctx, &req, "section") {
		return
	}

	section, err := c.sectionService.UpdateSection(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      section,
		Timestamp: time.Now(),
	})
}

// ArchiveSection archives a section
// @Summary Archive a section
// @Tags sections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Section archived successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid section ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Section not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sections/{id}/archive [post]
func (c *SectionController) ArchiveSection(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "section")
	if !ok {
		return
	}

	if err := c.sectionService.ArchiveSection(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Section archived"},
		Timestamp: time.Now(),
	})
}

// RestoreSection restores an archived section
// @Summary Restore an archived section
// @Tags sections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Section restored successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid section ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Section not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sections/{id}/restore [post]
func (c *SectionController) RestoreSection(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "section")
	if !ok {
		return
	}

	if err := c.sectionService.RestoreSection(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Section restored"},
		Timestamp: time.Now(),
	})
}
