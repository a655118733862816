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

// AnnouncementController handles announcement operations
type AnnouncementController struct {
	announcementService *services.AnnouncementService
}

// NewAnnouncementController creates a new AnnouncementController
func NewAnnouncementController(announcementService *services.AnnouncementService) *AnnouncementController {
	return &AnnouncementController{
		announcementService: announcementService,
	}
}

// ListAnnouncements lists announcements
// @Summary List announcements
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status" Enums(active, archived)
// @Param limit query int false "Maximum number of announcements to return"
// @Success 200 {object} dto.APIResponse{data=[]models.Announcement} "Announcements retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /announcements [get]
func (c *AnnouncementController) ListAnnouncements(ctx *gin.Context) {
	limit := 0
	if v := ctx.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	announcements, err := c.announcementService.ListAnnouncements(ctx, ctx.Query("status"), limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      announcements,
		Timestamp: time.Now(),
	})
}

// GetAnnouncementByID retrieves an announcement by ID
// @Summary Get announcement by ID
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} dto.APIResponse{data=models.Announcement} "Announcement retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid announcement ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Announcement not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /announcements/{id} [get]
func (c *AnnouncementController) GetAnnouncementByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "announcement")
	if !ok {
		return
	}

	announcement, err := c.announcementService.GetAnnouncementByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      announcement,
		Timestamp: time.Now(),
	})
}

// CreateAnnouncement creates a new announcement
// @Summary Create a new announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAnnouncementRequest true "Announcement content"
// @Success 201 {object} dto.APIResponse{data=models.Announcement} "Announcement created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /announcements [post]
func (c *AnnouncementController) CreateAnnouncement(ctx *gin.Context) {
	var req dto.CreateAnnouncementRequest
	if !bindJSON(ctx, &req, "announcement") {
		return
	}

	userID, exists := middleware.CurrentUserID(ctx)
	if !exists {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	announcement, err := c.announcementService.CreateAnnouncement(ctx, &req, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      announcement,
		Timestamp: time.Now(),
	})
}

// UpdateAnnouncement updates an existing announcement
// @Summary Update an announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Param request body dto.UpdateAnnouncementRequest true "Updated announcement content"
// @Success 200 {object} dto.APIResponse{data=models.Announcement} "Announcement updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Announcement not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /announcements/{id} [put]
func (c *AnnouncementController) UpdateAnnouncement(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "announcement")
	if !ok {
		return
	}

	var req dto.UpdateAnnouncementRequest
	if !bindJSON(ctx, &req, "announcement") {
		return
	}

	announcement, err := c.announcementService.UpdateAnnouncement(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      announcement,
		Timestamp: time.Now(),
	})
}

// ArchiveAnnouncement archives an announcement
// @Summary Archive an announcement
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Announcement archived successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid announcement ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Announcement not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /announcements/{id}/archive [post]
func (c *AnnouncementController) ArchiveAnnouncement(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "announcement")
	if !ok {
		return
	}

	if err := c.announcementService.ArchiveAnnouncement(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Announcement archived"},
		Timestamp: time.Now(),
	})
}

// RestoreAnnouncement returns an archived announcement to the active listing
// @Summary Restore an archived announcement
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Announcement restored successfully"
// @Failure 400 {object} dto.ErrorResponse "Announcement is not archived"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Announcement not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /announcements/{id}/restore [post]
func (c *AnnouncementController) RestoreAnnouncement(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "announcement")
	if !ok {
		return
	}

	if err := c.announcementService.RestoreAnnouncement(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Announcement restored"},
		Timestamp: time.Now(),
	})
}

// DeleteAnnouncement soft-deletes an announcement
// @Summary Delete an announcement
// @Description Soft-deletes an announcement; it disappears from every listing but the row is retained
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 204 "Announcement deleted successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid announcement ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Announcement not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /announcements/{id} [delete]
func (c *AnnouncementController) DeleteAnnouncement(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "announcement")
	if !ok {
		return
	}

	if err := c.announcementService.DeleteAnnouncement(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
