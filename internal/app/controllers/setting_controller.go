package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/app/services"
	"github.com/osasdev/osas/internal/middleware"
)

// SettingController handles application settings
type SettingController struct {
	settingService *services.SettingService
}

// NewSettingController creates a new SettingController
func NewSettingController(settingService *services.SettingService) *SettingController {
	return &SettingController{
		settingService: settingService,
	}
}

// ListSettings lists settings
// @Summary List settings
// @Description Retrieves settings; staff callers only see settings flagged public
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Param category query string false "Filter by category"
// @Success 200 {object} dto.APIResponse{data=[]models.Setting} "Settings retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /settings [get]
func (c *SettingController) ListSettings(ctx *gin.Context) {
	publicOnly := true
	if role, exists := ctx.Get(middleware.ContextRole); exists {
		if roleStr, ok := role.(string); ok && roleStr == "admin" {
			publicOnly = false
		}
	}

	settings, err := c.settingService.ListSettings(ctx, ctx.Query("category"), publicOnly)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      settings,
		Timestamp: time.Now(),
	})
}

// GetSetting retrieves a setting by key
// @Summary Get setting by key
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Param key path string true "Setting key"
// @Success 200 {object} dto.APIResponse{data=models.Setting} "Setting retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid setting key"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Setting not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /settings/{key} [get]
func (c *SettingController) GetSetting(ctx *gin.Context) {
	setting, err := c.settingService.GetSetting(ctx, ctx.Param("key"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      setting,
		Timestamp: time.Now(),
	})
}

// UpsertSetting creates or replaces a setting
// @Summary Create or update a setting
// @Description Creates or replaces a setting by key; the value must match the declared type
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpsertSettingRequest true "Setting information"
// @Success 200 {object} dto.APIResponse{data=models.Setting} "Setting saved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or value/type mismatch"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /settings [put]
func (c *SettingController) UpsertSetting(ctx *gin.Context) {
	var req dto.UpsertSettingRequest
	if !bindJSON(ctx, &req, "setting") {
		return
	}

	setting, err := c.settingService.UpsertSetting(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      setting,
		Timestamp: time.Now(),
	})
}
