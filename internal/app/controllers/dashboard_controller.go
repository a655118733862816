package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/app/services"
	"github.com/osasdev/osas/internal/middleware"
)

// DashboardController serves the landing page counters
type DashboardController struct {
	dashboardService *services.DashboardService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService *services.DashboardService) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
	}
}

// GetDashboard returns the dashboard counters
// @Summary Get dashboard counters
// @Description Returns student totals, this month's violation counts by status and the latest announcements
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DashboardResponse} "Dashboard retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	dashboard, err := c.dashboardService.GetDashboard(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dashboard,
		Timestamp: time.Now(),
	})
}
