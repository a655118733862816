package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/app/services"
	"github.com/osasdev/osas/internal/middleware"
	"github.com/osasdev/osas/internal/pkg/apperrors"
)

// ReportController handles the violation rollup reports
type ReportController struct {
	reportService *services.ReportService
}

// NewReportController creates a new ReportController
func NewReportController(reportService *services.ReportService) *ReportController {
	return &ReportController{
		reportService: reportService,
	}
}

// parsePeriodBound parses an optional YYYY-MM-DD query parameter
func parsePeriodBound(ctx *gin.Context, name string) (*time.Time, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, apperrors.NewBadRequestError(name + " must be a YYYY-MM-DD date")
	}
	return &t, nil
}

// GenerateReports recomputes the per-student rollup reports
// @Summary Generate violation reports
// @Description Recomputes the per-student violation rollup, optionally restricted to a date window
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "Window start (YYYY-MM-DD)"
// @Param endDate query string false "Window end (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=models.GenerationResult} "Reports generated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid date parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reports/generate [post]
func (c *ReportController) GenerateReports(ctx *gin.Context) {
	start, err := parsePeriodBound(ctx, "startDate")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	end, err := parsePeriodBound(ctx, "endDate")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	result, err := c.reportService.GenerateReports(ctx, start, end)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      result,
		Timestamp: time.Now(),
	})
}

// ListReports lists all generated reports
// @Summary List reports
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Report} "Reports retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reports [get]
func (c *ReportController) ListReports(ctx *gin.Context) {
	reports, err := c.reportService.ListReports(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      reports,
		Timestamp: time.Now(),
	})
}

// GetReport retrieves a single report with details
// @Summary Get report by report ID
// @Description Retrieves a report including its violation details and recommendations
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param reportId path string true "Report ID (e.g. R001)"
// @Success 200 {object} dto.APIResponse{data=models.Report} "Report retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid report ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Report not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reports/{reportId} [get]
func (c *ReportController) GetReport(ctx *gin.Context) {
	report, err := c.reportService.GetReport(ctx, ctx.Param("reportId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      report,
		Timestamp: time.Now(),
	})
}
