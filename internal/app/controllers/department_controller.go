package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/app/services"
	"github.com/osasdev/osas/internal/middleware"
)

// DepartmentController handles department operations
type DepartmentController struct {
	departmentService *services.DepartmentService
}

// NewDepartmentController creates a new DepartmentController
func NewDepartmentController(departmentService *services.DepartmentService) *DepartmentController {
	return &DepartmentController{
		departmentService: departmentService,
	}
}

// ListDepartments lists departments
// @Summary List departments
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status" Enums(active, archived)
// @Success 200 {object} dto.APIResponse{data=[]models.Department} "Departments retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /departments [get]
func (c *DepartmentController) ListDepartments(ctx *gin.Context) {
	departments, err := c.departmentService.ListDepartments(ctx, ctx.Query("status"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      departments,
		Timestamp: time.Now(),
	})
}

// GetDepartmentByID retrieves a department by ID
// @Summary Get department by ID
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Success 200 {object} dto.APIResponse{data=models.Department} "Department retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid department ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /departments/{id} [get]
func (c *DepartmentController) GetDepartmentByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "department")
	if !ok {
		return
	}

	department, err := c.departmentService.GetDepartmentByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      department,
		Timestamp: time.Now(),
	})
}

// CreateDepartment creates a new department
// @Summary Create a new department
// @Tags departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateDepartmentRequest true "Department information"
// @Success 201 {object} dto.APIResponse{data=models.Department} "Department created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Department code already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /departments [post]
func (c *DepartmentController) CreateDepartment(ctx *gin.Context) {
	var req dto.CreateDepartmentRequest
	if !bindJSON(ctx, &req, "department") {
		return
	}

	department, err := c.departmentService.CreateDepartment(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      department,
		Timestamp: time.Now(),
	})
}

// UpdateDepartment updates an existing department
// @Summary Update a department
// @Tags departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Param request body dto.UpdateDepartmentRequest true "Updated department information"
// @Success 200 {object} dto.APIResponse{data=models.Department} "Department updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Failure 409 {object} dto.ErrorResponse "Department code already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /departments/{id} [put]
func (c *DepartmentController) UpdateDepartment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "department")
	if !ok {
		return
	}

	var req dto.UpdateDepartmentRequest
	if !bindJSON(ctx, &req, "department") {
		return
	}

	department, err := c.departmentService.UpdateDepartment(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      department,
		Timestamp: time.Now(),
	})
}

// ArchiveDepartment archives a department
// @Summary Archive a department
// @Description Archives a department; departments with enrolled students cannot be archived
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Department archived successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid department ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Failure 409 {object} dto.ErrorResponse "Department has enrolled students"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /departments/{id}/archive [post]
func (c *DepartmentController) ArchiveDepartment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "department")
	if !ok {
		return
	}

	if err := c.departmentService.ArchiveDepartment(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Department archived"},
		Timestamp: time.Now(),
	})
}

// RestoreDepartment restores an archived department
// @Summary Restore an archived department
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Department restored successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid department ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /departments/{id}/restore [post]
func (c *DepartmentController) RestoreDepartment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "department")
	if !ok {
		return
	}

	if err := c.departmentService.RestoreDepartment(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Department restored"},
		Timestamp: time.Now(),
	})
}
