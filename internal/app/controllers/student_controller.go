package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/app/services"
	"github.com/osasdev/osas/internal/middleware"
	"github.com/osasdev/osas/internal/pkg/helpers"
)

// StudentController handles student record operations
type StudentController struct {
	studentService *services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService *services.StudentService) *StudentController {
	return &StudentController{
		studentService: studentService,
	}
}

// ListStudents lists students with filters and pagination
// @Summary List students
// @Description Retrieves students filtered by status, department, section or free-text search
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status" Enums(active, inactive, graduating, archived)
// @Param departmentId query int false "Filter by department ID"
// @Param sectionId query int false "Filter by section ID"
// @Param search query string false "Search in name, student ID and email"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse} "Students retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	q := dto.StudentListQuery{
		Status: ctx.Query("status"),
		Search: ctx.Query("search"),
		Page:   page,
		Size:   size,
	}
	if v := ctx.Query("departmentId"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			q.DepartmentID = id
		}
	}
	if v := ctx.Query("sectionId"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			q.SectionID = id
		}
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	students, total, err := c.studentService.ListStudents(ctx, q, offset, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.PaginatedResponse{
			Items:      students,
			Pagination: helpers.NewPaginationInfo(total, page, size),
		},
		Timestamp: time.Now(),
	})
}

// GetStudentByID retrieves a student by database ID
// @Summary Get student by ID
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student database ID"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Student retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id} [get]
func (c *StudentController) GetStudentByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "student")
	if !ok {
		return
	}

	student, err := c.studentService.GetStudentByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      student,
		Timestamp: time.Now(),
	})
}

// GetStudentByStudentID retrieves a student by their assigned identifier
// @Summary Get student by student ID
// @Description Retrieves a student by their assigned identifier (e.g. S001)
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Assigned student identifier"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Student retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid student identifier"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/by-student-id/{studentId} [get]
func (c *StudentController) GetStudentByStudentID(ctx *gin.Context) {
	student, err := c.studentService.GetStudentByStudentID(ctx, ctx.Param("studentId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      student,
		Timestamp: time.Now(),
	})
}

// GetStudentViolationLevel returns the student's violation counter state
// @Summary Get student violation level
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Assigned student identifier"
// @Success 200 {object} dto.APIResponse{data=models.StudentViolationLevel} "Violation level retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid student identifier"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/by-student-id/{studentId}/violation-level [get]
func (c *StudentController) GetStudentViolationLevel(ctx *gin.Context) {
	level, err := c.studentService.GetViolationLevel(ctx, ctx.Param("studentId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      level,
		Timestamp: time.Now(),
	})
}

// CreateStudent records a new student
// @Summary Create a new student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStudentRequest true "Student information"
// @Success 201 {object} dto.APIResponse{data=models.Student} "Student created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Department or section not found"
// @Failure 409 {object} dto.ErrorResponse "Student ID or email already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if !bindJSON(ctx, &req, "student") {
		return
	}

	student, err := c.studentService.CreateStudent(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      student,
		Timestamp: time.Now(),
	})
}

// UpdateStudent updates an existing student
// @Summary Update a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student database ID"
// @Param request body dto.UpdateStudentRequest true "Updated student information"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Student updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "student")
	if !ok {
		return
	}

	var req dto.UpdateStudentRequest
	if !bindJSON(ctx, &req, "student") {
		return
	}

	student, err := c.studentService.UpdateStudent(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      student,
		Timestamp: time.Now(),
	})
}

// ArchiveStudent archives a student record
// @Summary Archive a student
// @Description Archives a student record; their violation history is retained
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student database ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Student archived successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id}/archive [post]
func (c *StudentController) ArchiveStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "student")
	if !ok {
		return
	}

	if err := c.studentService.ArchiveStudent(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Student archived"},
		Timestamp: time.Now(),
	})
}

// RestoreStudent restores an archived student
// @Summary Restore an archived student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student database ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Student restored successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID or student not archived"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id}/restore [post]
func (c *StudentController) RestoreStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "student")
	if !ok {
		return
	}

	if err := c.studentService.RestoreStudent(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Student restored"},
		Timestamp: time.Now(),
	})
}

// ImportStudents bulk-imports students from CSV or JSON
// @Summary Import students
// @Description Bulk-imports students from the request body. Content-Type selects the format: text/csv or application/json. Rows are imported independently; failures are reported per row.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ImportResult} "Import completed"
// @Failure 400 {object} dto.ErrorResponse "Malformed import payload"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/import [post]
func (c *StudentController) ImportStudents(ctx *gin.Context) {
	var (
		result *dto.ImportResult
		err    error
	)

	contentType := ctx.ContentType()
	switch {
	case strings.Contains(contentType, "csv"):
		result, err = c.studentService.ImportCSV(ctx, ctx.Request.Body)
	default:
		result, err = c.studentService.ImportJSON(ctx, ctx.Request.Body)
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      result,
		Timestamp: time.Now(),
	})
}
