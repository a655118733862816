package dto

// CreateDepartmentRequest represents a new department
type CreateDepartmentRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required"`
}

// UpdateDepartmentRequest represents a department update
type UpdateDepartmentRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required"`
}

// CreateSectionRequest represents a new section within a department
type CreateSectionRequest struct {
	DepartmentID int64  `json:"departmentId" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Code         string `json:"code" binding:"required"`
	YearLevel    int    `json:"yearLevel" binding:"required,min=1,max=6"`
}

// UpdateSectionRequest represents a section update
type UpdateSectionRequest struct {
	DepartmentID int64  `json:"departmentId" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Code         string `json:"code" binding:"required"`
	YearLevel    int    `json:"yearLevel" binding:"required,min=1,max=6"`
}
