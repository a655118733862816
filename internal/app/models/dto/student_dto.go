package dto

// CreateStudentRequest represents a new student record
type CreateStudentRequest struct {
	StudentID    string `json:"studentId" binding:"required"`
	FirstName    string `json:"firstName" binding:"required"`
	MiddleName   string `json:"middleName"`
	LastName     string `json:"lastName" binding:"required"`
	Email        string `json:"email"`
	DepartmentID int64  `json:"departmentId" binding:"required"`
	SectionID    int64  `json:"sectionId" binding:"required"`
	YearLevel    int    `json:"yearLevel" binding:"required,min=1,max=6"`
}

// UpdateStudentRequest represents a student update; the student ID itself is
// immutable once assigned.
type UpdateStudentRequest struct {
	FirstName    string `json:"firstName" binding:"required"`
	MiddleName   string `json:"middleName"`
	LastName     string `json:"lastName" binding:"required"`
	Email        string `json:"email"`
	DepartmentID int64  `json:"departmentId" binding:"required"`
	SectionID    int64  `json:"sectionId" binding:"required"`
	YearLevel    int    `json:"yearLevel" binding:"required,min=1,max=6"`
	Status       string `json:"status" binding:"required"`
}

// StudentListQuery captures list filters parsed from query parameters
type StudentListQuery struct {
	Status       string
	DepartmentID int64
	SectionID    int64
	Search       string
	Page         int
	Size         int
}

// ImportRowError describes why a single import row was skipped
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult accumulates the outcome of a bulk import; partial imports are
// expected and reported rather than rolled back.
type ImportResult struct {
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}
