package models

import (
	"fmt"
	"strings"
	"time"
)

// StudentID is the human-assigned student identifier (e.g. "S001" or
// "2021-00123"). It is the single cross-entity key between students and
// violations; all lookups normalize through NewStudentID so there is exactly
// one equality path.
type StudentID string

// NewStudentID normalizes and validates a raw student identifier.
func NewStudentID(raw string) (StudentID, error) {
	id := strings.ToUpper(strings.TrimSpace(raw))
	if id == "" {
		return "", fmt.Errorf("student ID cannot be empty")
	}
	if len(id) > 20 {
		return "", fmt.Errorf("student ID %q exceeds 20 characters", raw)
	}
	for _, ch := range id {
		if !((ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-') {
			return "", fmt.Errorf("student ID %q contains invalid character %q", raw, ch)
		}
	}
	return StudentID(id), nil
}

// String returns the normalized identifier.
func (s StudentID) String() string {
	return string(s)
}

// Student defines the student model based on the 'students' table
type Student struct {
	ID           int64         `json:"id" db:"id"`
	StudentID    StudentID     `json:"studentId" db:"student_id"`
	FirstName    string        `json:"firstName" db:"first_name"`
	MiddleName   string        `json:"middleName,omitempty" db:"middle_name"`
	LastName     string        `json:"lastName" db:"last_name"`
	Email        string        `json:"email,omitempty" db:"email"`
	DepartmentID int64         `json:"departmentId" db:"department_id"`
	SectionID    int64         `json:"sectionId" db:"section_id"`
	YearLevel    int           `json:"yearLevel" db:"year_level"`
	Status       StudentStatus `json:"status" db:"status"`
	CreatedAt    time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time     `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Department *Department `json:"department,omitempty"`
	Section    *Section    `json:"section,omitempty"`
}

// DisplayName builds a full display name, falling back to "Student {id}"
// when all name fields are empty.
func (s *Student) DisplayName() string {
	name := strings.TrimSpace(strings.Join([]string{s.FirstName, s.MiddleName, s.LastName}, " "))
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return fmt.Sprintf("Student %s", s.StudentID)
	}
	return name
}

// StudentViolationLevel tracks per-student violation counters, reset in bulk
// by the monthly archival routine.
type StudentViolationLevel struct {
	ID              int64     `json:"id" db:"id"`
	StudentID       StudentID `json:"studentId" db:"student_id"`
	CurrentLevel    string    `json:"currentLevel" db:"current_level"`
	PermittedCount  int       `json:"permittedCount" db:"permitted_count"`
	WarningCount    int       `json:"warningCount" db:"warning_count"`
	TotalViolations int       `json:"totalViolations" db:"total_violations"`
	Status          string    `json:"status" db:"status"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// Fresh counter state applied by the monthly reset.
const (
	FreshCurrentLevel  = "permitted1"
	FreshCounterStatus = "active"
)
