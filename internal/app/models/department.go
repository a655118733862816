package models

import "time"

// Department defines the department model based on the 'departments' table
type Department struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Section defines the section model based on the 'sections' table
type Section struct {
	ID           int64     `json:"id" db:"id"`
	DepartmentID int64     `json:"departmentId" db:"department_id"`
	Name         string    `json:"name" db:"name"`
	Code         string    `json:"code" db:"code"`
	YearLevel    int       `json:"yearLevel" db:"year_level"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`

	// Relation (populated when needed)
	Department *Department `json:"department,omitempty"`
}

// Soft entity states shared by departments, sections and similar records.
const (
	EntityActive   = "active"
	EntityArchived = "archived"
)
