package models

import "time"

// Report is a derived, denormalized per-student rollup of violation counts.
// It is regenerated (upserted) on demand and stale between regenerations.
type Report struct {
	ID              int64           `json:"id" db:"id"`
	ReportID        string          `json:"reportId" db:"report_id"`
	StudentPK       int64           `json:"-" db:"student_pk"`
	StudentID       StudentID       `json:"studentId" db:"student_id"`
	StudentName     string          `json:"studentName" db:"student_name"`
	UniformCount    int             `json:"uniformCount" db:"uniform_count"`
	FootwearCount   int             `json:"footwearCount" db:"footwear_count"`
	NoIDCount       int             `json:"noIdCount" db:"no_id_count"`
	TotalViolations int             `json:"totalViolations" db:"total_violations"`
	Status          ViolationStatus `json:"status" db:"status"`
	PeriodStart     *time.Time      `json:"periodStart,omitempty" db:"period_start"`
	PeriodEnd       *time.Time      `json:"periodEnd,omitempty" db:"period_end"`
	GeneratedAt     time.Time       `json:"generatedAt" db:"generated_at"`

	// Children (populated when needed)
	Violations      []*ReportViolation      `json:"violations,omitempty"`
	Recommendations []*ReportRecommendation `json:"recommendations,omitempty"`
}

// ReportViolation is a copied violation detail row attached to a report.
type ReportViolation struct {
	ID            int64     `json:"id" db:"id"`
	ReportID      string    `json:"reportId" db:"report_id"`
	ViolationID   int64     `json:"violationId" db:"violation_id"`
	CaseID        string    `json:"caseId" db:"case_id"`
	TypeName      string    `json:"typeName" db:"type_name"`
	LevelName     string    `json:"levelName" db:"level_name"`
	ViolationDate time.Time `json:"violationDate" db:"violation_date"`
	Location      string    `json:"location" db:"location"`
}

// ReportRecommendation is generated advisory text attached to a report.
// Rows are deleted and reinserted unconditionally on every generation pass.
type ReportRecommendation struct {
	ID       int64  `json:"id" db:"id"`
	ReportID string `json:"reportId" db:"report_id"`
	Priority int    `json:"priority" db:"priority"`
	Text     string `json:"text" db:"text"`
}

// GenerationResult reports how many rollup rows a generation pass produced.
type GenerationResult struct {
	Generated int `json:"generated"`
	Updated   int `json:"updated"`
	Total     int `json:"total"`
}
