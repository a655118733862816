package models

import (
	"fmt"
	"time"
)

// ViolationStatus is the stored lifecycle state of a single violation.
// It advances permitted -> warning -> disciplinary; resolved is a terminal
// state reachable from any prior state by explicit admin action. This is
// deliberately distinct from SeverityRank, which is derived only during
// report aggregation and can diverge from the stored status.
type ViolationStatus string

const (
	ViolationPermitted    ViolationStatus = "permitted"
	ViolationWarning      ViolationStatus = "warning"
	ViolationDisciplinary ViolationStatus = "disciplinary"
	ViolationResolved     ViolationStatus = "resolved"
)

// IsValid reports whether the status is one of the known violation statuses.
func (s ViolationStatus) IsValid() bool {
	switch s {
	case ViolationPermitted, ViolationWarning, ViolationDisciplinary, ViolationResolved:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status may change to next.
func (s ViolationStatus) CanTransitionTo(next ViolationStatus) bool {
	if s == ViolationResolved {
		return false
	}
	if next == ViolationResolved {
		return true
	}
	switch s {
	case ViolationPermitted:
		return next == ViolationWarning
	case ViolationWarning:
		return next == ViolationDisciplinary
	}
	return false
}

// SeverityRank is the integer severity ordering used only inside report
// aggregation (disciplinary=3 > warning=2 > permitted=1).
type SeverityRank int

const (
	RankPermitted    SeverityRank = 1
	RankWarning      SeverityRank = 2
	RankDisciplinary SeverityRank = 3
)

// Status maps a maximum severity rank back to a status string using the
// fixed report thresholds.
func (r SeverityRank) Status() ViolationStatus {
	switch {
	case r >= RankDisciplinary:
		return ViolationDisciplinary
	case r >= RankWarning:
		return ViolationWarning
	default:
		return ViolationPermitted
	}
}

// ViolationType defines a category of violation (e.g. improper uniform)
type ViolationType struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
}

// Violation type names used by the report aggregation buckets.
const (
	TypeImproperUniform  = "improper_uniform"
	TypeImproperFootwear = "improper_footwear"
	TypeNoID             = "no_id"
)

// ViolationLevel defines a severity level row with its aggregation rank
type ViolationLevel struct {
	ID   int64        `json:"id" db:"id"`
	Name string       `json:"name" db:"name"`
	Rank SeverityRank `json:"rank" db:"severity_rank"`
}

// Violation defines the violation model based on the 'violations' table.
// Violations are never physically deleted; archival flips IsArchived.
type Violation struct {
	ID            int64           `json:"id" db:"id"`
	CaseID        string          `json:"caseId" db:"case_id"`
	StudentID     StudentID       `json:"studentId" db:"student_id"`
	TypeID        int64           `json:"typeId" db:"type_id"`
	LevelID       int64           `json:"levelId" db:"level_id"`
	ViolationDate time.Time       `json:"violationDate" db:"violation_date"`
	ViolationTime string          `json:"violationTime" db:"violation_time"`
	Location      string          `json:"location" db:"location"`
	ReportedBy    string          `json:"reportedBy" db:"reported_by"`
	Notes         string          `json:"notes,omitempty" db:"notes"`
	Status        ViolationStatus `json:"status" db:"status"`
	IsArchived    bool            `json:"isArchived" db:"is_archived"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Type  *ViolationType  `json:"type,omitempty"`
	Level *ViolationLevel `json:"level,omitempty"`
}

// OccurredAt combines the violation date and wall-clock time into a single
// instant, used for the near-duplicate time window comparison.
func (v *Violation) OccurredAt() (time.Time, error) {
	t, err := ParseViolationTime(v.ViolationTime)
	if err != nil {
		return time.Time{}, err
	}
	d := v.ViolationDate
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, d.Location()), nil
}

// ParseViolationTime parses a HH:MM or HH:MM:SS wall-clock time string.
func ParseViolationTime(s string) (time.Time, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid violation time %q", s)
}

// FormatCaseID renders a case identifier from a year and a 1-based sequence.
func FormatCaseID(year, seq int) string {
	return fmt.Sprintf("VIOL-%d-%03d", year, seq)
}

// MonthlyReset is the idempotency checkpoint for the archival routine: one
// row per YYYY-MM period, claimed transactionally so the reset runs at most
// once per month.
type MonthlyReset struct {
	ID            int64     `json:"id" db:"id"`
	Period        string    `json:"period" db:"period"`
	ArchivedCount int       `json:"archivedCount" db:"archived_count"`
	ResetCount    int       `json:"resetCount" db:"reset_count"`
	RanAt         time.Time `json:"ranAt" db:"ran_at"`
}
