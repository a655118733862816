package dto

import "time"

// CreateViolationRequest represents a manual violation submission
type CreateViolationRequest struct {
	StudentID     string `json:"studentId" binding:"required"`
	TypeID        int64  `json:"typeId" binding:"required"`
	LevelID       int64  `json:"levelId" binding:"required"`
	ViolationDate string `json:"violationDate" binding:"required"` // YYYY-MM-DD
	ViolationTime string `json:"violationTime" binding:"required"` // HH:MM or HH:MM:SS
	Location      string `json:"location" binding:"required"`
	ReportedBy    string `json:"reportedBy" binding:"required"`
	Notes         string `json:"notes"`
}

// UpdateViolationStatusRequest represents an explicit status change
type UpdateViolationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ViolationListQuery captures list filters parsed from query parameters
type ViolationListQuery struct {
	StudentID string
	Status    string
	Archived  *bool
	Search    string
	Page      int
	Size      int
}

// ArchiveRunResponse reports the outcome of a monthly archive/reset pass
type ArchiveRunResponse struct {
	Ran           bool      `json:"ran"`
	Period        string    `json:"period"`
	ArchivedCount int       `json:"archivedCount"`
	ResetCount    int       `json:"resetCount"`
	RanAt         time.Time `json:"ranAt,omitempty"`
}

// DuplicateCheckResponse reports the result of a duplicate submission probe
type DuplicateCheckResponse struct {
	Duplicate   bool  `json:"duplicate"`
	ExistingID  int64 `json:"existingId,omitempty"`
	WithinRange bool  `json:"withinRange,omitempty"`
}
