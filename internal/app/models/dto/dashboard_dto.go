package dto

import "github.com/osasdev/osas/internal/app/models"

// DashboardResponse aggregates the widget counters shown on the landing page
type DashboardResponse struct {
	TotalStudents       int64                  `json:"totalStudents"`
	ActiveStudents      int64                  `json:"activeStudents"`
	ViolationsThisMonth int64                  `json:"violationsThisMonth"`
	ViolationsByStatus  map[string]int64       `json:"violationsByStatus"`
	LatestAnnouncements []*models.Announcement `json:"latestAnnouncements"`
}
