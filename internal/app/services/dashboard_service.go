package services

import (
	"context"
	"time"

	"github.com/osasdev/osas/internal/app/models"
	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/app/repositories"
	"github.com/osasdev/osas/internal/pkg/helpers"
)

const dashboardAnnouncementLimit = 5

// DashboardService assembles the landing page counters
type DashboardService struct {
	studentRepo      *repositories.StudentRepository
	violationRepo    *repositories.ViolationRepository
	announcementRepo *repositories.AnnouncementRepository
	now              func() time.Time
}

// NewDashboardService creates a new dashboard service instance
func NewDashboardService(
	studentRepo *repositories.StudentRepository,
	violationRepo *repositories.ViolationRepository,
	announcementRepo *repositories.AnnouncementRepository,
) *DashboardService {
	return &DashboardService{
		studentRepo:      studentRepo,
		violationRepo:    violationRepo,
		announcementRepo: announcementRepo,
		now:              time.Now,
	}
}

// GetDashboard collects the widget counters in one response
func (s *DashboardService) GetDashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	studentCounts, err := s.studentRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	var totalStudents int64
	for _, c := range studentCounts {
		totalStudents += c
	}

	violationsThisMonth, err := s.violationRepo.CountSince(ctx, helpers.FirstOfMonth(s.now()))
	if err != nil {
		return nil, err
	}

	violationsByStatus, err := s.violationRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	announcements, err := s.announcementRepo.List(ctx, models.EntityActive, dashboardAnnouncementLimit)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardResponse{
		TotalStudents:       totalStudents,
		ActiveStudents:      studentCounts[string(models.StudentActive)],
		ViolationsThisMonth: violationsThisMonth,
		ViolationsByStatus:  violationsByStatus,
		LatestAnnouncements: announcements,
	}, nil
}
