package services

import (
	"context"
	"strings"

	"github.com/osasdev/osas/internal/app/models"
	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/app/repositories"
	"github.com/osasdev/osas/internal/pkg/apperrors"
)

// SectionService handles section management within departments
type SectionService struct {
	sectionRepo    *repositories.SectionRepository
	departmentRepo *repositories.DepartmentRepository
}

// NewSectionService creates a new section service instance
func NewSectionService(sectionRepo *repositories.SectionRepository, departmentRepo *repositories.DepartmentRepository) *SectionService {
	return &SectionService{
		sectionRepo:    sectionRepo,
		departmentRepo: departmentRepo,
	}
}

// ListSections returns sections, optionally filtered by department and status
func (s *SectionService) ListSections(ctx context.Context, departmentID int64, status string) ([]*models.Section, error) {
	return s.sectionRepo.GetAll(ctx, departmentID, status)
}

// GetSectionByID returns a single section
func (s *SectionService) GetSectionByID(ctx context.Context, id int64) (*models.Section, error) {
	return s.sectionRepo.GetByID(ctx, id)
}

// CreateSection validates and records a new section. Codes are unique per
// department, not globally.
func (s *SectionService) CreateSection(ctx context.Context, req *dto.CreateSectionRequest) (*models.Section, error) {
	if _, err := s.departmentRepo.GetByID(ctx, req.DepartmentID); err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.sectionRepo.CodeExists(ctx, req.DepartmentID, code, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrSectionAlreadyExists
	}

	section := &models.Section{
		DepartmentID: req.DepartmentID,
		Name:         strings.TrimSpace(req.Name),
		Code:         code,
		YearLevel:    req.YearLevel,
		Status:       models.EntityActive,
	}
	if err := s.sectionRepo.Create(ctx, section); err != nil {
		return nil, err
	}
	return section, nil
}

// UpdateSection applies changes to an existing section
func (s *SectionService) UpdateSection(ctx context.Context, id int64, req *dto.UpdateSectionRequest) (*models.Section, error) {
	section, err := s.sectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.departmentRepo.GetByID(ctx, req.DepartmentID); err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.sectionRepo.CodeExists(ctx, req.DepartmentID, code, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrSectionAlreadyExists
	}

	section.DepartmentID = req.DepartmentID
	section.Name = strings.TrimSpace(req.Name)
	section.Code = code
	section.YearLevel = req.YearLevel
	if err := s.sectionRepo.Update(ctx, section); err != nil {
		return nil, err
	}
	return section, nil
}

// ArchiveSection soft-archives a section
func (s *SectionService) ArchiveSection(ctx context.Context, id int64) error {
	if _, err := s.sectionRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.sectionRepo.SetStatus(ctx, id, models.EntityArchived)
}

// RestoreSection returns an archived section to active status
func (s *SectionService) RestoreSection(ctx context.Context, id int64) error {
	if _, err := s.sectionRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.sectionRepo.SetStatus(ctx, id, models.EntityActive)
}
