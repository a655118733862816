package services

import (
	"context"
	"strings"

	"github.com/osasdev/osas/internal/app/models"
	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/app/repositories"
	"github.com/osasdev/osas/internal/pkg/apperrors"
)

// DepartmentService handles department management
type DepartmentService struct {
	departmentRepo *repositories.DepartmentRepository
}

// NewDepartmentService creates a new department service instance
func NewDepartmentService(departmentRepo *repositories.DepartmentRepository) *DepartmentService {
	return &DepartmentService{departmentRepo: departmentRepo}
}

// ListDepartments returns departments, optionally filtered by status
func (s *DepartmentService) ListDepartments(ctx context.Context, status string) ([]*models.Department, error) {
	return s.departmentRepo.GetAll(ctx, status)
}

// GetDepartmentByID returns a single department
func (s *DepartmentService) GetDepartmentByID(ctx context.Context, id int64) (*models.Department, error) {
	return s.departmentRepo.GetByID(ctx, id)
}

// CreateDepartment validates and records a new department
func (s *DepartmentService) CreateDepartment(ctx context.Context, req *dto.CreateDepartmentRequest) (*models.Department, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))

	exists, err := s.departmentRepo.CodeExists(ctx, code, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrDepartmentAlreadyExists
	}

	department := &models.Department{
		Name:   strings.TrimSpace(req.Name),
		Code:   code,
		Status: models.EntityActive,
	}
	if err := s.departmentRepo.Create(ctx, department); err != nil {
		return nil, err
	}
	return department, nil
}

// UpdateDepartment applies changes to an existing department
func (s *DepartmentService) UpdateDepartment(ctx context.Context, id int64, req *dto.UpdateDepartmentRequest) (*models.Department, error) {
	department, err := s.departmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.departmentRepo.CodeExists(ctx, code, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrDepartmentAlreadyExists
	}

	department.Name = strings.TrimSpace(req.Name)
	department.Code = code
	if err := s.departmentRepo.Update(ctx, department); err != nil {
		return nil, err
	}
	return department, nil
}

// ArchiveDepartment soft-archives a department. Departments with enrolled
// students cannot be archived.
func (s *DepartmentService) ArchiveDepartment(ctx context.Context, id int64) error {
	if _, err := s.departmentRepo.GetByID(ctx, id); err != nil {
		return err
	}
	hasStudents, err := s.departmentRepo.HasStudents(ctx, id)
	if err != nil {
		return err
	}
	if hasStudents {
		return apperrors.ErrDepartmentHasRelations
	}
	return s.departmentRepo.SetStatus(ctx, id, models.EntityArchived)
}

// RestoreDepartment returns an archived department to active status
func (s *DepartmentService) RestoreDepartment(ctx context.Context, id int64) error {
	if _, err := s.departmentRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.departmentRepo.SetStatus(ctx, id, models.EntityActive)
}
