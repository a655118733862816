package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/osasdev/osas/internal/app/models"
	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/pkg/apperrors"
	"github.com/osasdev/osas/internal/pkg/validation"
)

// importRow is the JSON shape accepted by the bulk import endpoint. CSV rows
// are mapped onto the same struct by column position.
type importRow struct {
	StudentID    string `json:"studentId"`
	FirstName    string `json:"firstName"`
	MiddleName   string `json:"middleName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	DepartmentID int64  `json:"departmentId"`
	SectionID    int64  `json:"sectionId"`
	YearLevel    int    `json:"yearLevel"`
}

// StudentStore is the data access surface student management needs.
// Implemented by repositories.StudentRepository.
type StudentStore interface {
	List(ctx context.Context, q dto.StudentListQuery, offset uint64, limit int) ([]*models.Student, error)
	Count(ctx context.Context, q dto.StudentListQuery) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByStudentID(ctx context.Context, studentID models.StudentID) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	SetStatus(ctx context.Context, id int64, status models.StudentStatus) error
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	GetViolationLevel(ctx context.Context, studentID models.StudentID) (*models.StudentViolationLevel, error)
}

// DepartmentLookup resolves department references during student writes
type DepartmentLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Department, error)
}

// SectionLookup resolves section references during student writes
type SectionLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Section, error)
}

// StudentService handles student record management and bulk imports.
type StudentService struct {
	studentRepo    StudentStore
	departmentRepo DepartmentLookup
	sectionRepo    SectionLookup
	logger         zerolog.Logger
}

// NewStudentService creates a new student service instance
func NewStudentService(
	studentRepo StudentStore,
	departmentRepo DepartmentLookup,
	sectionRepo SectionLookup,
	logger zerolog.Logger,
) *StudentService {
	return &StudentService{
		studentRepo:    studentRepo,
		departmentRepo: departmentRepo,
		sectionRepo:    sectionRepo,
		logger:         logger,
	}
}

// ListStudents retrieves students with filters and pagination
func (s *StudentService) ListStudents(ctx context.Context, q dto.StudentListQuery, offset uint64, limit int) ([]*models.Student, int64, error) {
	students, err := s.studentRepo.List(ctx, q, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.studentRepo.Count(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// GetStudentByID retrieves a single student by database ID
func (s *StudentService) GetStudentByID(ctx context.Context, id int64) (*models.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// GetStudentByStudentID retrieves a single student by their assigned identifier
func (s *StudentService) GetStudentByStudentID(ctx context.Context, raw string) (*models.Student, error) {
	studentID, err := models.NewStudentID(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidStudentID, err)
	}
	return s.studentRepo.GetByStudentID(ctx, studentID)
}

// validateReferences checks the department/section pair exists and is linked
func (s *StudentService) validateReferences(ctx context.Context, departmentID, sectionID int64) error {
	if _, err := s.departmentRepo.GetByID(ctx, departmentID); err != nil {
		return err
	}
	section, err := s.sectionRepo.GetByID(ctx, sectionID)
	if err != nil {
		return err
	}
	if section.DepartmentID != departmentID {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed,
			fmt.Sprintf("section %d does not belong to department %d", sectionID, departmentID))
	}
	return nil
}

// CreateStudent validates and records a new student
func (s *StudentService) CreateStudent(ctx context.Context, req *dto.CreateStudentRequest) (*models.Student, error) {
	studentID, err := models.NewStudentID(req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidStudentID, err)
	}

	if req.Email != "" && !validation.IsValidEmail(req.Email) {
		return nil, fmt.Errorf("%w: invalid email address", apperrors.ErrValidationFailed)
	}

	if err := s.validateReferences(ctx, req.DepartmentID, req.SectionID); err != nil {
		return nil, err
	}

	if req.Email != "" {
		exists, err := s.studentRepo.EmailExists(ctx, req.Email, 0)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.ErrEmailAlreadyExists
		}
	}

	student := &models.Student{
		StudentID:    studentID,
		FirstName:    strings.TrimSpace(req.FirstName),
		MiddleName:   strings.TrimSpace(req.MiddleName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.TrimSpace(req.Email),
		DepartmentID: req.DepartmentID,
		SectionID:    req.SectionID,
		YearLevel:    req.YearLevel,
		Status:       models.StudentActive,
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}

	return student, nil
}

// UpdateStudent applies changes to an existing student record
func (s *StudentService) UpdateStudent(ctx context.Context, id int64, req *dto.UpdateStudentRequest) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := models.StudentStatus(req.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown student status %q", apperrors.ErrValidationFailed, req.Status)
	}

	if req.Email != "" && !validation.IsValidEmail(req.Email) {
		return nil, fmt.Errorf("%w: invalid email address", apperrors.ErrValidationFailed)
	}

	if err := s.validateReferences(ctx, req.DepartmentID, req.SectionID); err != nil {
		return nil, err
	}

	if req.Email != "" {
		exists, err := s.studentRepo.EmailExists(ctx, req.Email, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.ErrEmailAlreadyExists
		}
	}

	student.FirstName = strings.TrimSpace(req.FirstName)
	student.MiddleName = strings.TrimSpace(req.MiddleName)
	student.LastName = strings.TrimSpace(req.LastName)
	student.Email = strings.TrimSpace(req.Email)
	student.DepartmentID = req.DepartmentID
	student.SectionID = req.SectionID
	student.YearLevel = req.YearLevel
	student.Status = status

	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, err
	}

	return student, nil
}

// ArchiveStudent soft-archives a student record. Their violation history is
// retained.
func (s *StudentService) ArchiveStudent(ctx context.Context, id int64) error {
	if _, err := s.studentRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.studentRepo.SetStatus(ctx, id, models.StudentArchived)
}

// RestoreStudent returns an archived student to active status
func (s *StudentService) RestoreStudent(ctx context.Context, id int64) error {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if student.Status != models.StudentArchived {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed,
			fmt.Sprintf("student %s is not archived", student.StudentID))
	}
	return s.studentRepo.SetStatus(ctx, id, models.StudentActive)
}

// GetViolationLevel returns the student's current violation counter state
func (s *StudentService) GetViolationLevel(ctx context.Context, raw string) (*models.StudentViolationLevel, error) {
	studentID, err := models.NewStudentID(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidStudentID, err)
	}
	return s.studentRepo.GetViolationLevel(ctx, studentID)
}

// ImportCSV bulk-imports students from a CSV stream with columns
// student_id,first_name,middle_name,last_name,email,department_id,section_id,year_level.
// A header row is detected and skipped. Each row is imported independently;
// failures are collected per row, never rolled back.
func (s *StudentService) ImportCSV(ctx context.Context, r io.Reader) (*dto.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	result := &dto.ImportResult{Errors: []dto.ImportRowError{}}
	rowNum := 0

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, dto.ImportRowError{Row: rowNum, Message: err.Error()})
			continue
		}
		if rowNum == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "student_id") {
			// Header row.
			rowNum--
			continue
		}

		row, err := parseCSVRow(record)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, dto.ImportRowError{Row: rowNum, Message: err.Error()})
			continue
		}

		s.importOne(ctx, row, rowNum, result)
	}

	s.logger.Info().Int("imported", result.Imported).Int("skipped", result.Skipped).Msg("CSV import completed")
	return result, nil
}

// ImportJSON bulk-imports students from a JSON array with the same row
// semantics as ImportCSV.
func (s *StudentService) ImportJSON(ctx context.Context, r io.Reader) (*dto.ImportResult, error) {
	var rows []importRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON import payload", apperrors.ErrValidationFailed)
	}

	result := &dto.ImportResult{Errors: []dto.ImportRowError{}}
	for i, row := range rows {
		s.importOne(ctx, &row, i+1, result)
	}

	s.logger.Info().Int("imported", result.Imported).Int("skipped", result.Skipped).Msg("JSON import completed")
	return result, nil
}

// importOne attempts a single row and records the outcome on result.
func (s *StudentService) importOne(ctx context.Context, row *importRow, rowNum int, result *dto.ImportResult) {
	req := &dto.CreateStudentRequest{
		StudentID:    row.StudentID,
		FirstName:    row.FirstName,
		MiddleName:   row.MiddleName,
		LastName:     row.LastName,
		Email:        row.Email,
		DepartmentID: row.DepartmentID,
		SectionID:    row.SectionID,
		YearLevel:    row.YearLevel,
	}
	if req.YearLevel < 1 || req.YearLevel > 6 {
		result.Skipped++
		result.Errors = append(result.Errors, dto.ImportRowError{Row: rowNum, Message: fmt.Sprintf("year level %d out of range", req.YearLevel)})
		return
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		result.Skipped++
		result.Errors = append(result.Errors, dto.ImportRowError{Row: rowNum, Message: "first and last name are required"})
		return
	}

	if _, err := s.CreateStudent(ctx, req); err != nil {
		result.Skipped++
		result.Errors = append(result.Errors, dto.ImportRowError{Row: rowNum, Message: importErrorMessage(err)})
		return
	}
	result.Imported++
}

// importErrorMessage flattens service errors into a short per-row message
func importErrorMessage(err error) string {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) {
		return custom.Message
	}
	switch {
	case errors.Is(err, apperrors.ErrStudentIDAlreadyExists):
		return "student ID already exists"
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		return "email already exists"
	case errors.Is(err, apperrors.ErrDepartmentNotFound):
		return "department not found"
	case errors.Is(err, apperrors.ErrSectionNotFound):
		return "section not found"
	}
	return err.Error()
}

// parseCSVRow maps a positional CSV record onto an import row
func parseCSVRow(record []string) (*importRow, error) {
	if len(record) < 8 {
		return nil, fmt.Errorf("expected 8 columns, got %d", len(record))
	}

	departmentID, err := strconv.ParseInt(strings.TrimSpace(record[5]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid department ID %q", record[5])
	}
	sectionID, err := strconv.ParseInt(strings.TrimSpace(record[6]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid section ID %q", record[6])
	}
	yearLevel, err := strconv.Atoi(strings.TrimSpace(record[7]))
	if err != nil {
		return nil, fmt.Errorf("invalid year level %q", record[7])
	}

	return &importRow{
		StudentID:    strings.TrimSpace(record[0]),
		FirstName:    strings.TrimSpace(record[1]),
		MiddleName:   strings.TrimSpace(record[2]),
		LastName:     strings.TrimSpace(record[3]),
		Email:        strings.TrimSpace(record[4]),
		DepartmentID: departmentID,
		SectionID:    sectionID,
		YearLevel:    yearLevel,
	}, nil
}

// CountByStatus returns student counts grouped by status (for the dashboard)
func (s *StudentService) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return s.studentRepo.CountByStatus(ctx)
}
