package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/osasdev/osas/internal/app/models"
	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/db"
	"github.com/osasdev/osas/internal/pkg/apperrors"
	"github.com/osasdev/osas/internal/pkg/dberrors"
	"github.com/osasdev/osas/internal/pkg/helpers"
)

// caseIDMaxAttempts bounds the retry loop when concurrent submissions race
// for the same case-ID sequence number.
const caseIDMaxAttempts = 3

// ViolationStore is the data access surface the violation lifecycle needs.
// Implemented by repositories.ViolationRepository.
type ViolationStore interface {
	CountInYear(ctx context.Context, year int) (int, error)
	Create(ctx context.Context, v *models.Violation) error
	FindExactDuplicate(ctx context.Context, studentID models.StudentID, typeID, levelID int64, date time.Time, timeStr, location string) (int64, bool, error)
	FindWindowCandidates(ctx context.Context, studentID models.StudentID, typeID, levelID int64, date time.Time, location string) ([]*models.Violation, error)
	List(ctx context.Context, q dto.ViolationListQuery, offset uint64, limit int) ([]*models.Violation, error)
	Count(ctx context.Context, q dto.ViolationListQuery) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Violation, error)
	UpdateStatus(ctx context.Context, id int64, status models.ViolationStatus) error
	IncrementCounters(ctx context.Context, studentID models.StudentID, levelName string) error
	GetTypeByID(ctx context.Context, id int64) (*models.ViolationType, error)
	GetLevelByID(ctx context.Context, id int64) (*models.ViolationLevel, error)
	ListTypes(ctx context.Context) ([]*models.ViolationType, error)
	ListLevels(ctx context.Context) ([]*models.ViolationLevel, error)

	ClaimPeriod(ctx context.Context, tx pgx.Tx, period string) (bool, error)
	HasAnyReset(ctx context.Context) (bool, error)
	GetLastReset(ctx context.Context) (*models.MonthlyReset, error)
	ArchiveBefore(ctx context.Context, tx pgx.Tx, cutoff time.Time) (int64, error)
	ResetAllStudentLevels(ctx context.Context, tx pgx.Tx) (int64, error)
	RecordResetCounts(ctx context.Context, tx pgx.Tx, period string, archived, reset int64) error
}

// StudentLookup resolves student identifiers for violation submissions
type StudentLookup interface {
	GetByStudentID(ctx context.Context, studentID models.StudentID) (*models.Student, error)
}

// ViolationService handles the violation lifecycle: creation with duplicate
// protection, status transitions, and the monthly archive/reset.
type ViolationService struct {
	store           ViolationStore
	students        StudentLookup
	tx              db.TxRunner
	duplicateWindow time.Duration
	logger          zerolog.Logger
	now             func() time.Time
}

// NewViolationService creates a new violation service instance
func NewViolationService(store ViolationStore, students StudentLookup, tx db.TxRunner, duplicateWindow time.Duration, logger zerolog.Logger) *ViolationService {
	if duplicateWindow <= 0 {
		duplicateWindow = 5 * time.Minute
	}
	return &ViolationService{
		store:           store,
		students:        students,
		tx:              tx,
		duplicateWindow: duplicateWindow,
		logger:          logger,
		now:             time.Now,
	}
}

// GenerateCaseID derives the next case identifier for the given year from
// the count of violations already created in it. Uniqueness is enforced by
// the case_id index, not by this read.
func (s *ViolationService) GenerateCaseID(ctx context.Context, year int) (string, error) {
	count, err := s.store.CountInYear(ctx, year)
	if err != nil {
		return "", fmt.Errorf("error generating case ID: %w", err)
	}
	return models.FormatCaseID(year, count+1), nil
}

// CheckDuplicateSubmission looks for an exact repeat of the submission
// sextuple among non-archived violations. It returns the existing row's ID
// and true when a duplicate exists.
func (s *ViolationService) CheckDuplicateSubmission(ctx context.Context, studentID models.StudentID, typeID, levelID int64, date time.Time, timeStr, location string) (int64, bool, error) {
	return s.store.FindExactDuplicate(ctx, studentID, typeID, levelID, date, timeStr, location)
}

// CheckDuplicateInTimeWindow extends the exact check with a tolerance window
// so near-simultaneous reports with slightly different manually entered
// times are still caught.
func (s *ViolationService) CheckDuplicateInTimeWindow(ctx context.Context, studentID models.StudentID, typeID, levelID int64, date time.Time, timeStr, location string) (int64, bool, error) {
	submitted, err := models.ParseViolationTime(timeStr)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", apperrors.ErrValidationFailed, err)
	}

	candidates, err := s.store.FindWindowCandidates(ctx, studentID, typeID, levelID, date, location)
	if err != nil {
		return 0, false, err
	}

	for _, c := range candidates {
		existing, err := models.ParseViolationTime(c.ViolationTime)
		if err != nil {
			// A malformed stored time cannot match; skip it.
			continue
		}
		diff := submitted.Sub(existing)
		if diff < 0 {
			diff = -diff
		}
		if diff <= s.duplicateWindow {
			return c.ID, true, nil
		}
	}

	return 0, false, nil
}

// initialStatus maps a severity level name onto the violation's starting status
func initialStatus(levelName string) models.ViolationStatus {
	switch levelName {
	case "warning":
		return models.ViolationWarning
	case "disciplinary":
		return models.ViolationDisciplinary
	default:
		return models.ViolationPermitted
	}
}

// CreateViolation validates and records a manual violation submission.
// Duplicate submissions are rejected with the existing row's ID attached.
// The monthly archive check runs first so a submission landing in a new
// month rolls the previous month over before the new row is written.
func (s *ViolationService) CreateViolation(ctx context.Context, req *dto.CreateViolationRequest) (*models.Violation, error) {
	if _, err := s.CheckAndTriggerAutoArchive(ctx); err != nil {
		// Archiving failures must not block submissions; the next
		// request retries the same period claim.
		s.logger.Error().Err(err).Msg("Monthly archive check failed")
	}

	studentID, err := models.NewStudentID(req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidStudentID, err)
	}

	if _, err := s.students.GetByStudentID(ctx, studentID); err != nil {
		return nil, err
	}

	level, err := s.store.GetLevelByID(ctx, req.LevelID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetTypeByID(ctx, req.TypeID); err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", req.ViolationDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid violation date %q", apperrors.ErrValidationFailed, req.ViolationDate)
	}
	if _, err := models.ParseViolationTime(req.ViolationTime); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidationFailed, err)
	}

	if existingID, dup, err := s.CheckDuplicateSubmission(ctx, studentID, req.TypeID, req.LevelID, date, req.ViolationTime, req.Location); err != nil {
		return nil, err
	} else if dup {
		return nil, apperrors.NewCustomError(apperrors.ErrDuplicateViolation,
			fmt.Sprintf("an identical violation report already exists (case #%d)", existingID)).
			WithDetails(map[string]interface{}{"existingId": existingID})
	}

	if existingID, dup, err := s.CheckDuplicateInTimeWindow(ctx, studentID, req.TypeID, req.LevelID, date, req.ViolationTime, req.Location); err != nil {
		return nil, err
	} else if dup {
		return nil, apperrors.NewCustomError(apperrors.ErrDuplicateViolation,
			fmt.Sprintf("a matching violation was reported within the last %s (case #%d)", s.duplicateWindow, existingID)).
			WithDetails(map[string]interface{}{"existingId": existingID})
	}

	violation := &models.Violation{
		StudentID:     studentID,
		TypeID:        req.TypeID,
		LevelID:       req.LevelID,
		ViolationDate: date,
		ViolationTime: req.ViolationTime,
		Location:      req.Location,
		ReportedBy:    req.ReportedBy,
		Notes:         req.Notes,
		Status:        initialStatus(level.Name),
	}

	// Case IDs sequence within the calendar year the row is created in,
	// matching CountInYear's created_at filter even for back-dated reports.
	year := s.now().Year()
	count, err := s.store.CountInYear(ctx, year)
	if err != nil {
		return nil, err
	}

	// The count-then-insert sequence can race with concurrent submissions;
	// the unique index on case_id turns the race into a retry.
	for attempt := 0; attempt < caseIDMaxAttempts; attempt++ {
		violation.CaseID = models.FormatCaseID(year, count+1+attempt)
		err = s.store.Create(ctx, violation)
		if err == nil {
			break
		}
		if !dberrors.IsDuplicateConstraintError(err, "violations_case_id_key") {
			return nil, err
		}
		s.logger.Warn().Str("caseId", violation.CaseID).Msg("Case ID collision, retrying with next sequence")
	}
	if err != nil {
		return nil, fmt.Errorf("error creating violation after %d case ID attempts: %w", caseIDMaxAttempts, err)
	}

	if err := s.store.IncrementCounters(ctx, studentID, level.Name); err != nil {
		// The violation row exists; counter drift is corrected by the
		// monthly reset. Log and carry on.
		s.logger.Error().Err(err).Str("studentId", studentID.String()).Msg("Failed to increment violation counters")
	}

	violation.Level = level
	return violation, nil
}

// ListViolations retrieves violations with filters and pagination
func (s *ViolationService) ListViolations(ctx context.Context, q dto.ViolationListQuery, offset uint64, limit int) ([]*models.Violation, int64, error) {
	violations, err := s.store.List(ctx, q, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.Count(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return violations, total, nil
}

// GetViolationByID retrieves a single violation
func (s *ViolationService) GetViolationByID(ctx context.Context, id int64) (*models.Violation, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid violation ID", apperrors.ErrValidationFailed)
	}
	return s.store.GetByID(ctx, id)
}

// UpdateStatus applies an explicit status change, enforcing the
// permitted -> warning -> disciplinary progression with resolved reachable
// from any prior state.
func (s *ViolationService) UpdateStatus(ctx context.Context, id int64, next models.ViolationStatus) (*models.Violation, error) {
	if !next.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidationFailed, next)
	}

	violation, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !violation.Status.CanTransitionTo(next) {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidStatusChange,
			fmt.Sprintf("cannot change status from %s to %s", violation.Status, next))
	}

	if err := s.store.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}

	violation.Status = next
	return violation, nil
}

// ListTypes returns all violation types
func (s *ViolationService) ListTypes(ctx context.Context) ([]*models.ViolationType, error) {
	return s.store.ListTypes(ctx)
}

// ListLevels returns all violation levels
func (s *ViolationService) ListLevels(ctx context.Context) ([]*models.ViolationLevel, error) {
	return s.store.ListLevels(ctx)
}

// CheckAndTriggerAutoArchive runs the monthly archive/reset when the current
// YYYY-MM period has not been claimed yet. On first deployment the current
// month is claimed without archiving, so history is not wiped by the first
// request after installation.
func (s *ViolationService) CheckAndTriggerAutoArchive(ctx context.Context) (*dto.ArchiveRunResponse, error) {
	now := s.now()
	period := helpers.Period(now)

	hasHistory, err := s.store.HasAnyReset(ctx)
	if err != nil {
		return nil, err
	}

	result := &dto.ArchiveRunResponse{Period: period}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		claimed, err := s.store.ClaimPeriod(ctx, tx, period)
		if err != nil {
			return err
		}
		if !claimed {
			// Another request already ran this period's reset.
			return nil
		}

		if !hasHistory {
			// First run: record the marker only.
			s.logger.Info().Str("period", period).Msg("First archival run, claiming current period without archiving")
			return s.store.RecordResetCounts(ctx, tx, period, 0, 0)
		}

		archived, err := s.store.ArchiveBefore(ctx, tx, helpers.FirstOfMonth(now))
		if err != nil {
			return err
		}

		reset, err := s.store.ResetAllStudentLevels(ctx, tx)
		if err != nil {
			return err
		}

		if err := s.store.RecordResetCounts(ctx, tx, period, archived, reset); err != nil {
			return err
		}

		result.Ran = true
		result.ArchivedCount = int(archived)
		result.ResetCount = int(reset)
		result.RanAt = now
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("monthly archive for %s failed: %w", period, err)
	}

	if result.Ran {
		s.logger.Info().
			Str("period", period).
			Int("archived", result.ArchivedCount).
			Int("reset", result.ResetCount).
			Msg("Monthly archive completed")
	}

	return result, nil
}

// LastArchiveRun returns the most recent archival checkpoint, if any
func (s *ViolationService) LastArchiveRun(ctx context.Context) (*models.MonthlyReset, error) {
	return s.store.GetLastReset(ctx)
}
