package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/osasdev/osas/internal/app/models"
	"github.com/osasdev/osas/internal/app/repositories"
	"github.com/osasdev/osas/internal/pkg/apperrors"
)

// ReportStore is the data access surface report generation needs.
// Implemented by repositories.ReportRepository.
type ReportStore interface {
	Aggregate(ctx context.Context, start, end *time.Time) ([]*repositories.AggregateRow, error)
	Upsert(ctx context.Context, report *models.Report) (bool, error)
	ViolationsForStudent(ctx context.Context, studentID models.StudentID, start, end *time.Time) ([]*models.ReportViolation, error)
	ReportViolationExists(ctx context.Context, reportID string, violationID int64) (bool, error)
	InsertReportViolation(ctx context.Context, rv *models.ReportViolation) error
	DeleteRecommendations(ctx context.Context, reportID string) error
	InsertRecommendation(ctx context.Context, rec *models.ReportRecommendation) error
	List(ctx context.Context) ([]*models.Report, error)
	GetByReportID(ctx context.Context, reportID string) (*models.Report, error)
}

// ReportService builds and serves the per-student violation rollup reports.
type ReportService struct {
	store  ReportStore
	logger zerolog.Logger
	now    func() time.Time
}

// NewReportService creates a new report service instance
func NewReportService(store ReportStore, logger zerolog.Logger) *ReportService {
	return &ReportService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Recommendation tiers keyed by total violation count and rollup status.
// Escalation applies at five or more violations or a disciplinary status,
// monitoring at three or more or a warning status, and a reminder otherwise.
var (
	escalationRecommendations = []string{
		"Schedule a disciplinary conference with the student and guardian.",
		"Issue a final written warning outlining sanctions for further offenses.",
		"Place the student under weekly compliance monitoring for the term.",
	}
	monitoringRecommendations = []string{
		"Issue a formal written warning and require acknowledgment.",
		"Review the student's record with their section adviser.",
	}
	reminderRecommendations = []string{
		"Monitor for further infractions; no immediate action required.",
	}
)

// recommendationTier selects the advisory set and its priority for a report.
func recommendationTier(r *models.Report) (texts []string, priority int) {
	switch {
	case r.TotalViolations >= 5 || r.Status == models.ViolationDisciplinary:
		return escalationRecommendations, 1
	case r.TotalViolations >= 3 || r.Status == models.ViolationWarning:
		return monitoringRecommendations, 2
	default:
		return reminderRecommendations, 3
	}
}

// FormatReportID renders a report identifier from the student's primary key.
func FormatReportID(studentPK int64) string {
	return fmt.Sprintf("R%03d", studentPK)
}

// studentName assembles the display name for a rollup row, falling back to
// the student identifier when all name parts are blank.
func studentName(row *repositories.AggregateRow) string {
	st := models.Student{
		StudentID:  row.StudentID,
		FirstName:  row.FirstName,
		MiddleName: row.MiddleName,
		LastName:   row.LastName,
	}
	return st.DisplayName()
}

// GenerateReports recomputes the rollup for every student with violations in
// the window (both bounds optional). Existing report rows are updated in
// place, detail rows are appended idempotently, and recommendations are
// rebuilt from scratch each pass.
func (s *ReportService) GenerateReports(ctx context.Context, start, end *time.Time) (*models.GenerationResult, error) {
	rows, err := s.store.Aggregate(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("report aggregation failed: %w", err)
	}

	result := &models.GenerationResult{}
	touched := make(map[string]bool, len(rows))

	for _, row := range rows {
		report := &models.Report{
			ReportID:        FormatReportID(row.StudentPK),
			StudentPK:       row.StudentPK,
			StudentID:       row.StudentID,
			StudentName:     studentName(row),
			UniformCount:    row.UniformCount,
			FootwearCount:   row.FootwearCount,
			NoIDCount:       row.NoIDCount,
			TotalViolations: row.TotalViolations,
			Status:          row.MaxStatusLevel.Status(),
			PeriodStart:     start,
			PeriodEnd:       end,
			GeneratedAt:     s.now(),
		}

		inserted, err := s.store.Upsert(ctx, report)
		if err != nil {
			return nil, fmt.Errorf("error upserting report %s: %w", report.ReportID, err)
		}
		if inserted {
			result.Generated++
		} else {
			result.Updated++
		}
		result.Total++

		if err := s.syncViolationDetails(ctx, report, start, end); err != nil {
			return nil, err
		}
		if err := s.rebuildRecommendations(ctx, report); err != nil {
			return nil, err
		}
		touched[report.ReportID] = true
	}

	// Reports outside the window keep their stored counts, but their
	// recommendations are regenerated every run so none go stale.
	existing, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing reports for recommendation refresh: %w", err)
	}
	for _, report := range existing {
		if touched[report.ReportID] {
			continue
		}
		if err := s.rebuildRecommendations(ctx, report); err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Int("generated", result.Generated).
		Int("updated", result.Updated).
		Int("total", result.Total).
		Msg("Report generation completed")

	return result, nil
}

// syncViolationDetails copies the student's in-window violations into the
// report's detail table, skipping rows already attached.
func (s *ReportService) syncViolationDetails(ctx context.Context, report *models.Report, start, end *time.Time) error {
	details, err := s.store.ViolationsForStudent(ctx, report.StudentID, start, end)
	if err != nil {
		return fmt.Errorf("error loading violations for report %s: %w", report.ReportID, err)
	}

	for _, d := range details {
		exists, err := s.store.ReportViolationExists(ctx, report.ReportID, d.ViolationID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		d.ReportID = report.ReportID
		if err := s.store.InsertReportViolation(ctx, d); err != nil {
			return fmt.Errorf("error attaching violation %d to report %s: %w", d.ViolationID, report.ReportID, err)
		}
	}

	return nil
}

// rebuildRecommendations deletes and regenerates the advisory rows so they
// always reflect the current counts.
func (s *ReportService) rebuildRecommendations(ctx context.Context, report *models.Report) error {
	if err := s.store.DeleteRecommendations(ctx, report.ReportID); err != nil {
		return err
	}

	texts, priority := recommendationTier(report)
	for _, text := range texts {
		rec := &models.ReportRecommendation{
			ReportID: report.ReportID,
			Priority: priority,
			Text:     text,
		}
		if err := s.store.InsertRecommendation(ctx, rec); err != nil {
			return err
		}
	}

	return nil
}

// ListReports returns all generated reports without children
func (s *ReportService) ListReports(ctx context.Context) ([]*models.Report, error) {
	return s.store.List(ctx)
}

// GetReport returns a single report with its violation details and
// recommendations.
func (s *ReportService) GetReport(ctx context.Context, reportID string) (*models.Report, error) {
	if strings.TrimSpace(reportID) == "" {
		return nil, fmt.Errorf("%w: report ID is required", apperrors.ErrValidationFailed)
	}
	return s.store.GetByReportID(ctx, reportID)
}
