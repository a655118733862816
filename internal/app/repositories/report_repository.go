package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osasdev/osas/internal/app/models"
	"github.com/osasdev/osas/internal/pkg/apperrors"
)

// AggregateRow is one grouped row of the report rollup query
type AggregateRow struct {
	StudentPK       int64
	StudentID       models.StudentID
	FirstName       string
	MiddleName      string
	LastName        string
	UniformCount    int
	FootwearCount   int
	NoIDCount       int
	TotalViolations int
	MaxStatusLevel  models.SeverityRank
}

// ReportRepository handles database operations for derived reports
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{
		db: db,
	}
}

// Aggregate runs the rollup query joining students to their violations,
// optionally restricted to a date window. The inner join excludes students
// with zero violations in range by construction.
func (r *ReportRepository) Aggregate(ctx context.Context, start, end *time.Time) ([]*AggregateRow, error) {
	query := `
		SELECT s.id, s.student_id, s.first_name, s.middle_name, s.last_name,
		       COUNT(*) FILTER (WHERE vt.name = $1) AS uniform_count,
		       COUNT(*) FILTER (WHERE vt.name = $2) AS footwear_count,
		       COUNT(*) FILTER (WHERE vt.name = $3) AS no_id_count,
		       COUNT(*) AS total_violations,
		       MAX(vl.severity_rank) AS max_status_level
		FROM students s
		JOIN violations v ON v.student_id = s.student_id
		JOIN violation_types vt ON vt.id = v.type_id
		JOIN violation_levels vl ON vl.id = v.level_id
	`
	args := []interface{}{models.TypeImproperUniform, models.TypeImproperFootwear, models.TypeNoID}

	var window []string
	if start != nil {
		args = append(args, *start)
		window = append(window, fmt.Sprintf("v.violation_date >= $%d", len(args)))
	}
	if end != nil {
		args = append(args, *end)
		window = append(window, fmt.Sprintf("v.violation_date <= $%d", len(args)))
	}
	if len(window) > 0 {
		query += " WHERE " + strings.Join(window, " AND ")
	}

	query += ` GROUP BY s.id, s.student_id, s.first_name, s.middle_name, s.last_name ORDER BY s.id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error running report aggregation: %w", err)
	}
	defer rows.Close()

	var result []*AggregateRow
	for rows.Next() {
		var row AggregateRow
		if err := rows.Scan(
			&row.StudentPK, &row.StudentID, &row.FirstName, &row.MiddleName, &row.LastName,
			&row.UniformCount, &row.FootwearCount, &row.NoIDCount,
			&row.TotalViolations, &row.MaxStatusLevel,
		); err != nil {
			return nil, err
		}
		result = append(result, &row)
	}

	return result, rows.Err()
}

// ReportExists checks whether a rollup row already exists for the report ID
func (r *ReportRepository) ReportExists(ctx context.Context, reportID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM reports WHERE report_id = $1)`, reportID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking report existence: %w", err)
	}
	return exists, nil
}

// Upsert inserts the rollup row or replaces its aggregate fields when the
// report ID already exists. Returns true when a new row was inserted.
func (r *ReportRepository) Upsert(ctx context.Context, report *models.Report) (bool, error) {
	exists, err := r.ReportExists(ctx, report.ReportID)
	if err != nil {
		return false, err
	}

	if exists {
		query := `
			UPDATE reports
			SET student_name = $2, uniform_count = $3, footwear_count = $4, no_id_count = $5,
			    total_violations = $6, status = $7, period_start = $8, period_end = $9, generated_at = NOW()
			WHERE report_id = $1
			RETURNING id, generated_at
		`
		err = r.db.QueryRow(ctx, query,
			report.ReportID, report.StudentName, report.UniformCount, report.FootwearCount,
			report.NoIDCount, report.TotalViolations, report.Status, report.PeriodStart, report.PeriodEnd,
		).Scan(&report.ID, &report.GeneratedAt)
		if err != nil {
			return false, fmt.Errorf("error updating report %s: %w", report.ReportID, err)
		}
		return false, nil
	}

	query := `
		INSERT INTO reports (report_id, student_pk, student_id, student_name, uniform_count, footwear_count, no_id_count, total_violations, status, period_start, period_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, generated_at
	`
	err = r.db.QueryRow(ctx, query,
		report.ReportID, report.StudentPK, report.StudentID, report.StudentName,
		report.UniformCount, report.FootwearCount, report.NoIDCount,
		report.TotalViolations, report.Status, report.PeriodStart, report.PeriodEnd,
	).Scan(&report.ID, &report.GeneratedAt)
	if err != nil {
		return false, fmt.Errorf("error inserting report %s: %w", report.ReportID, err)
	}
	return true, nil
}

// ViolationsForStudent returns violation detail rows for the child sync,
// restricted to the same window as the aggregation.
func (r *ReportRepository) ViolationsForStudent(ctx context.Context, studentID models.StudentID, start, end *time.Time) ([]*models.ReportViolation, error) {
	query := `
		SELECT v.id, v.case_id, vt.name, vl.name, v.violation_date, v.location
		FROM violations v
		JOIN violation_types vt ON vt.id = v.type_id
		JOIN violation_levels vl ON vl.id = v.level_id
		WHERE v.student_id = $1
	`
	args := []interface{}{studentID}

	if start != nil {
		args = append(args, *start)
		query += fmt.Sprintf(" AND v.violation_date >= $%d", len(args))
	}
	if end != nil {
		args = append(args, *end)
		query += fmt.Sprintf(" AND v.violation_date <= $%d", len(args))
	}
	query += " ORDER BY v.violation_date, v.id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error retrieving violations for report: %w", err)
	}
	defer rows.Close()

	var result []*models.ReportViolation
	for rows.Next() {
		var rv models.ReportViolation
		if err := rows.Scan(&rv.ViolationID, &rv.CaseID, &rv.TypeName, &rv.LevelName, &rv.ViolationDate, &rv.Location); err != nil {
			return nil, err
		}
		result = append(result, &rv)
	}

	return result, rows.Err()
}

// ReportViolationExists checks whether the detail row was already copied,
// so re-running generation does not duplicate child rows.
func (r *ReportRepository) ReportViolationExists(ctx context.Context, reportID string, violationID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM report_violations WHERE report_id = $1 AND violation_id = $2)`,
		reportID, violationID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking report violation existence: %w", err)
	}
	return exists, nil
}

// InsertReportViolation copies one violation detail row under a report
func (r *ReportRepository) InsertReportViolation(ctx context.Context, rv *models.ReportViolation) error {
	query := `
		INSERT INTO report_violations (report_id, violation_id, case_id, type_name, level_name, violation_date, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		rv.ReportID, rv.ViolationID, rv.CaseID, rv.TypeName, rv.LevelName, rv.ViolationDate, rv.Location,
	).Scan(&rv.ID)
	if err != nil {
		return fmt.Errorf("error inserting report violation: %w", err)
	}
	return nil
}

// DeleteRecommendations removes all recommendation rows for a report
func (r *ReportRepository) DeleteRecommendations(ctx context.Context, reportID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM report_recommendations WHERE report_id = $1`, reportID)
	if err != nil {
		return fmt.Errorf("error deleting recommendations: %w", err)
	}
	return nil
}

// InsertRecommendation adds one generated advisory row
func (r *ReportRepository) InsertRecommendation(ctx context.Context, rec *models.ReportRecommendation) error {
	query := `
		INSERT INTO report_recommendations (report_id, priority, text)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query, rec.ReportID, rec.Priority, rec.Text).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("error inserting recommendation: %w", err)
	}
	return nil
}

const reportColumns = `id, report_id, student_pk, student_id, student_name, uniform_count, footwear_count, no_id_count, total_violations, status, period_start, period_end, generated_at`

func scanReport(row pgx.Row) (*models.Report, error) {
	var rep models.Report
	err := row.Scan(
		&rep.ID,
		&rep.ReportID,
		&rep.StudentPK,
		&rep.StudentID,
		&rep.StudentName,
		&rep.UniformCount,
		&rep.FootwearCount,
		&rep.NoIDCount,
		&rep.TotalViolations,
		&rep.Status,
		&rep.PeriodStart,
		&rep.PeriodEnd,
		&rep.GeneratedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrReportNotFound
		}
		return nil, fmt.Errorf("error scanning report: %w", err)
	}
	return &rep, nil
}

// List retrieves all rollup rows
func (r *ReportRepository) List(ctx context.Context) ([]*models.Report, error) {
	query := fmt.Sprintf(`SELECT %s FROM reports ORDER BY report_id`, reportColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}

	return reports, rows.Err()
}

// GetByReportID retrieves one rollup row with its children
func (r *ReportRepository) GetByReportID(ctx context.Context, reportID string) (*models.Report, error) {
	query := fmt.Sprintf(`SELECT %s FROM reports WHERE report_id = $1`, reportColumns)
	report, err := scanReport(r.db.QueryRow(ctx, query, reportID))
	if err != nil {
		return nil, err
	}

	report.Violations, err = r.listReportViolations(ctx, reportID)
	if err != nil {
		return nil, err
	}
	report.Recommendations, err = r.listRecommendations(ctx, reportID)
	if err != nil {
		return nil, err
	}

	return report, nil
}

func (r *ReportRepository) listReportViolations(ctx context.Context, reportID string) ([]*models.ReportViolation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, report_id, violation_id, case_id, type_name, level_name, violation_date, location
		FROM report_violations WHERE report_id = $1 ORDER BY violation_date, id`, reportID)
	if err != nil {
		return nil, fmt.Errorf("error listing report violations: %w", err)
	}
	defer rows.Close()

	var result []*models.ReportViolation
	for rows.Next() {
		var rv models.ReportViolation
		if err := rows.Scan(&rv.ID, &rv.ReportID, &rv.ViolationID, &rv.CaseID, &rv.TypeName, &rv.LevelName, &rv.ViolationDate, &rv.Location); err != nil {
			return nil, err
		}
		result = append(result, &rv)
	}

	return result, rows.Err()
}

func (r *ReportRepository) listRecommendations(ctx context.Context, reportID string) ([]*models.ReportRecommendation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, report_id, priority, text
		FROM report_recommendations WHERE report_id = $1 ORDER BY priority, id`, reportID)
	if err != nil {
		return nil, fmt.Errorf("error listing recommendations: %w", err)
	}
	defer rows.Close()

	var result []*models.ReportRecommendation
	for rows.Next() {
		var rec models.ReportRecommendation
		if err := rows.Scan(&rec.ID, &rec.ReportID, &rec.Priority, &rec.Text); err != nil {
			return nil, err
		}
		result = append(result, &rec)
	}

	return result, rows.Err()
}
