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
	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/pkg/apperrors"
)

// ViolationRepository handles database operations for violations and the
// monthly archival checkpoint.
type ViolationRepository struct {
	db *pgxpool.Pool
}

// NewViolationRepository creates a new violation repository
func NewViolationRepository(db *pgxpool.Pool) *ViolationRepository {
	return &ViolationRepository{
		db: db,
	}
}

const violationColumns = `id, case_id, student_id, type_id, level_id, violation_date, violation_time, location, reported_by, notes, status, is_archived, created_at, updated_at`

func scanViolation(row pgx.Row) (*models.Violation, error) {
	var v models.Violation
	err := row.Scan(
		&v.ID,
		&v.CaseID,
		&v.StudentID,
		&v.TypeID,
		&v.LevelID,
		&v.ViolationDate,
		&v.ViolationTime,
		&v.Location,
		&v.ReportedBy,
		&v.Notes,
		&v.Status,
		&v.IsArchived,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrViolationNotFound
		}
		return nil, fmt.Errorf("error scanning violation: %w", err)
	}
	return &v, nil
}

// CountInYear counts violations created in the given calendar year. The
// case-ID sequence is derived from this count; the unique index on case_id
// is what makes concurrent submissions safe.
func (r *ViolationRepository) CountInYear(ctx context.Context, year int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM violations WHERE EXTRACT(YEAR FROM created_at) = $1`, year).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting violations in year: %w", err)
	}
	return count, nil
}

// Create inserts a new violation. A unique-violation error on case_id is
// surfaced as ErrDuplicateViolation so the caller can regenerate the sequence
// and retry.
func (r *ViolationRepository) Create(ctx context.Context, v *models.Violation) error {
	query := `
		INSERT INTO violations (case_id, student_id, type_id, level_id, violation_date, violation_time, location, reported_by, notes, status, is_archived)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		v.CaseID, v.StudentID, v.TypeID, v.LevelID, v.ViolationDate, v.ViolationTime,
		v.Location, v.ReportedBy, v.Notes, v.Status,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating violation: %w", err)
	}

	return nil
}

// FindExactDuplicate looks for a non-archived violation matching the full
// submission sextuple and returns the existing row ID when found.
func (r *ViolationRepository) FindExactDuplicate(ctx context.Context, studentID models.StudentID, typeID, levelID int64, date time.Time, timeStr, location string) (int64, bool, error) {
	query := `
		SELECT id FROM violations
		WHERE student_id = $1 AND type_id = $2 AND level_id = $3
		  AND violation_date = $4 AND violation_time = $5 AND location = $6
		  AND is_archived = FALSE
		LIMIT 1
	`

	var id int64
	err := r.db.QueryRow(ctx, query, studentID, typeID, levelID, date, timeStr, location).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("error checking duplicate submission: %w", err)
	}

	return id, true, nil
}

// FindWindowCandidates returns non-archived violations matching everything
// except the wall-clock time, for the near-duplicate window comparison.
func (r *ViolationRepository) FindWindowCandidates(ctx context.Context, studentID models.StudentID, typeID, levelID int64, date time.Time, location string) ([]*models.Violation, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM violations
		WHERE student_id = $1 AND type_id = $2 AND level_id = $3
		  AND violation_date = $4 AND location = $5
		  AND is_archived = FALSE`, violationColumns)

	rows, err := r.db.Query(ctx, query, studentID, typeID, levelID, date, location)
	if err != nil {
		return nil, fmt.Errorf("error finding window candidates: %w", err)
	}
	defer rows.Close()

	var violations []*models.Violation
	for rows.Next() {
		v, err := scanViolation(rows)
		if err != nil {
			return nil, err
		}
		violations = append(violations, v)
	}

	return violations, rows.Err()
}

func buildViolationFilter(q dto.ViolationListQuery) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if q.StudentID != "" {
		args = append(args, q.StudentID)
		clauses = append(clauses, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if q.Status != "" {
		args = append(args, q.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.Archived != nil {
		args = append(args, *q.Archived)
		clauses = append(clauses, fmt.Sprintf("is_archived = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+strings.TrimSpace(q.Search)+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(case_id ILIKE $%d OR location ILIKE $%d OR reported_by ILIKE $%d)", n, n, n))
	}

	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}
	return where, args
}

// List retrieves violations matching the filter with pagination
func (r *ViolationRepository) List(ctx context.Context, q dto.ViolationListQuery, offset uint64, limit int) ([]*models.Violation, error) {
	where, args := buildViolationFilter(q)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM violations %s ORDER BY violation_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		violationColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing violations: %w", err)
	}
	defer rows.Close()

	var violations []*models.Violation
	for rows.Next() {
		v, err := scanViolation(rows)
		if err != nil {
			return nil, err
		}
		violations = append(violations, v)
	}

	return violations, rows.Err()
}

// Count returns the number of violations matching the filter
func (r *ViolationRepository) Count(ctx context.Context, q dto.ViolationListQuery) (int64, error) {
	where, args := buildViolationFilter(q)

	var count int64
	err := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM violations %s`, where), args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting violations: %w", err)
	}
	return count, nil
}

// GetByID retrieves a violation by primary key
func (r *ViolationRepository) GetByID(ctx context.Context, id int64) (*models.Violation, error) {
	query := fmt.Sprintf(`SELECT %s FROM violations WHERE id = $1`, violationColumns)
	return scanViolation(r.db.QueryRow(ctx, query, id))
}

// UpdateStatus changes a violation's stored status
func (r *ViolationRepository) UpdateStatus(ctx context.Context, id int64, status models.ViolationStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE violations SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error updating violation status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrViolationNotFound
	}
	return nil
}

// IncrementCounters bumps a student's violation counters after a new report,
// keyed by the severity level name.
func (r *ViolationRepository) IncrementCounters(ctx context.Context, studentID models.StudentID, levelName string) error {
	query := `
		UPDATE student_violation_levels
		SET total_violations = total_violations + 1,
		    permitted_count = permitted_count + CASE WHEN $2 = 'permitted' THEN 1 ELSE 0 END,
		    warning_count = warning_count + CASE WHEN $2 = 'warning' THEN 1 ELSE 0 END,
		    current_level = $2 || CAST(total_violations + 1 AS TEXT),
		    updated_at = NOW()
		WHERE student_id = $1
	`

	_, err := r.db.Exec(ctx, query, studentID, levelName)
	if err != nil {
		return fmt.Errorf("error incrementing violation counters: %w", err)
	}
	return nil
}

// ListTypes retrieves all violation types
func (r *ViolationRepository) ListTypes(ctx context.Context) ([]*models.ViolationType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, description FROM violation_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error listing violation types: %w", err)
	}
	defer rows.Close()

	var types []*models.ViolationType
	for rows.Next() {
		var t models.ViolationType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, err
		}
		types = append(types, &t)
	}

	return types, rows.Err()
}

// GetTypeByID retrieves a violation type
func (r *ViolationRepository) GetTypeByID(ctx context.Context, id int64) (*models.ViolationType, error) {
	var t models.ViolationType
	err := r.db.QueryRow(ctx,
		`SELECT id, name, description FROM violation_types WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrViolationTypeNotFound
		}
		return nil, fmt.Errorf("error retrieving violation type: %w", err)
	}
	return &t, nil
}

// ListLevels retrieves all violation levels
func (r *ViolationRepository) ListLevels(ctx context.Context) ([]*models.ViolationLevel, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, severity_rank FROM violation_levels ORDER BY severity_rank`)
	if err != nil {
		return nil, fmt.Errorf("error listing violation levels: %w", err)
	}
	defer rows.Close()

	var levels []*models.ViolationLevel
	for rows.Next() {
		var l models.ViolationLevel
		if err := rows.Scan(&l.ID, &l.Name, &l.Rank); err != nil {
			return nil, err
		}
		levels = append(levels, &l)
	}

	return levels, rows.Err()
}

// GetLevelByID retrieves a violation level
func (r *ViolationRepository) GetLevelByID(ctx context.Context, id int64) (*models.ViolationLevel, error) {
	var l models.ViolationLevel
	err := r.db.QueryRow(ctx,
		`SELECT id, name, severity_rank FROM violation_levels WHERE id = $1`, id).
		Scan(&l.ID, &l.Name, &l.Rank)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrViolationLevelNotFound
		}
		return nil, fmt.Errorf("error retrieving violation level: %w", err)
	}
	return &l, nil
}

// --- Monthly archival checkpoint ---

// ClaimPeriod attempts to claim the archival checkpoint for the given
// YYYY-MM period inside the caller's transaction. It returns false when
// another request already claimed the period.
func (r *ViolationRepository) ClaimPeriod(ctx context.Context, tx pgx.Tx, period string) (bool, error) {
	cmdTag, err := tx.Exec(ctx, `
		INSERT INTO monthly_resets (period) VALUES ($1)
		ON CONFLICT (period) DO NOTHING`, period)
	if err != nil {
		return false, fmt.Errorf("error claiming reset period: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// HasAnyReset reports whether any archival checkpoint exists. Used to detect
// first deployment, where the current month is claimed without archiving.
func (r *ViolationRepository) HasAnyReset(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM monthly_resets)`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking reset history: %w", err)
	}
	return exists, nil
}

// GetLastReset returns the most recent archival checkpoint, if any
func (r *ViolationRepository) GetLastReset(ctx context.Context) (*models.MonthlyReset, error) {
	var m models.MonthlyReset
	err := r.db.QueryRow(ctx, `
		SELECT id, period, archived_count, reset_count, ran_at
		FROM monthly_resets ORDER BY period DESC LIMIT 1`).
		Scan(&m.ID, &m.Period, &m.ArchivedCount, &m.ResetCount, &m.RanAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving last reset: %w", err)
	}
	return &m, nil
}

// ArchiveBefore flags every violation dated strictly before the cutoff as
// archived, returning the number of rows flagged.
func (r *ViolationRepository) ArchiveBefore(ctx context.Context, tx pgx.Tx, cutoff time.Time) (int64, error) {
	cmdTag, err := tx.Exec(ctx, `
		UPDATE violations SET is_archived = TRUE, updated_at = NOW()
		WHERE violation_date < $1 AND is_archived = FALSE`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error archiving violations: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// ResetAllStudentLevels resets EVERY student's counters to the fresh state,
// regardless of whether any of their violations were archived. The blanket
// reset alongside the date-scoped archive matches the observed behavior of
// the production system and is preserved deliberately.
func (r *ViolationRepository) ResetAllStudentLevels(ctx context.Context, tx pgx.Tx) (int64, error) {
	cmdTag, err := tx.Exec(ctx, fmt.Sprintf(`
		UPDATE student_violation_levels
		SET current_level = '%s', permitted_count = 0, warning_count = 0,
		    total_violations = 0, status = '%s', updated_at = NOW()`,
		models.FreshCurrentLevel, models.FreshCounterStatus))
	if err != nil {
		return 0, fmt.Errorf("error resetting student violation levels: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// RecordResetCounts stores the outcome on the claimed checkpoint row
func (r *ViolationRepository) RecordResetCounts(ctx context.Context, tx pgx.Tx, period string, archived, reset int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE monthly_resets SET archived_count = $2, reset_count = $3, ran_at = NOW()
		WHERE period = $1`, period, archived, reset)
	if err != nil {
		return fmt.Errorf("error recording reset counts: %w", err)
	}
	return nil
}

// CountSince counts non-archived violations dated on or after the given time
func (r *ViolationRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM violations WHERE violation_date >= $1 AND is_archived = FALSE`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting violations: %w", err)
	}
	return count, nil
}

// CountByStatus returns non-archived violation counts grouped by status
func (r *ViolationRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT status, COUNT(*) FROM violations WHERE is_archived = FALSE GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("error counting violations by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}

	return counts, rows.Err()
}
