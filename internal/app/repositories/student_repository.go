package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osasdev/osas/internal/app/models"
	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/pkg/apperrors"
	"github.com/osasdev/osas/internal/pkg/dberrors"
)

// StudentRepository handles database operations for students
type StudentRepository struct {
	db *pgxpool.Pool
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
	}
}

const studentColumns = `id, student_id, first_name, middle_name, last_name, email, department_id, section_id, year_level, status, created_at, updated_at`

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	err := row.Scan(
		&s.ID,
		&s.StudentID,
		&s.FirstName,
		&s.MiddleName,
		&s.LastName,
		&s.Email,
		&s.DepartmentID,
		&s.SectionID,
		&s.YearLevel,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error scanning student: %w", err)
	}
	return &s, nil
}

// buildListFilter assembles the WHERE clause shared by List and Count.
func buildListFilter(q dto.StudentListQuery) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if q.Status != "" {
		args = append(args, q.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.DepartmentID > 0 {
		args = append(args, q.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if q.SectionID > 0 {
		args = append(args, q.SectionID)
		clauses = append(clauses, fmt.Sprintf("section_id = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+strings.TrimSpace(q.Search)+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(first_name ILIKE $%d OR last_name ILIKE $%d OR student_id ILIKE $%d OR email ILIKE $%d)", n, n, n, n))
	}

	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}
	return where, args
}

// List retrieves students matching the filter with pagination
func (r *StudentRepository) List(ctx context.Context, q dto.StudentListQuery, offset uint64, limit int) ([]*models.Student, error) {
	where, args := buildListFilter(q)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM students %s ORDER BY last_name, first_name LIMIT $%d OFFSET $%d`,
		studentColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}

	return students, rows.Err()
}

// Count returns the number of students matching the filter
func (r *StudentRepository) Count(ctx context.Context, q dto.StudentListQuery) (int64, error) {
	where, args := buildListFilter(q)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM students %s`, where)

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting students: %w", err)
	}
	return count, nil
}

// GetByID retrieves a student by primary key
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1`, studentColumns)
	return scanStudent(r.db.QueryRow(ctx, query, id))
}

// GetByStudentID retrieves a student by the human-assigned student identifier
func (r *StudentRepository) GetByStudentID(ctx context.Context, studentID models.StudentID) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE student_id = $1`, studentColumns)
	return scanStudent(r.db.QueryRow(ctx, query, studentID))
}

// Create inserts a new student and its violation-level counter row
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	query := `
		INSERT INTO students (student_id, first_name, middle_name, last_name, email, department_id, section_id, year_level, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		student.StudentID, student.FirstName, student.MiddleName, student.LastName,
		student.Email, student.DepartmentID, student.SectionID, student.YearLevel, student.Status,
	).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_student_id_key") {
			return apperrors.ErrStudentIDAlreadyExists
		}
		return fmt.Errorf("error creating student: %w", err)
	}

	// Counter row starts in the fresh state the monthly reset also produces.
	_, err = r.db.Exec(ctx, `
		INSERT INTO student_violation_levels (student_id, current_level, permitted_count, warning_count, total_violations, status)
		VALUES ($1, $2, 0, 0, 0, $3)
		ON CONFLICT (student_id) DO NOTHING`,
		student.StudentID, models.FreshCurrentLevel, models.FreshCounterStatus)
	if err != nil {
		return fmt.Errorf("error creating violation level row: %w", err)
	}

	return nil
}

// Update modifies an existing student record
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	query := `
		UPDATE students
		SET first_name = $1, middle_name = $2, last_name = $3, email = $4,
		    department_id = $5, section_id = $6, year_level = $7, status = $8, updated_at = NOW()
		WHERE id = $9
	`

	cmdTag, err := r.db.Exec(ctx, query,
		student.FirstName, student.MiddleName, student.LastName, student.Email,
		student.DepartmentID, student.SectionID, student.YearLevel, student.Status, student.ID)
	if err != nil {
		return fmt.Errorf("error updating student: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}

// SetStatus flips a student's status; used for archive and restore.
// Students are never physically deleted.
func (r *StudentRepository) SetStatus(ctx context.Context, id int64, status models.StudentStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE students SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error updating student status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// StudentIDExists checks whether a student identifier is taken
func (r *StudentRepository) StudentIDExists(ctx context.Context, studentID models.StudentID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM students WHERE student_id = $1)`, studentID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking student ID existence: %w", err)
	}
	return exists, nil
}

// EmailExists checks whether an email is already used by another student
func (r *StudentRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM students WHERE email = $1 AND email <> '' AND id <> $2)`,
		email, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking email existence: %w", err)
	}
	return exists, nil
}

// CountByStatus returns the number of students per status
func (r *StudentRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM students GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("error counting students by status: %w", err)
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

// GetViolationLevel retrieves a student's counter row
func (r *StudentRepository) GetViolationLevel(ctx context.Context, studentID models.StudentID) (*models.StudentViolationLevel, error) {
	query := `
		SELECT id, student_id, current_level, permitted_count, warning_count, total_violations, status, updated_at
		FROM student_violation_levels
		WHERE student_id = $1
	`

	var lvl models.StudentViolationLevel
	err := r.db.QueryRow(ctx, query, studentID).Scan(
		&lvl.ID, &lvl.StudentID, &lvl.CurrentLevel, &lvl.PermittedCount,
		&lvl.WarningCount, &lvl.TotalViolations, &lvl.Status, &lvl.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving violation level: %w", err)
	}

	return &lvl, nil
}
