package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osasdev/osas/internal/app/models"
	"github.com/osasdev/osas/internal/pkg/apperrors"
	"github.com/osasdev/osas/internal/pkg/dberrors"
)

// DepartmentRepository handles database operations for departments
type DepartmentRepository struct {
	db *pgxpool.Pool
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *pgxpool.Pool) *DepartmentRepository {
	return &DepartmentRepository{
		db: db,
	}
}

// Create creates a new department
func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	query := `
		INSERT INTO departments (name, code, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, department.Name, department.Code, department.Status).
		Scan(&department.ID, &department.CreatedAt, &department.UpdatedAt)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrDepartmentAlreadyExists
		}
		return fmt.Errorf("error creating department: %w", err)
	}

	return nil
}

// GetByID retrieves a department by ID
func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	query := `
		SELECT id, name, code, status, created_at, updated_at
		FROM departments
		WHERE id = $1
	`

	var department models.Department
	err := r.db.QueryRow(ctx, query, id).Scan(
		&department.ID,
		&department.Name,
		&department.Code,
		&department.Status,
		&department.CreatedAt,
		&department.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("error retrieving department: %w", err)
	}

	return &department, nil
}

// GetAll retrieves all departments, optionally filtered by status
func (r *DepartmentRepository) GetAll(ctx context.Context, status string) ([]*models.Department, error) {
	query := `
		SELECT id, name, code, status, created_at, updated_at
		FROM departments
	`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing departments: %w", err)
	}
	defer rows.Close()

	var departments []*models.Department
	for rows.Next() {
		var department models.Department
		if err := rows.Scan(
			&department.ID,
			&department.Name,
			&department.Code,
			&department.Status,
			&department.CreatedAt,
			&department.UpdatedAt,
		); err != nil {
			return nil, err
		}
		departments = append(departments, &department)
	}

	return departments, rows.Err()
}

// CodeExists checks if a department code is already used by another department
func (r *DepartmentRepository) CodeExists(ctx context.Context, code string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM departments WHERE code = $1 AND id <> $2)`,
		code, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking department code: %w", err)
	}
	return exists, nil
}

// Update updates an existing department
func (r *DepartmentRepository) Update(ctx context.Context, department *models.Department) error {
	query := `
		UPDATE departments
		SET name = $1, code = $2, updated_at = NOW()
		WHERE id = $3
	`

	cmdTag, err := r.db.Exec(ctx, query, department.Name, department.Code, department.ID)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrDepartmentAlreadyExists
		}
		return fmt.Errorf("error updating department: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrDepartmentNotFound
	}

	return nil
}

// SetStatus flips a department between active and archived
func (r *DepartmentRepository) SetStatus(ctx context.Context, id int64, status string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE departments SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error updating department status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrDepartmentNotFound
	}
	return nil
}

// HasStudents checks whether any students are enrolled in the department
func (r *DepartmentRepository) HasStudents(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM students WHERE department_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking department students: %w", err)
	}
	return exists, nil
}
