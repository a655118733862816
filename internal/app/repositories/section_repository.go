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

// SectionRepository handles database operations for sections
type SectionRepository struct {
	db *pgxpool.Pool
}

// NewSectionRepository creates a new section repository
func NewSectionRepository(db *pgxpool.Pool) *SectionRepository {
	return &SectionRepository{
		db: db,
	}
}

const sectionColumns = `id, department_id, name, code, year_level, status, created_at, updated_at`

func scanSection(row pgx.Row) (*models.Section, error) {
	var s models.Section
	err := row.Scan(
		&s.ID,
		&s.DepartmentID,
		&s.Name,
		&s.Code,
		&s.YearLevel,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSectionNotFound
		}
		return nil, fmt.Errorf("error scanning section: %w", err)
	}
	return &s, nil
}

// Create creates a new section
func (r *SectionRepository) Create(ctx context.Context, section *models.Section) error {
	query := `
		INSERT INTO sections (department_id, name, code, year_level, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		section.DepartmentID, section.Name, section.Code, section.YearLevel, section.Status,
	).Scan(&section.ID, &section.CreatedAt, &section.UpdatedAt)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrSectionAlreadyExists
		}
		return fmt.Errorf("error creating section: %w", err)
	}

	return nil
}

// GetByID retrieves a section by ID
func (r *SectionRepository) GetByID(ctx context.Context, id int64) (*models.Section, error) {
	query := fmt.Sprintf(`SELECT %s FROM sections WHERE id = $1`, sectionColumns)
	return scanSection(r.db.QueryRow(ctx, query, id))
}

// GetAll retrieves all sections, optionally restricted to one department
func (r *SectionRepository) GetAll(ctx context.Context, departmentID int64, status string) ([]*models.Section, error) {
	query := fmt.Sprintf(`SELECT %s FROM sections`, sectionColumns)
	var clauses []string
	var args []interface{}

	if departmentID > 0 {
		args = append(args, departmentID)
		clauses = append(clauses, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if status != "" {
		args = append(args, status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + clauses[0]
		for _, c := range clauses[1:] {
			query += " AND " + c
		}
	}
	query += " ORDER BY year_level, name"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing sections: %w", err)
	}
	defer rows.Close()

	var sections []*models.Section
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}

	return sections, rows.Err()
}

// CodeExists checks if a section code is already used within the department
func (r *SectionRepository) CodeExists(ctx context.Context, departmentID int64, code string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM sections WHERE department_id = $1 AND code = $2 AND id <> $3)`,
		departmentID, code, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking section code: %w", err)
	}
	return exists, nil
}

// Update updates an existing section
func (r *SectionRepository) Update(ctx context.Context, section *models.Section) error {
	query := `
		UPDATE sections
		SET department_id = $1, name = $2, code = $3, year_level = $4, updated_at = NOW()
		WHERE id = $5
	`

	cmdTag, err := r.db.Exec(ctx, query,
		section.DepartmentID, section.Name, section.Code, section.YearLevel, section.ID)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrSectionAlreadyExists
		}
		return fmt.Errorf("error updating section: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSectionNotFound
	}

	return nil
}

// SetStatus flips a section between active and archived
func (r *SectionRepository) SetStatus(ctx context.Context, id int64, status string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE sections SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error updating section status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSectionNotFound
	}
	return nil
}
