package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osasdev/osas/internal/app/models"
	"github.com/osasdev/osas/internal/pkg/apperrors"
)

// SettingRepository handles database operations for settings
type SettingRepository struct {
	db *pgxpool.Pool
}

// NewSettingRepository creates a new setting repository
func NewSettingRepository(db *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{
		db: db,
	}
}

const settingColumns = `id, key, value, type, category, is_public, updated_at`

func scanSetting(row pgx.Row) (*models.Setting, error) {
	var s models.Setting
	err := row.Scan(
		&s.ID,
		&s.Key,
		&s.Value,
		&s.Type,
		&s.Category,
		&s.IsPublic,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSettingNotFound
		}
		return nil, fmt.Errorf("error scanning setting: %w", err)
	}
	return &s, nil
}

// List retrieves settings, optionally scoped to a category and public visibility
func (r *SettingRepository) List(ctx context.Context, category string, publicOnly bool) ([]*models.Setting, error) {
	query := fmt.Sprintf(`SELECT %s FROM settings`, settingColumns)
	var clauses []string
	var args []interface{}

	if category != "" {
		args = append(args, category)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}
	if publicOnly {
		clauses = append(clauses, "is_public = TRUE")
	}
	for i, c := range clauses {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY category, key"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing settings: %w", err)
	}
	defer rows.Close()

	var settings []*models.Setting
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}

	return settings, rows.Err()
}

// GetByKey retrieves a setting by its key
func (r *SettingRepository) GetByKey(ctx context.Context, key string) (*models.Setting, error) {
	query := fmt.Sprintf(`SELECT %s FROM settings WHERE key = $1`, settingColumns)
	return scanSetting(r.db.QueryRow(ctx, query, key))
}

// Upsert creates or replaces a setting by key
func (r *SettingRepository) Upsert(ctx context.Context, s *models.Setting) error {
	query := `
		INSERT INTO settings (key, value, type, category, is_public)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, type = EXCLUDED.type, category = EXCLUDED.category,
		    is_public = EXCLUDED.is_public, updated_at = NOW()
		RETURNING id, updated_at
	`

	err := r.db.QueryRow(ctx, query, s.Key, s.Value, s.Type, s.Category, s.IsPublic).
		Scan(&s.ID, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error upserting setting: %w", err)
	}

	return nil
}
