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

// AnnouncementRepository handles database operations for announcements
type AnnouncementRepository struct {
	db *pgxpool.Pool
}

// NewAnnouncementRepository creates a new announcement repository
func NewAnnouncementRepository(db *pgxpool.Pool) *AnnouncementRepository {
	return &AnnouncementRepository{
		db: db,
	}
}

const announcementColumns = `id, title, body, posted_by, status, created_at, updated_at, deleted_at`

func scanAnnouncement(row pgx.Row) (*models.Announcement, error) {
	var a models.Announcement
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Body,
		&a.PostedBy,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAnnouncementNotFound
		}
		return nil, fmt.Errorf("error scanning announcement: %w", err)
	}
	return &a, nil
}

// List retrieves announcements by status; soft-deleted rows are always excluded
func (r *AnnouncementRepository) List(ctx context.Context, status string, limit int) ([]*models.Announcement, error) {
	query := fmt.Sprintf(`SELECT %s FROM announcements WHERE deleted_at IS NULL`, announcementColumns)
	var args []interface{}

	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing announcements: %w", err)
	}
	defer rows.Close()

	var announcements []*models.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, err
		}
		announcements = append(announcements, a)
	}

	return announcements, rows.Err()
}

// GetByID retrieves an announcement that has not been soft-deleted
func (r *AnnouncementRepository) GetByID(ctx context.Context, id int64) (*models.Announcement, error) {
	query := fmt.Sprintf(`SELECT %s FROM announcements WHERE id = $1 AND deleted_at IS NULL`, announcementColumns)
	return scanAnnouncement(r.db.QueryRow(ctx, query, id))
}

// Create inserts a new announcement
func (r *AnnouncementRepository) Create(ctx context.Context, a *models.Announcement) error {
	query := `
		INSERT INTO announcements (title, body, posted_by, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, a.Title, a.Body, a.PostedBy, a.Status).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating announcement: %w", err)
	}

	return nil
}

// Update modifies an announcement's title and body
func (r *AnnouncementRepository) Update(ctx context.Context, a *models.Announcement) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE announcements SET title = $1, body = $2, updated_at = NOW()
		WHERE id = $3 AND deleted_at IS NULL`, a.Title, a.Body, a.ID)
	if err != nil {
		return fmt.Errorf("error updating announcement: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAnnouncementNotFound
	}

	return nil
}

// SetStatus flips an announcement between active and archived
func (r *AnnouncementRepository) SetStatus(ctx context.Context, id int64, status string) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE announcements SET status = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL`, status, id)
	if err != nil {
		return fmt.Errorf("error updating announcement status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAnnouncementNotFound
	}
	return nil
}

// SoftDelete stamps deleted_at; the row is kept but hidden from all listings
func (r *AnnouncementRepository) SoftDelete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE announcements SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("error deleting announcement: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAnnouncementNotFound
	}
	return nil
}
