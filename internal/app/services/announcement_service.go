package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/osasdev/osas/internal/app/models"
	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/pkg/apperrors"
)

// AnnouncementStore is the data access surface announcement management needs.
// Implemented by repositories.AnnouncementRepository.
type AnnouncementStore interface {
	List(ctx context.Context, status string, limit int) ([]*models.Announcement, error)
	GetByID(ctx context.Context, id int64) (*models.Announcement, error)
	Create(ctx context.Context, a *models.Announcement) error
	Update(ctx context.Context, a *models.Announcement) error
	SetStatus(ctx context.Context, id int64, status string) error
	SoftDelete(ctx context.Context, id int64) error
}

// AnnouncementService handles announcement management
type AnnouncementService struct {
	store AnnouncementStore
}

// NewAnnouncementService creates a new announcement service instance
func NewAnnouncementService(store AnnouncementStore) *AnnouncementService {
	return &AnnouncementService{store: store}
}

// ListAnnouncements returns announcements, optionally filtered by status and
// limited to the most recent entries. Soft-deleted rows never appear.
func (s *AnnouncementService) ListAnnouncements(ctx context.Context, status string, limit int) ([]*models.Announcement, error) {
	return s.store.List(ctx, status, limit)
}

// GetAnnouncementByID returns a single announcement
func (s *AnnouncementService) GetAnnouncementByID(ctx context.Context, id int64) (*models.Announcement, error) {
	return s.store.GetByID(ctx, id)
}

// CreateAnnouncement records a new announcement posted by the given user
func (s *AnnouncementService) CreateAnnouncement(ctx context.Context, req *dto.CreateAnnouncementRequest, postedBy int64) (*models.Announcement, error) {
	announcement := &models.Announcement{
		Title:    strings.TrimSpace(req.Title),
		Body:     req.Body,
		PostedBy: postedBy,
		Status:   models.EntityActive,
	}
	if err := s.store.Create(ctx, announcement); err != nil {
		return nil, err
	}
	return announcement, nil
}

// UpdateAnnouncement applies changes to an existing announcement
func (s *AnnouncementService) UpdateAnnouncement(ctx context.Context, id int64, req *dto.UpdateAnnouncementRequest) (*models.Announcement, error) {
	announcement, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	announcement.Title = strings.TrimSpace(req.Title)
	announcement.Body = req.Body
	if err := s.store.Update(ctx, announcement); err != nil {
		return nil, err
	}
	return announcement, nil
}

// ArchiveAnnouncement hides an announcement from the active listing without
// deleting it
func (s *AnnouncementService) ArchiveAnnouncement(ctx context.Context, id int64) error {
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return err
	}
	return s.store.SetStatus(ctx, id, models.EntityArchived)
}

// RestoreAnnouncement returns an archived announcement to the active listing
func (s *AnnouncementService) RestoreAnnouncement(ctx context.Context, id int64) error {
	announcement, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if announcement.Status != models.EntityArchived {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed,
			fmt.Sprintf("announcement %d is not archived", id))
	}
	return s.store.SetStatus(ctx, id, models.EntityActive)
}

// DeleteAnnouncement soft-deletes an announcement
func (s *AnnouncementService) DeleteAnnouncement(ctx context.Context, id int64) error {
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return err
	}
	return s.store.SoftDelete(ctx, id)
}
