package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osasdev/osas/internal/app/models"
	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/pkg/apperrors"
)

// fakeAnnouncementStore is an in-memory AnnouncementStore for service tests.
type fakeAnnouncementStore struct {
	announcements map[int64]*models.Announcement
	nextID        int64
}

func newFakeAnnouncementStore() *fakeAnnouncementStore {
	return &fakeAnnouncementStore{
		announcements: map[int64]*models.Announcement{},
		nextID:        1,
	}
}

func (f *fakeAnnouncementStore) List(_ context.Context, status string, limit int) ([]*models.Announcement, error) {
	var out []*models.Announcement
	for _, a := range f.announcements {
		if a.DeletedAt != nil {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		out = append(out, a)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeAnnouncementStore) GetByID(_ context.Context, id int64) (*models.Announcement, error) {
	a, ok := f.announcements[id]
	if !ok || a.DeletedAt != nil {
		return nil, apperrors.ErrAnnouncementNotFound
	}
	return a, nil
}

func (f *fakeAnnouncementStore) Create(_ context.Context, a *models.Announcement) error {
	a.ID = f.nextID
	f.nextID++
	stored := *a
	f.announcements[a.ID] = &stored
	return nil
}

func (f *fakeAnnouncementStore) Update(_ context.Context, a *models.Announcement) error {
	if _, ok := f.announcements[a.ID]; !ok {
		return apperrors.ErrAnnouncementNotFound
	}
	stored := *a
	f.announcements[a.ID] = &stored
	return nil
}

func (f *fakeAnnouncementStore) SetStatus(_ context.Context, id int64, status string) error {
	a, ok := f.announcements[id]
	if !ok {
		return apperrors.ErrAnnouncementNotFound
	}
	a.Status = status
	return nil
}

func (f *fakeAnnouncementStore) SoftDelete(_ context.Context, id int64) error {
	a, ok := f.announcements[id]
	if !ok {
		return apperrors.ErrAnnouncementNotFound
	}
	now := time.Now()
	a.DeletedAt = &now
	return nil
}

func TestCreateAnnouncementTrimsTitleAndStartsActive(t *testing.T) {
	store := newFakeAnnouncementStore()
	svc := NewAnnouncementService(store)

	created, err := svc.CreateAnnouncement(context.Background(), &dto.CreateAnnouncementRequest{
		Title: "  Flag Ceremony Monday  ",
		Body:  "Assembly at the quadrangle, 7 AM.",
	}, 42)
	require.NoError(t, err)
	assert.Equal(t, "Flag Ceremony Monday", created.Title)
	assert.Equal(t, int64(42), created.PostedBy)
	assert.Equal(t, models.EntityActive, created.Status)
}

func TestRestoreAnnouncementReactivatesArchived(t *testing.T) {
	store := newFakeAnnouncementStore()
	svc := NewAnnouncementService(store)

	created, err := svc.CreateAnnouncement(context.Background(), &dto.CreateAnnouncementRequest{
		Title: "Midterm Schedule",
		Body:  "Posted on the registrar board.",
	}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.ArchiveAnnouncement(context.Background(), created.ID))
	assert.Equal(t, models.EntityArchived, store.announcements[created.ID].Status)

	require.NoError(t, svc.RestoreAnnouncement(context.Background(), created.ID))
	assert.Equal(t, models.EntityActive, store.announcements[created.ID].Status)
}

func TestRestoreAnnouncementRequiresArchived(t *testing.T) {
	store := newFakeAnnouncementStore()
	svc := NewAnnouncementService(store)

	created, err := svc.CreateAnnouncement(context.Background(), &dto.CreateAnnouncementRequest{
		Title: "Enrollment Week",
		Body:  "Windows open 8 AM to 5 PM.",
	}, 1)
	require.NoError(t, err)

	err = svc.RestoreAnnouncement(context.Background(), created.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestRestoreAnnouncementNotFound(t *testing.T) {
	svc := NewAnnouncementService(newFakeAnnouncementStore())

	err := svc.RestoreAnnouncement(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrAnnouncementNotFound)
}

func TestDeleteAnnouncementHidesFromListing(t *testing.T) {
	store := newFakeAnnouncementStore()
	svc := NewAnnouncementService(store)

	created, err := svc.CreateAnnouncement(context.Background(), &dto.CreateAnnouncementRequest{
		Title: "Clearance Signing",
		Body:  "Bring your forms.",
	}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAnnouncement(context.Background(), created.ID))

	listed, err := svc.ListAnnouncements(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Empty(t, listed)

	_, err = svc.GetAnnouncementByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, apperrors.ErrAnnouncementNotFound)
}
