package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/osasdev/osas/internal/app/models"
	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/app/repositories"
	"github.com/osasdev/osas/internal/pkg/apperrors"
)

// SettingService handles typed application settings
type SettingService struct {
	settingRepo *repositories.SettingRepository
}

// NewSettingService creates a new setting service instance
func NewSettingService(settingRepo *repositories.SettingRepository) *SettingService {
	return &SettingService{settingRepo: settingRepo}
}

// ListSettings returns settings, optionally filtered by category. When
// publicOnly is set only settings flagged public are returned; unauthenticated
// callers always get the restricted view.
func (s *SettingService) ListSettings(ctx context.Context, category string, publicOnly bool) ([]*models.Setting, error) {
	return s.settingRepo.List(ctx, category, publicOnly)
}

// GetSetting returns a single setting by key
func (s *SettingService) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: setting key is required", apperrors.ErrValidationFailed)
	}
	return s.settingRepo.GetByKey(ctx, key)
}

// UpsertSetting creates or replaces a setting, validating the raw value
// against its declared type before writing.
func (s *SettingService) UpsertSetting(ctx context.Context, req *dto.UpsertSettingRequest) (*models.Setting, error) {
	settingType := models.SettingType(req.Type)
	if !settingType.IsValid() {
		return nil, fmt.Errorf("%w: unknown setting type %q", apperrors.ErrValidationFailed, req.Type)
	}

	setting := &models.Setting{
		Key:      strings.TrimSpace(req.Key),
		Value:    req.Value,
		Type:     settingType,
		Category: strings.TrimSpace(req.Category),
		IsPublic: req.IsPublic,
	}

	if err := setting.ValidateValue(); err != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidSettingValue, err.Error())
	}

	if err := s.settingRepo.Upsert(ctx, setting); err != nil {
		return nil, err
	}
	return setting, nil
}
