package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/osasdev/osas/internal/app/models"
	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/pkg/apperrors"
	"github.com/osasdev/osas/internal/pkg/auth"
	"github.com/osasdev/osas/internal/pkg/validation"
)

// UserStore is the account data access surface the auth service needs.
// Implemented by repositories.UserRepository.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// TokenStore is the refresh token data access surface the auth service needs.
// Implemented by repositories.TokenRepository.
type TokenStore interface {
	Save(ctx context.Context, token *models.RefreshToken) error
	Get(ctx context.Context, token string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// AuthService handles authentication and user account management
type AuthService struct {
	userRepo   UserStore
	tokenRepo  TokenStore
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new auth service instance
func NewAuthService(
	userRepo UserStore,
	tokenRepo TokenStore,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login verifies credentials and issues a token pair. Expired refresh tokens
// are swept opportunistically so the table does not grow unbounded.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, *models.User, error) {
	if removed, err := s.CleanupExpiredTokens(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to sweep expired refresh tokens")
	} else if removed > 0 {
		s.logger.Debug().Int64("removed", removed).Msg("Swept expired refresh tokens")
	}

	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		// Same error for unknown user and bad password.
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, apperrors.ErrAccountDisabled
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		s.logger.Warn().Err(err).Int64("userId", user.ID).Msg("Failed to record last login time")
	}

	return tokens, user, nil
}

// RefreshToken exchanges a valid refresh token for a new pair, revoking the
// old one.
func (s *AuthService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	stored, err := s.tokenRepo.Get(ctx, req.RefreshToken)
	if err != nil {
		return nil, apperrors.ErrTokenNotFound
	}

	if stored.Revoked {
		return nil, apperrors.ErrTokenInvalid
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.tokenRepo.Revoke(ctx, stored.Token); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes the presented refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if _, err := s.tokenRepo.Get(ctx, refreshToken); err != nil {
		return apperrors.ErrTokenNotFound
	}
	return s.tokenRepo.Revoke(ctx, refreshToken)
}

// issueTokens generates and persists a new token pair for the user
func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}

	if err := s.tokenRepo.Save(ctx, &models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: s.jwtService.GetRefreshTokenExpiry(),
	}); err != nil {
		return nil, fmt.Errorf("error saving refresh token: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresIn:        expiresIn,
		RefreshExpiresIn: refreshExpiresIn,
		TokenType:        "Bearer",
	}, nil
}

// AddAdmin creates a new admin user account
func (s *AuthService) AddAdmin(ctx context.Context, req *dto.AddAdminRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if !validation.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid email address", apperrors.ErrValidationFailed)
	}

	exists, err := s.userRepo.UsernameExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrUsernameAlreadyExists
	}

	exists, err = s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hashed,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", username).Msg("Admin account created")
	return user, nil
}

// ListAdmins returns all admin user accounts
func (s *AuthService) ListAdmins(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.ListByRole(ctx, models.RoleAdmin)
}

// DeactivateUser disables a user account. A user cannot deactivate their own
// account.
func (s *AuthService) DeactivateUser(ctx context.Context, id, actorID int64) error {
	if id == actorID {
		return apperrors.NewCustomError(apperrors.ErrPermissionDenied, "cannot deactivate your own account")
	}
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.userRepo.SetActive(ctx, id, false)
}

// ActivateUser re-enables a disabled user account
func (s *AuthService) ActivateUser(ctx context.Context, id int64) error {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.userRepo.SetActive(ctx, id, true)
}

// GetUserByID returns a user account by ID
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// CleanupExpiredTokens removes expired refresh tokens
func (s *AuthService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	return s.tokenRepo.DeleteExpired(ctx, time.Now())
}
