package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/mahavirtraders/flowtrack/pkg/apperror"
	"github.com/mahavirtraders/flowtrack/pkg/utils"
)

// AuthService handles sign-in, sign-out and the current user
type AuthService struct {
	userRepo   repository.UserRepository
	blocklist  repository.TokenBlocklist
	jwtManager *utils.JWTManager
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	blocklist repository.TokenBlocklist,
	jwtManager *utils.JWTManager,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		blocklist:  blocklist,
		jwtManager: jwtManager,
	}
}

// LoginInput represents the login input
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		return nil, asAppError(err)
	}
	if user == nil || !utils.CheckPasswordHash(input.Password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, apperror.NewAppError(403, "Account is disabled")
	}

	return s.issueTokens(ctx, user.ID)
}

// RefreshToken exchanges a refresh token for a fresh pair. A revoked refresh
// token is refused.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*LoginOutput, error) {
	claims, userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}

	revoked, err := s.blocklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, asAppError(err)
	}
	if revoked {
		return nil, apperror.ErrInvalidToken
	}

	out, err := s.issueTokens(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Refresh tokens are single use
	if claims.ExpiresAt != nil {
		if err := s.blocklist.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
			return nil, asAppError(err)
		}
	}
	return out, nil
}

func (s *AuthService) issueTokens(ctx context.Context, userID uuid.UUID) (*LoginOutput, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, asAppError(err)
	}
	if user == nil || !user.Active {
		return nil, apperror.ErrInvalidToken
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.RoleNames(), user.GetPermissions())
	if err != nil {
		return nil, asAppError(err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, asAppError(err)
	}

	return &LoginOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout revokes the access token (and the refresh token, when given) until
// they would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time, refreshToken string) error {
	if err := s.blocklist.Revoke(ctx, tokenID, time.Until(expiresAt)); err != nil {
		return asAppError(err)
	}

	if refreshToken == "" {
		return nil
	}
	claims, _, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil || claims.ExpiresAt == nil {
		// An invalid refresh token cannot be used anyway
		return nil
	}
	if err := s.blocklist.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		return asAppError(err)
	}
	return nil
}

// IsRevoked reports whether a token ID was signed out
func (s *AuthService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.blocklist.IsRevoked(ctx, tokenID)
}

// GetCurrentUser returns the current user by ID with roles and permissions
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, asAppError(err)
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}
	return user, nil
}

// ChangePasswordInput represents the change password input
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// ChangePassword changes the user's password
func (s *AuthService) ChangePassword(ctx context.Context, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return asAppError(err)
	}
	if user == nil {
		return apperror.ErrNotFound
	}

	if !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
		return apperror.NewBadRequestError("Current password is incorrect")
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return asAppError(err)
	}

	user.Password = hashedPassword
	if err := s.userRepo.Update(ctx, user); err != nil {
		return asAppError(err)
	}
	return nil
}
