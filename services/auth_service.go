package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/perfectism-co/easyBuy/apperrors"
	"github.com/perfectism-co/easyBuy/models"
	"github.com/perfectism-co/easyBuy/repository"
)

// AuthService handles registration, login and the session surface on top
// of TokenService.
type AuthService struct {
	userRepo     repository.UserRepository
	tokenService *TokenService
}

func NewAuthService(userRepo repository.UserRepository, tokenService *TokenService) *AuthService {
	return &AuthService{userRepo: userRepo, tokenService: tokenService}
}

// Register creates a new user with an empty cart and order history.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to hash password", err)
	}

	user := models.NewUser(uuid.NewString(), email, string(hashedPassword), name)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("email already exists")
		}
		return nil, apperrors.Upstream("failed to create account", err)
	}
	return user, nil
}

// Login verifies credentials, mints a token pair and records the refresh
// token in the user's allowlist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Upstream("failed to load user", err)
	}
	if user == nil {
		return nil, apperrors.Auth("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.Auth("invalid email or password")
	}

	accessToken, err := s.tokenService.IssueAccessToken(user.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to generate token", err)
	}
	refreshToken, err := s.tokenService.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to generate token", err)
	}

	user.RefreshTokens = append(user.RefreshTokens, refreshToken)
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, apperrors.Upstream("failed to persist session", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh rotates a refresh token for a fresh pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	return s.tokenService.Rotate(ctx, refreshToken)
}

// Logout revokes a refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokenService.Revoke(ctx, refreshToken)
}
