package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/perfectism-co/easyBuy/apperrors"
	"github.com/perfectism-co/easyBuy/locks"
	"github.com/perfectism-co/easyBuy/repository"
)

const accessTokenTTL = 15 * time.Minute

// TokenPair holds the generated access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenService mints and validates JWTs. Access tokens are short-lived and
// stateless. Refresh tokens carry no expiry claim: their lifetime is
// governed entirely by membership in the user's stored allowlist, which is
// why rotation and revocation go through the repository.
type TokenService struct {
	secretKey []byte
	userRepo  repository.UserRepository
	userLocks *locks.KeyedMutex
}

func NewTokenService(secret string, userRepo repository.UserRepository, userLocks *locks.KeyedMutex) *TokenService {
	return &TokenService{
		secretKey: []byte(secret),
		userRepo:  userRepo,
		userLocks: userLocks,
	}
}

// IssueAccessToken creates a signed access token for the user, valid for
// 15 minutes. No server-side record is kept.
func (s *TokenService) IssueAccessToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"typ": "access",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(accessTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// IssueRefreshToken creates a signed refresh token. The token itself never
// expires; it stays usable exactly as long as it sits in the user's
// allowlist.
func (s *TokenService) IssueRefreshToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"typ": "refresh",
		"jti": uuid.NewString(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// VerifyAccess checks signature and expiry of an access token and returns
// the user id it was issued to.
func (s *TokenService) VerifyAccess(tokenStr string) (string, error) {
	return s.verify(tokenStr, "access")
}

func (s *TokenService) verify(tokenStr, expectedType string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperrors.ErrTokenExpired
		}
		return "", apperrors.ErrInvalidToken
	}
	if !token.Valid {
		return "", apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperrors.ErrInvalidToken
	}
	if typ, ok := claims["typ"].(string); !ok || typ != expectedType {
		return "", apperrors.ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", apperrors.ErrInvalidToken
	}
	return sub, nil
}

// Rotate exchanges a refresh token for a new access/refresh pair. The old
// token is removed and the new one inserted in the same persisted write, so
// a successful response implies the old token is already dead.
func (s *TokenService) Rotate(ctx context.Context, oldToken string) (*TokenPair, error) {
	if _, err := s.verify(oldToken, "refresh"); err != nil {
		return nil, err
	}

	owner, err := s.userRepo.FindByRefreshToken(ctx, oldToken)
	if err != nil {
		return nil, apperrors.Upstream("failed to look up refresh token", err)
	}
	if owner == nil {
		return nil, apperrors.ErrInvalidToken
	}

	s.userLocks.Lock(owner.ID)
	defer s.userLocks.Unlock(owner.ID)

	// Re-check under the lock: a concurrent rotation may have consumed it.
	user, err := s.userRepo.FindByRefreshToken(ctx, oldToken)
	if err != nil {
		return nil, apperrors.Upstream("failed to look up refresh token", err)
	}
	if user == nil {
		return nil, apperrors.ErrInvalidToken
	}

	accessToken, err := s.IssueAccessToken(user.ID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	user.RefreshTokens = replaceToken(user.RefreshTokens, oldToken, refreshToken)
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, apperrors.Upstream("failed to persist rotated token", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Revoke removes a refresh token from its owner's allowlist. Revoking a
// token the owner no longer holds is a no-op success (idempotent logout);
// a token whose subject resolves to no user is an error.
func (s *TokenService) Revoke(ctx context.Context, tokenStr string) error {
	userID, err := s.verify(tokenStr, "refresh")
	if err != nil {
		return err
	}

	s.userLocks.Lock(userID)
	defer s.userLocks.Unlock(userID)

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return apperrors.Upstream("failed to load user", err)
	}
	if user == nil {
		return apperrors.Auth("unknown token")
	}

	user.RefreshTokens = removeToken(user.RefreshTokens, tokenStr)
	if err := s.userRepo.Save(ctx, user); err != nil {
		return apperrors.Upstream("failed to persist revocation", err)
	}
	return nil
}

func replaceToken(tokens []string, old, new string) []string {
	out := removeToken(tokens, old)
	return append(out, new)
}

func removeToken(tokens []string, token string) []string {
	out := tokens[:0]
	for _, t := range tokens {
		if t != token {
			out = append(out, t)
		}
	}
	return out
}
