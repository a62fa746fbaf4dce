package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perfectism-co/easyBuy/apperrors"
)

func TestVerifyAccess(t *testing.T) {
	env := newTestEnv()
	user := env.seedUser(t, "token@example.com", "password123")

	t.Run("valid token round-trips the user id", func(t *testing.T) {
		token, err := env.tokens.IssueAccessToken(user.ID)
		require.NoError(t, err)

		got, err := env.tokens.VerifyAccess(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got)
	})

	t.Run("expired token fails with expired error", func(t *testing.T) {
		claims := jwt.MapClaims{
			"sub": user.ID,
			"typ": "access",
			"iat": time.Now().Add(-time.Hour).Unix(),
			"exp": time.Now().Add(-30 * time.Minute).Unix(),
		}
		expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = env.tokens.VerifyAccess(expired)
		assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})

	t.Run("token signed with a different key is invalid", func(t *testing.T) {
		claims := jwt.MapClaims{
			"sub": user.ID,
			"typ": "access",
			"exp": time.Now().Add(time.Hour).Unix(),
		}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
		require.NoError(t, err)

		_, err = env.tokens.VerifyAccess(forged)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("refresh token is not accepted as access token", func(t *testing.T) {
		refresh, err := env.tokens.IssueRefreshToken(user.ID)
		require.NoError(t, err)

		_, err = env.tokens.VerifyAccess(refresh)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestRotate(t *testing.T) {
	ctx := context.Background()

	login := func(t *testing.T, env *testEnv, userID string) string {
		t.Helper()
		refresh, err := env.tokens.IssueRefreshToken(userID)
		require.NoError(t, err)
		user, err := env.repo.FindByID(ctx, userID)
		require.NoError(t, err)
		user.RefreshTokens = append(user.RefreshTokens, refresh)
		require.NoError(t, env.repo.Save(ctx, user))
		return refresh
	}

	t.Run("rotation kills the old token and arms the new one", func(t *testing.T) {
		env := newTestEnv()
		user := env.seedUser(t, "rotate@example.com", "password123")
		oldToken := login(t, env, user.ID)

		pair, err := env.tokens.Rotate(ctx, oldToken)
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		assert.NotEqual(t, oldToken, pair.RefreshToken)

		// Old token no longer identifies the user.
		_, err = env.tokens.Rotate(ctx, oldToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

		// New token works exactly once.
		next, err := env.tokens.Rotate(ctx, pair.RefreshToken)
		require.NoError(t, err)
		_, err = env.tokens.Rotate(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
		_ = next
	})

	t.Run("swap is atomic in the stored aggregate", func(t *testing.T) {
		env := newTestEnv()
		user := env.seedUser(t, "atomic@example.com", "password123")
		oldToken := login(t, env, user.ID)

		pair, err := env.tokens.Rotate(ctx, oldToken)
		require.NoError(t, err)

		stored, err := env.repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.NotContains(t, stored.RefreshTokens, oldToken)
		assert.Contains(t, stored.RefreshTokens, pair.RefreshToken)
	})

	t.Run("well-formed token outside any allowlist is invalid", func(t *testing.T) {
		env := newTestEnv()
		user := env.seedUser(t, "orphan@example.com", "password123")
		stray, err := env.tokens.IssueRefreshToken(user.ID)
		require.NoError(t, err)

		_, err = env.tokens.Rotate(ctx, stray)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("garbage token is invalid", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.tokens.Rotate(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()

	t.Run("revoked token cannot rotate", func(t *testing.T) {
		env := newTestEnv()
		user := env.seedUser(t, "revoke@example.com", "password123")
		refresh, err := env.tokens.IssueRefreshToken(user.ID)
		require.NoError(t, err)
		user.RefreshTokens = append(user.RefreshTokens, refresh)
		require.NoError(t, env.repo.Save(ctx, user))

		require.NoError(t, env.tokens.Revoke(ctx, refresh))

		_, err = env.tokens.Rotate(ctx, refresh)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("repeat revoke is a no-op success", func(t *testing.T) {
		env := newTestEnv()
		user := env.seedUser(t, "repeat@example.com", "password123")
		refresh, err := env.tokens.IssueRefreshToken(user.ID)
		require.NoError(t, err)
		user.RefreshTokens = append(user.RefreshTokens, refresh)
		require.NoError(t, env.repo.Save(ctx, user))

		require.NoError(t, env.tokens.Revoke(ctx, refresh))
		assert.NoError(t, env.tokens.Revoke(ctx, refresh))
	})

	t.Run("token of a nonexistent user is an error", func(t *testing.T) {
		env := newTestEnv()
		stray, err := env.tokens.IssueRefreshToken("no-such-user")
		require.NoError(t, err)

		err = env.tokens.Revoke(ctx, stray)
		assert.True(t, apperrors.IsKind(err, apperrors.KindAuth))
	})
}
