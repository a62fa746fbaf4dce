package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perfectism-co/easyBuy/apperrors"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a user with an empty cart and history", func(t *testing.T) {
		env := newTestEnv()
		svc := NewAuthService(env.repo, env.tokens)

		user, err := svc.Register(ctx, "new@example.com", "password123", "New User")
		require.NoError(t, err)

		stored, err := env.repo.FindByEmail(ctx, "new@example.com")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, user.ID, stored.ID)
		assert.NotNil(t, stored.Cart.Items)
		assert.Empty(t, stored.Cart.Items)
		assert.Empty(t, stored.Orders)
		assert.NotEqual(t, "password123", stored.Password)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		env := newTestEnv()
		svc := NewAuthService(env.repo, env.tokens)

		_, err := svc.Register(ctx, "dup@example.com", "password123", "First")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "dup@example.com", "password456", "Second")
		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a pair and records the refresh token", func(t *testing.T) {
		env := newTestEnv()
		svc := NewAuthService(env.repo, env.tokens)
		user := env.seedUser(t, "login@example.com", "password123")

		pair, err := svc.Login(ctx, "login@example.com", "password123")
		require.NoError(t, err)

		got, err := env.tokens.VerifyAccess(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got)

		stored, err := env.repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Contains(t, stored.RefreshTokens, pair.RefreshToken)
	})

	t.Run("wrong password is unauthenticated", func(t *testing.T) {
		env := newTestEnv()
		svc := NewAuthService(env.repo, env.tokens)
		env.seedUser(t, "wrong@example.com", "password123")

		_, err := svc.Login(ctx, "wrong@example.com", "nope")
		assert.True(t, apperrors.IsKind(err, apperrors.KindAuth))
	})

	t.Run("unknown email is unauthenticated", func(t *testing.T) {
		env := newTestEnv()
		svc := NewAuthService(env.repo, env.tokens)

		_, err := svc.Login(ctx, "ghost@example.com", "password123")
		assert.True(t, apperrors.IsKind(err, apperrors.KindAuth))
	})
}

func TestLogoutRoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := NewAuthService(env.repo, env.tokens)
	env.seedUser(t, "session@example.com", "password123")

	pair, err := svc.Login(ctx, "session@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
