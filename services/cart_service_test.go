package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perfectism-co/easyBuy/apperrors"
	"github.com/perfectism-co/easyBuy/catalog"
)

func seedCatalog(gw *catalog.StaticGateway) {
	gw.Products["A"] = catalog.Product{ID: "A", Name: "Widget", ImageURL: "http://img/a.jpg", Price: 100}
	gw.Products["B"] = catalog.Product{ID: "B", Name: "Gadget", ImageURL: "http://img/b.jpg", Price: 25.5}
}

func TestAddItems(t *testing.T) {
	ctx := context.Background()

	t.Run("adding the same product twice merges quantities", func(t *testing.T) {
		env := newTestEnv()
		seedCatalog(env.gateway)
		svc := NewCartService(env.repo, env.gateway, env.locks)
		user := env.seedUser(t, "merge@example.com", "password123")

		_, err := svc.AddItems(ctx, user.ID, []AddItemInput{{ProductID: "A", Quantity: 2}})
		require.NoError(t, err)

		cart, err := svc.AddItems(ctx, user.ID, []AddItemInput{{ProductID: "A", Quantity: 3}})
		require.NoError(t, err)

		require.Len(t, cart.Items, 1)
		assert.Equal(t, 5, cart.Items[0].Quantity)
		assert.Equal(t, "Widget", cart.Items[0].Name)
		assert.Equal(t, 100.0, cart.Items[0].Price)
	})

	t.Run("unknown product aborts the whole batch", func(t *testing.T) {
		env := newTestEnv()
		seedCatalog(env.gateway)
		svc := NewCartService(env.repo, env.gateway, env.locks)
		user := env.seedUser(t, "atomic@example.com", "password123")

		_, err := svc.AddItems(ctx, user.ID, []AddItemInput{
			{ProductID: "A", Quantity: 1},
			{ProductID: "missing", Quantity: 1},
		})
		require.True(t, apperrors.IsKind(err, apperrors.KindValidation))

		cart, err := svc.GetCart(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, cart.Items, "no partial mutation on batch failure")
	})

	t.Run("zero quantity is rejected", func(t *testing.T) {
		env := newTestEnv()
		seedCatalog(env.gateway)
		svc := NewCartService(env.repo, env.gateway, env.locks)
		user := env.seedUser(t, "zero@example.com", "password123")

		_, err := svc.AddItems(ctx, user.ID, []AddItemInput{{ProductID: "A", Quantity: 0}})
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("concurrent adds to one cart all survive", func(t *testing.T) {
		// Whole-aggregate save is last-writer-wins without the per-user
		// lock; this pins the serialized behavior.
		env := newTestEnv()
		seedCatalog(env.gateway)
		svc := NewCartService(env.repo, env.gateway, env.locks)
		user := env.seedUser(t, "race@example.com", "password123")

		const workers = 20
		var wg sync.WaitGroup
		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go func() {
				defer wg.Done()
				_, err := svc.AddItems(ctx, user.ID, []AddItemInput{{ProductID: "A", Quantity: 1}})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		cart, err := svc.GetCart(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, workers, cart.Items[0].Quantity)
	})
}

func TestRemoveItems(t *testing.T) {
	ctx := context.Background()

	t.Run("removes all matching items in one pass", func(t *testing.T) {
		env := newTestEnv()
		seedCatalog(env.gateway)
		svc := NewCartService(env.repo, env.gateway, env.locks)
		user := env.seedUser(t, "remove@example.com", "password123")

		_, err := svc.AddItems(ctx, user.ID, []AddItemInput{
			{ProductID: "A", Quantity: 1},
			{ProductID: "B", Quantity: 2},
		})
		require.NoError(t, err)

		removed, err := svc.RemoveItems(ctx, user.ID, []string{"A", "B", "not-in-cart"})
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		cart, err := svc.GetCart(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
	})

	t.Run("no match is not found", func(t *testing.T) {
		env := newTestEnv()
		svc := NewCartService(env.repo, env.gateway, env.locks)
		user := env.seedUser(t, "nomatch@example.com", "password123")

		_, err := svc.RemoveItems(ctx, user.ID, []string{"A"})
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})
}

func TestSetQuantity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	seedCatalog(env.gateway)
	svc := NewCartService(env.repo, env.gateway, env.locks)
	user := env.seedUser(t, "qty@example.com", "password123")

	_, err := svc.AddItems(ctx, user.ID, []AddItemInput{{ProductID: "A", Quantity: 2}})
	require.NoError(t, err)

	t.Run("quantity below one always fails", func(t *testing.T) {
		for _, q := range []int{0, -1, -100} {
			_, err := svc.SetQuantity(ctx, user.ID, "A", q)
			assert.True(t, apperrors.IsKind(err, apperrors.KindValidation), "quantity %d", q)
		}
	})

	t.Run("absent product is not found", func(t *testing.T) {
		_, err := svc.SetQuantity(ctx, user.ID, "B", 3)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})

	t.Run("overwrite succeeds and repeats idempotently", func(t *testing.T) {
		cart, err := svc.SetQuantity(ctx, user.ID, "A", 7)
		require.NoError(t, err)
		assert.Equal(t, 7, cart.Items[0].Quantity)

		cart, err = svc.SetQuantity(ctx, user.ID, "A", 7)
		require.NoError(t, err)
		assert.Equal(t, 7, cart.Items[0].Quantity)
	})
}
