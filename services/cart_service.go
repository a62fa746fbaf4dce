package services

import (
	"context"

	"github.com/perfectism-co/easyBuy/apperrors"
	"github.com/perfectism-co/easyBuy/catalog"
	"github.com/perfectism-co/easyBuy/locks"
	"github.com/perfectism-co/easyBuy/models"
	"github.com/perfectism-co/easyBuy/repository"
)

// AddItemInput is one requested cart line.
type AddItemInput struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// CartService mutates the cart inside the user aggregate. All mutations are
// load-mutate-save under the user's lock.
type CartService struct {
	userRepo  repository.UserRepository
	gateway   catalog.Gateway
	userLocks *locks.KeyedMutex
}

func NewCartService(userRepo repository.UserRepository, gateway catalog.Gateway, userLocks *locks.KeyedMutex) *CartService {
	return &CartService{userRepo: userRepo, gateway: gateway, userLocks: userLocks}
}

// AddItems resolves and merges a batch of items into the cart. The batch is
// atomic: the first unresolvable product aborts the whole request before
// any mutation. An item already in the cart has its quantity incremented;
// new items are appended as catalog snapshots.
func (s *CartService) AddItems(ctx context.Context, userID string, items []AddItemInput) (*models.Cart, error) {
	if len(items) == 0 {
		return nil, apperrors.Validation("at least one item is required")
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, apperrors.Validation("invalid quantity for product %s", item.ProductID)
		}
	}

	// Resolve everything before touching the cart.
	resolved := make([]*catalog.Product, len(items))
	for i, item := range items {
		product, err := s.gateway.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, apperrors.Upstream("catalog lookup failed", err)
		}
		if product == nil {
			return nil, apperrors.Validation("invalid product %s", item.ProductID)
		}
		resolved[i] = product
	}

	s.userLocks.Lock(userID)
	defer s.userLocks.Unlock(userID)

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i, item := range items {
		merged := false
		for j := range user.Cart.Items {
			if user.Cart.Items[j].ProductID == item.ProductID {
				user.Cart.Items[j].Quantity += item.Quantity
				merged = true
				break
			}
		}
		if !merged {
			user.Cart.Items = append(user.Cart.Items, models.CartItem{
				ProductID: resolved[i].ID,
				Name:      resolved[i].Name,
				ImageURL:  resolved[i].ImageURL,
				Price:     resolved[i].Price,
				Quantity:  item.Quantity,
			})
		}
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, apperrors.Upstream("failed to save cart", err)
	}
	return &user.Cart, nil
}

// RemoveItems drops every cart item whose product id is in productIDs and
// returns how many were removed. Removing nothing is a NotFound.
func (s *CartService) RemoveItems(ctx context.Context, userID string, productIDs []string) (int, error) {
	if len(productIDs) == 0 {
		return 0, apperrors.Validation("at least one product id is required")
	}

	drop := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		drop[id] = true
	}

	s.userLocks.Lock(userID)
	defer s.userLocks.Unlock(userID)

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	kept := user.Cart.Items[:0]
	removed := 0
	for _, item := range user.Cart.Items {
		if drop[item.ProductID] {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	if removed == 0 {
		return 0, apperrors.NotFound("no matching items in cart")
	}
	user.Cart.Items = kept

	if err := s.userRepo.Save(ctx, user); err != nil {
		return 0, apperrors.Upstream("failed to save cart", err)
	}
	return removed, nil
}

// SetQuantity overwrites the quantity of an existing cart item.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, apperrors.Validation("quantity must be at least 1")
	}

	s.userLocks.Lock(userID)
	defer s.userLocks.Unlock(userID)

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range user.Cart.Items {
		if user.Cart.Items[i].ProductID == productID {
			user.Cart.Items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil, apperrors.NotFound("product %s not in cart", productID)
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, apperrors.Upstream("failed to save cart", err)
	}
	return &user.Cart, nil
}

// GetCart returns the user's current cart.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &user.Cart, nil
}

func (s *CartService) loadUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Upstream("failed to load user", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user not found")
	}
	return user, nil
}
