package repository

import (
	"context"
	"sync"
	"time"

	"github.com/perfectism-co/easyBuy/models"
)

// MemoryUserRepository is an in-process UserRepository used by tests and
// local development. It deep-copies on the way in and out so callers never
// share slices with the stored aggregate.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*models.User)}
}

func (r *MemoryUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, nil
}

func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepository) FindByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		for _, t := range u.RefreshTokens {
			if t == token {
				return cloneUser(u), nil
			}
		}
	}
	return nil, nil
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *MemoryUserRepository) Save(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = cloneUser(user)
	return nil
}

func cloneUser(u *models.User) *models.User {
	out := *u
	out.RefreshTokens = append([]string(nil), u.RefreshTokens...)
	out.Cart.Items = append([]models.CartItem(nil), u.Cart.Items...)
	out.Orders = make([]models.Order, len(u.Orders))
	for i, o := range u.Orders {
		oc := o
		oc.Items = append([]models.OrderItem(nil), o.Items...)
		if o.Coupon != nil {
			c := *o.Coupon
			oc.Coupon = &c
		}
		if o.Review != nil {
			rv := *o.Review
			rv.Images = make([][]byte, len(o.Review.Images))
			for j, img := range o.Review.Images {
				rv.Images[j] = append([]byte(nil), img...)
			}
			oc.Review = &rv
		}
		out.Orders[i] = oc
	}
	return &out
}
