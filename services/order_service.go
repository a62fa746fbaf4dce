package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/perfectism-co/easyBuy/apperrors"
	"github.com/perfectism-co/easyBuy/catalog"
	"github.com/perfectism-co/easyBuy/locks"
	"github.com/perfectism-co/easyBuy/logger"
	"github.com/perfectism-co/easyBuy/models"
	"github.com/perfectism-co/easyBuy/repository"
)

// EventPublisher receives serialized order events. Publishing is
// best-effort: failures are logged, never surfaced to the caller.
type EventPublisher interface {
	Publish(ctx context.Context, message []byte) error
}

// CreateOrderInput carries the raw identifiers for order creation; every
// price is resolved from the catalog at creation time.
type CreateOrderInput struct {
	Items      []AddItemInput `json:"items" binding:"required,dive"`
	CouponID   string         `json:"coupon_id"`
	ShippingID string         `json:"shipping_id" binding:"required"`
}

// UpdateOrderInput re-resolves items from the catalog but trusts the
// caller-supplied shipping and coupon values as already resolved.
type UpdateOrderInput struct {
	Items          []AddItemInput `json:"items" binding:"required,dive"`
	ShippingMethod string         `json:"shipping_method" binding:"required"`
	ShippingFee    float64        `json:"shipping_fee"`
	Coupon         *models.Coupon `json:"coupon"`
}

// OrderCreatedEvent is emitted after an order is persisted.
type OrderCreatedEvent struct {
	Event       string    `json:"event"`
	UserID      string    `json:"user_id"`
	OrderID     string    `json:"order_id"`
	TotalAmount float64   `json:"total_amount"`
	Timestamp   time.Time `json:"timestamp"`
}

type OrderService struct {
	userRepo   repository.UserRepository
	gateway    catalog.Gateway
	userLocks  *locks.KeyedMutex
	publishers []EventPublisher
}

func NewOrderService(userRepo repository.UserRepository, gateway catalog.Gateway, userLocks *locks.KeyedMutex, publishers ...EventPublisher) *OrderService {
	return &OrderService{
		userRepo:   userRepo,
		gateway:    gateway,
		userLocks:  userLocks,
		publishers: publishers,
	}
}

// Create snapshots the requested items into an immutable-priced order.
// Shipping is mandatory and must resolve; a coupon that fails to resolve
// is dropped silently; any unresolvable product aborts the whole order.
func (s *OrderService) Create(ctx context.Context, userID string, input CreateOrderInput) (string, error) {
	if len(input.Items) == 0 {
		return "", apperrors.Validation("at least one item is required")
	}
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return "", apperrors.Validation("invalid quantity for product %s", item.ProductID)
		}
	}

	shipping, err := s.gateway.GetShipping(ctx, input.ShippingID)
	if err != nil {
		return "", apperrors.Upstream("catalog lookup failed", err)
	}
	if shipping == nil {
		return "", apperrors.Validation("invalid shipping %s", input.ShippingID)
	}

	var coupon *models.Coupon
	if input.CouponID != "" {
		found, err := s.gateway.GetCoupon(ctx, input.CouponID)
		if err != nil {
			return "", apperrors.Upstream("catalog lookup failed", err)
		}
		if found != nil {
			coupon = &models.Coupon{Code: found.Code, Discount: found.Discount}
		}
	}

	orderItems, err := s.resolveItems(ctx, input.Items)
	if err != nil {
		return "", err
	}

	order := models.Order{
		ID:             uuid.NewString(),
		Items:          orderItems,
		ShippingMethod: shipping.Method,
		ShippingFee:    shipping.Fee,
		Coupon:         coupon,
		CreatedAt:      time.Now().UTC(),
	}
	order.TotalAmount = totalAmount(&order)

	s.userLocks.Lock(userID)
	defer s.userLocks.Unlock(userID)

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return "", err
	}
	user.Orders = append(user.Orders, order)

	if err := s.userRepo.Save(ctx, user); err != nil {
		return "", apperrors.Upstream("failed to save order", err)
	}

	s.publishCreated(ctx, userID, &order)
	return order.ID, nil
}

// Update replaces an order's contents in place. Items are re-resolved from
// the catalog; shipping and coupon come straight from the caller. The
// creation timestamp is reset to the edit time.
func (s *OrderService) Update(ctx context.Context, userID, orderID string, input UpdateOrderInput) error {
	if len(input.Items) == 0 {
		return apperrors.Validation("at least one item is required")
	}
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return apperrors.Validation("invalid quantity for product %s", item.ProductID)
		}
	}

	orderItems, err := s.resolveItems(ctx, input.Items)
	if err != nil {
		return err
	}

	s.userLocks.Lock(userID)
	defer s.userLocks.Unlock(userID)

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	order := user.FindOrder(orderID)
	if order == nil {
		return apperrors.NotFound("order not found")
	}

	order.Items = orderItems
	order.ShippingMethod = input.ShippingMethod
	order.ShippingFee = input.ShippingFee
	order.Coupon = input.Coupon
	order.CreatedAt = time.Now().UTC()
	order.TotalAmount = totalAmount(order)

	if err := s.userRepo.Save(ctx, user); err != nil {
		return apperrors.Upstream("failed to save order", err)
	}
	return nil
}

// Delete removes an order from the user's history.
func (s *OrderService) Delete(ctx context.Context, userID, orderID string) error {
	s.userLocks.Lock(userID)
	defer s.userLocks.Unlock(userID)

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	kept := user.Orders[:0]
	found := false
	for _, order := range user.Orders {
		if order.ID == orderID {
			found = true
			continue
		}
		kept = append(kept, order)
	}
	if !found {
		return apperrors.NotFound("order not found")
	}
	user.Orders = kept

	if err := s.userRepo.Save(ctx, user); err != nil {
		return apperrors.Upstream("failed to delete order", err)
	}
	return nil
}

// List returns the user's orders, oldest first.
func (s *OrderService) List(ctx context.Context, userID string) ([]models.Order, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Orders, nil
}

// Get returns one order by id.
func (s *OrderService) Get(ctx context.Context, userID, orderID string) (*models.Order, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	order := user.FindOrder(orderID)
	if order == nil {
		return nil, apperrors.NotFound("order not found")
	}
	return order, nil
}

func (s *OrderService) resolveItems(ctx context.Context, items []AddItemInput) ([]models.OrderItem, error) {
	out := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		product, err := s.gateway.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, apperrors.Upstream("catalog lookup failed", err)
		}
		if product == nil {
			return nil, apperrors.Validation("invalid product %s", item.ProductID)
		}
		out = append(out, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			ImageURL:  product.ImageURL,
			Price:     product.Price,
			Quantity:  item.Quantity,
		})
	}
	return out, nil
}

func (s *OrderService) publishCreated(ctx context.Context, userID string, order *models.Order) {
	if len(s.publishers) == 0 {
		return
	}

	event := OrderCreatedEvent{
		Event:       "order.created",
		UserID:      userID,
		OrderID:     order.ID,
		TotalAmount: order.TotalAmount,
		Timestamp:   order.CreatedAt,
	}
	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Error("failed to marshal order event", zap.Error(err))
		return
	}
	for _, p := range s.publishers {
		if err := p.Publish(ctx, data); err != nil {
			logger.Log.Warn("order event publish failed",
				zap.String("order_id", order.ID),
				zap.Error(err),
			)
		}
	}
}

func (s *OrderService) loadUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Upstream("failed to load user", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user not found")
	}
	return user, nil
}

// totalAmount applies the order pricing formula. The discount is not
// clamped: a coupon larger than the subtotal reduces the total as-is.
func totalAmount(order *models.Order) float64 {
	total := order.Subtotal() + order.ShippingFee
	if order.Coupon != nil {
		total -= order.Coupon.Discount
	}
	return total
}
