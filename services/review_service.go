package services

import (
	"context"

	"github.com/perfectism-co/easyBuy/apperrors"
	"github.com/perfectism-co/easyBuy/locks"
	"github.com/perfectism-co/easyBuy/models"
	"github.com/perfectism-co/easyBuy/repository"
)

const maxReviewImages = 5

// ReviewService attaches at most one review to an order. A review with any
// content blocks further attachment until it is detached.
type ReviewService struct {
	userRepo  repository.UserRepository
	userLocks *locks.KeyedMutex
}

func NewReviewService(userRepo repository.UserRepository, userLocks *locks.KeyedMutex) *ReviewService {
	return &ReviewService{userRepo: userRepo, userLocks: userLocks}
}

// Attach stores comment, rating and image blobs on the order. The comment
// may be empty; the rating must be 1..5; at most five images.
func (s *ReviewService) Attach(ctx context.Context, userID, orderID, comment string, rating int, images [][]byte) error {
	if rating < 1 || rating > 5 {
		return apperrors.Validation("rating must be between 1 and 5")
	}
	if len(images) > maxReviewImages {
		return apperrors.Validation("at most %d images are allowed", maxReviewImages)
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
	if !order.Review.IsEmpty() {
		return apperrors.Conflict("order already has a review")
	}

	order.Review = &models.Review{
		Comment: comment,
		Rating:  rating,
		Images:  images,
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return apperrors.Upstream("failed to save review", err)
	}
	return nil
}

// Detach clears the order's review entirely, allowing a later re-attach.
func (s *ReviewService) Detach(ctx context.Context, userID, orderID string) error {
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
	if order.Review == nil {
		return apperrors.NotFound("order has no review")
	}

	order.Review = nil

	if err := s.userRepo.Save(ctx, user); err != nil {
		return apperrors.Upstream("failed to delete review", err)
	}
	return nil
}

// FetchImage returns the raw bytes of the review image at index. Indices
// are positional and reset when a review is detached and re-attached.
func (s *ReviewService) FetchImage(ctx context.Context, userID, orderID string, index int) ([]byte, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	order := user.FindOrder(orderID)
	if order == nil {
		return nil, apperrors.NotFound("order not found")
	}
	if order.Review == nil {
		return nil, apperrors.NotFound("order has no review")
	}
	if index < 0 || index >= len(order.Review.Images) {
		return nil, apperrors.NotFound("image not found")
	}
	return order.Review.Images[index], nil
}

func (s *ReviewService) loadUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Upstream("failed to load user", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user not found")
	}
	return user, nil
}
