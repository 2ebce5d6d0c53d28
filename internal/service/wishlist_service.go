package service

import (
	"context"
	"errors"
	"fmt"

	"adorn-jewellery/internal/domain"
	"adorn-jewellery/internal/repository"

	"github.com/google/uuid"
)

const (
	WishlistAdded   = "added"
	WishlistRemoved = "removed"
)

// ToggleResult reports what a wishlist toggle did
type ToggleResult struct {
	Action string `json:"action"`
	Count  int    `json:"wishlist_count"`
}

// WishlistService defines the interface for wishlist business logic
type WishlistService interface {
	Toggle(ctx context.Context, userID, productID uuid.UUID) (*ToggleResult, error)
	Items(ctx context.Context, userID uuid.UUID) ([]domain.WishlistLine, error)
	Count(ctx context.Context, userID uuid.UUID) (int, error)
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
}

// NewWishlistService creates a new instance of WishlistService
func NewWishlistService(wishlistRepo repository.WishlistRepository) WishlistService {
	return &wishlistService{wishlistRepo: wishlistRepo}
}

func (s *wishlistService) Toggle(ctx context.Context, userID, productID uuid.UUID) (*ToggleResult, error) {
	added, err := s.wishlistRepo.Toggle(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to toggle wishlist item: %w", err)
	}

	count, err := s.Count(ctx, userID)
	if err != nil {
		return nil, err
	}

	action := WishlistRemoved
	if added {
		action = WishlistAdded
	}
	return &ToggleResult{Action: action, Count: count}, nil
}

func (s *wishlistService) Items(ctx context.Context, userID uuid.UUID) ([]domain.WishlistLine, error) {
	lines, err := s.wishlistRepo.Lines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist: %w", err)
	}
	return lines, nil
}

func (s *wishlistService) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.wishlistRepo.Count(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count wishlist: %w", err)
	}
	return count, nil
}
