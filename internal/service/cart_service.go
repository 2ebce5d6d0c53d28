package service

import (
	"context"
	"errors"
	"fmt"

	"adorn-jewellery/internal/domain"
	"adorn-jewellery/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartView is the cart as displayed to the customer
type CartView struct {
	Items []CartViewLine  `json:"items"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// CartViewLine is a cart line with its subtotal
type CartViewLine struct {
	domain.CartLine
	Subtotal decimal.Decimal `json:"subtotal"`
}

// MergeResult reports the outcome of merging a guest cart
type MergeResult struct {
	Merged  int         `json:"merged"`
	Skipped []uuid.UUID `json:"skipped"`
	Count   int         `json:"cart_count"`
}

// CartService defines the interface for cart business logic
type CartService interface {
	Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (int, error)
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (int, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) (int, error)
	Merge(ctx context.Context, userID uuid.UUID, lines []domain.LineRequest) (*MergeResult, error)
	Items(ctx context.Context, userID uuid.UUID) (*CartView, error)
	Count(ctx context.Context, userID uuid.UUID) (int, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService creates a new instance of CartService
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// Add puts quantity units of an available product in the cart and returns
// the number of distinct products in it. The line total is capped at
// domain.MaxLineQuantity.
func (s *cartService) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (int, error) {
	if quantity < 1 || quantity > domain.MaxLineQuantity {
		return 0, ErrInvalidQuantity
	}
	if err := s.requireAvailable(ctx, productID); err != nil {
		return 0, err
	}

	if err := s.cartRepo.Add(ctx, userID, productID, quantity); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to add to cart: %w", err)
	}
	return s.Count(ctx, userID)
}

// UpdateQuantity sets the quantity of a cart line; zero removes it
func (s *cartService) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (int, error) {
	if quantity < 0 || quantity > domain.MaxLineQuantity {
		return 0, ErrInvalidQuantity
	}
	if quantity == 0 {
		return s.Remove(ctx, userID, productID)
	}

	if err := s.cartRepo.SetQuantity(ctx, userID, productID, quantity); err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to update cart item: %w", err)
	}
	return s.Count(ctx, userID)
}

func (s *cartService) Remove(ctx context.Context, userID, productID uuid.UUID) (int, error) {
	if err := s.cartRepo.Remove(ctx, userID, productID); err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to remove cart item: %w", err)
	}
	return s.Count(ctx, userID)
}

// Merge adds a guest cart to the user's cart. Lines naming unknown or
// unavailable products, or with a quantity below one, are skipped; larger
// quantities are capped at domain.MaxLineQuantity.
func (s *cartService) Merge(ctx context.Context, userID uuid.UUID, lines []domain.LineRequest) (*MergeResult, error) {
	result := &MergeResult{Skipped: []uuid.UUID{}}

	for _, line := range domain.MergeLines(lines) {
		if line.Quantity < 1 {
			result.Skipped = append(result.Skipped, line.ProductID)
			continue
		}
		if line.Quantity > domain.MaxLineQuantity {
			line.Quantity = domain.MaxLineQuantity
		}

		err := s.requireAvailable(ctx, line.ProductID)
		if err == nil {
			err = s.cartRepo.Add(ctx, userID, line.ProductID, line.Quantity)
		}
		switch {
		case err == nil:
			result.Merged++
		case errors.Is(err, repository.ErrProductNotFound), errors.Is(err, repository.ErrProductUnavailable):
			result.Skipped = append(result.Skipped, line.ProductID)
		default:
			return nil, fmt.Errorf("failed to merge cart: %w", err)
		}
	}

	count, err := s.Count(ctx, userID)
	if err != nil {
		return nil, err
	}
	result.Count = count
	return result, nil
}

func (s *cartService) Items(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	lines, err := s.cartRepo.Lines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	view := &CartView{Items: make([]CartViewLine, 0, len(lines)), Total: decimal.Zero}
	for _, line := range lines {
		subtotal := line.Subtotal()
		view.Items = append(view.Items, CartViewLine{CartLine: line, Subtotal: subtotal})
		view.Total = view.Total.Add(subtotal)
	}
	view.Count = len(view.Items)
	return view, nil
}

func (s *cartService) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.cartRepo.Count(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count cart: %w", err)
	}
	return count, nil
}

// Clear empties the user's cart
func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *cartService) requireAvailable(ctx context.Context, productID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return repository.ErrProductNotFound
		}
		return fmt.Errorf("failed to load product: %w", err)
	}
	if !product.IsAvailable {
		return repository.ErrProductUnavailable
	}
	return nil
}
