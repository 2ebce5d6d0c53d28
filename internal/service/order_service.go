package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"adorn-jewellery/internal/domain"
	"adorn-jewellery/internal/notification"
	"adorn-jewellery/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// orderNumberAttempts bounds retries when a generated order number collides
const orderNumberAttempts = 3

// CheckoutInput is a validated checkout request
type CheckoutInput struct {
	Shipping domain.ShippingDetails
	Notes    string
	// Lines is the client cart snapshot; when empty the persisted cart is used
	Lines       []domain.LineRequest
	ClientTotal *decimal.Decimal
}

// OrderService defines the interface for checkout and order management
type OrderService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*domain.Order, error)
	History(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	GetOrder(ctx context.Context, userID uuid.UUID, orderNumber string) (*domain.Order, error)
	ListOrders(ctx context.Context, status string) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, orderNumber, status string) (*domain.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	notifier  notification.Notifier
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	notifier notification.Notifier,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// GenerateOrderNumber returns AJ-YYYYMMDD- followed by eight random hex digits
func GenerateOrderNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("AJ-%s-%s", at.Format("20060102"), suffix)
}

// PlaceOrder persists the order in one transaction, then notifies the
// customer and the shop. Notification failures do not fail the order.
func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*domain.Order, error) {
	lines := input.Lines
	if len(lines) == 0 {
		cartLines, err := s.cartRepo.Lines(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load cart: %w", err)
		}
		for _, line := range cartLines {
			lines = append(lines, domain.LineRequest{ProductID: line.ProductID, Quantity: line.Quantity})
		}
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	now := s.now()
	order := &domain.Order{
		ID:              uuid.New(),
		UserID:          &userID,
		ShippingDetails: input.Shipping,
		Status:          domain.OrderStatusPending,
		Notes:           strings.TrimSpace(input.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var err error
	for attempt := 1; attempt <= orderNumberAttempts; attempt++ {
		order.OrderNumber = GenerateOrderNumber(now)
		err = s.orderRepo.PlaceOrder(ctx, repository.PlaceOrderParams{
			Order:         order,
			Lines:         lines,
			ExpectedTotal: input.ClientTotal,
			ClearCart:     true,
		})
		if !errors.Is(err, repository.ErrDuplicateOrderNumber) {
			break
		}
		s.logger.Warn("Order number collision, retrying",
			zap.String("order_number", order.OrderNumber),
			zap.Int("attempt", attempt),
		)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", userID.String()),
		zap.String("total", order.TotalAmount.StringFixed(2)),
		zap.Int("items", len(order.Items)),
	)

	if !s.notifier.OrderPlaced(context.WithoutCancel(ctx), order) {
		s.logger.Warn("Order notifications incomplete", zap.String("order_number", order.OrderNumber))
	}

	return order, nil
}

// History returns the user's orders, newest first
func (s *orderService) History(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}
	return orders, nil
}

// GetOrder returns one of the user's orders. Orders owned by someone else
// are reported as not found.
func (s *orderService) GetOrder(ctx context.Context, userID uuid.UUID, orderNumber string) (*domain.Order, error) {
	order, err := s.orderRepo.FindByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, repository.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order.UserID == nil || *order.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

// ListOrders lists every order; a non-empty status narrows the list
func (s *orderService) ListOrders(ctx context.Context, status string) ([]*domain.Order, error) {
	var filter *domain.OrderStatus
	if status != "" {
		parsed, err := parseStatus(status)
		if err != nil {
			return nil, err
		}
		filter = &parsed
	}

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderNumber, status string) (*domain.Order, error) {
	parsed, err := parseStatus(status)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderNumber, parsed); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.logger.Info("Order status updated",
		zap.String("order_number", orderNumber),
		zap.String("status", string(parsed)),
	)

	order, err := s.orderRepo.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	return order, nil
}

func parseStatus(raw string) (domain.OrderStatus, error) {
	status := domain.OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return status, nil
}
