package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"adorn-jewellery/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrDuplicateOrderNumber  = errors.New("order number already exists")
	ErrOutOfStock            = errors.New("insufficient stock")
	ErrProductUnavailable    = errors.New("product is not available")
	ErrTotalMismatch         = errors.New("order total does not match current prices")
	ErrInvalidOrderQuantity  = errors.New("order quantity must be at least 1")
	ErrOrderWithoutLineItems = errors.New("order has no line items")
)

// OutOfStockError reports the product that could not cover the requested quantity
type OutOfStockError struct {
	ProductID uuid.UUID
	Name      string
	Requested int
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.Name, e.Requested, e.Available)
}

func (e *OutOfStockError) Is(target error) bool {
	return target == ErrOutOfStock
}

// PlaceOrderParams describes one checkout
type PlaceOrderParams struct {
	// Order must carry ID, OrderNumber, shipping details, status and timestamps.
	// Items and TotalAmount are filled in by PlaceOrder.
	Order *domain.Order
	Lines []domain.LineRequest
	// ExpectedTotal, when set, must equal the total computed from current prices
	ExpectedTotal *decimal.Decimal
	// ClearCart deletes the ordering user's cart rows in the same transaction
	ClearCart bool
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	PlaceOrder(ctx context.Context, params PlaceOrderParams) error
	FindByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	List(ctx context.Context, status *domain.OrderStatus) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, orderNumber string, status domain.OrderStatus) error
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// PlaceOrder persists the order, its items, the stock decrements and the cart
// clear in a single transaction. Product rows are locked in id order so
// concurrent checkouts serialize on shared products instead of deadlocking.
func (r *orderRepository) PlaceOrder(ctx context.Context, params PlaceOrderParams) error {
	if len(params.Lines) == 0 {
		return ErrOrderWithoutLineItems
	}

	lines := domain.MergeLines(params.Lines)
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductID.String() < lines[j].ProductID.String()
	})

	order := params.Order
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		items := make([]domain.OrderItem, 0, len(lines))
		total := decimal.Zero

		for _, line := range lines {
			if line.Quantity < 1 {
				return ErrInvalidOrderQuantity
			}

			var (
				name      string
				price     decimal.Decimal
				stock     int
				available bool
			)
			err := tx.QueryRowContext(ctx, `
				SELECT name, price, stock, is_available
				FROM products
				WHERE id = $1
				FOR UPDATE
			`, line.ProductID).Scan(&name, &price, &stock, &available)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
			}
			if err != nil {
				return fmt.Errorf("failed to lock product: %w", err)
			}
			if !available {
				return fmt.Errorf("%w: %s", ErrProductUnavailable, name)
			}
			if stock < line.Quantity {
				return &OutOfStockError{ProductID: line.ProductID, Name: name, Requested: line.Quantity, Available: stock}
			}

			item := domain.OrderItem{
				ID:          uuid.New(),
				OrderID:     order.ID,
				ProductID:   line.ProductID,
				ProductName: name,
				Quantity:    line.Quantity,
				Price:       price,
			}
			total = total.Add(item.Subtotal())
			items = append(items, item)
		}

		if params.ExpectedTotal != nil && !params.ExpectedTotal.Equal(total) {
			return fmt.Errorf("%w: expected %s, computed %s", ErrTotalMismatch, params.ExpectedTotal.StringFixed(2), total.StringFixed(2))
		}
		order.TotalAmount = total

		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (id, order_number, user_id, first_name, last_name, email, phone,
				address, city, state, postal_code, country, total_amount, status, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		`,
			order.ID,
			order.OrderNumber,
			nullableUUID(order.UserID),
			order.FirstName,
			order.LastName,
			order.Email,
			order.Phone,
			order.Address,
			order.City,
			order.State,
			order.PostalCode,
			order.Country,
			order.TotalAmount,
			string(order.Status),
			order.Notes,
			order.CreatedAt,
			order.UpdatedAt,
		)
		if err != nil {
			if isPgDuplicateKeyError(err) {
				return ErrDuplicateOrderNumber
			}
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, item := range items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (id, order_id, product_id, product_name, quantity, price)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, item.ID, item.OrderID, item.ProductID, item.ProductName, item.Quantity, item.Price)
			if err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}

			_, err = tx.ExecContext(ctx,
				`UPDATE products SET stock = stock - $2 WHERE id = $1`, item.ProductID, item.Quantity)
			if err != nil {
				return fmt.Errorf("failed to decrement stock: %w", err)
			}
		}

		if params.ClearCart && order.UserID != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, *order.UserID); err != nil {
				return fmt.Errorf("failed to clear cart: %w", err)
			}
		}

		order.Items = items
		return nil
	})
}

const orderColumns = `id, order_number, user_id, first_name, last_name, email, phone, address, city,
		state, postal_code, country, total_amount, status, notes, created_at, updated_at`

// FindByNumber retrieves an order and its items
func (r *orderRepository) FindByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, orderNumber))
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	if err := r.attachItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// ListByUser retrieves a user's orders, newest first
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, order_number DESC`
	return r.list(ctx, query, userID)
}

// List retrieves all orders, optionally narrowed to one status, newest first
func (r *orderRepository) List(ctx context.Context, status *domain.OrderStatus) ([]*domain.Order, error) {
	if status == nil {
		return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, order_number DESC`)
	}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = $1 ORDER BY created_at DESC, order_number DESC`
	return r.list(ctx, query, string(*status))
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderNumber string, status domain.OrderStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $2 WHERE order_number = $1`, orderNumber, string(status))
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return rowsAffectedOr(result, ErrOrderNotFound)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads the items of every order in one query
func (r *orderRepository) attachItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Order, len(orders))
	placeholders := make([]string, 0, len(orders))
	args := make([]interface{}, 0, len(orders))
	for _, order := range orders {
		order.Items = []domain.OrderItem{}
		byID[order.ID] = order
		args = append(args, order.ID)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT id, order_id, product_id, product_name, quantity, price
		FROM order_items
		WHERE order_id IN (%s)
		ORDER BY product_name ASC, id ASC
	`, strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order items: %w", err)
	}
	return nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	var (
		userID uuid.NullUUID
		status string
	)
	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&userID,
		&order.FirstName,
		&order.LastName,
		&order.Email,
		&order.Phone,
		&order.Address,
		&order.City,
		&order.State,
		&order.PostalCode,
		&order.Country,
		&order.TotalAmount,
		&status,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		id := userID.UUID
		order.UserID = &id
	}
	order.Status = domain.OrderStatus(status)
	return order, nil
}

func nullableUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
