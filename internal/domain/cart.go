package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps the quantity of a single cart line
const MaxLineQuantity = 99

// CartItem is a (user, product) row with a quantity between one and MaxLineQuantity
type CartItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CartLine is a cart item joined with the product fields needed for display
type CartLine struct {
	ProductID uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns price times quantity
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineRequest is a product reference with a quantity, as sent by clients
// for checkout snapshots and guest cart merges
type LineRequest struct {
	ProductID uuid.UUID `json:"id"`
	Quantity  int       `json:"quantity"`
}

// WishlistItem marks a product as saved by a user; presence is membership
type WishlistItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// WishlistLine is a wishlist item joined with product display fields
type WishlistLine struct {
	ProductID   uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image"`
	IsAvailable bool            `json:"is_available"`
	AddedAt     time.Time       `json:"added_at"`
}

// MergeLines sums the quantities of lines naming the same product,
// keeping the order in which products first appear
func MergeLines(lines []LineRequest) []LineRequest {
	index := make(map[uuid.UUID]int, len(lines))
	merged := make([]LineRequest, 0, len(lines))
	for _, line := range lines {
		if i, ok := index[line.ProductID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged
}
