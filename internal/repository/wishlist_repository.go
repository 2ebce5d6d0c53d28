package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"adorn-jewellery/internal/domain"

	"github.com/google/uuid"
)

// WishlistRepository defines the interface for per-user wishlist membership
type WishlistRepository interface {
	// Toggle removes the product when present and adds it otherwise.
	// It reports whether the product is a member afterwards.
	Toggle(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	Count(ctx context.Context, userID uuid.UUID) (int, error)
	Lines(ctx context.Context, userID uuid.UUID) ([]domain.WishlistLine, error)
}

type wishlistRepository struct {
	db *sql.DB
}

// NewWishlistRepository creates a new instance of WishlistRepository
func NewWishlistRepository(db *sql.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) Toggle(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var added bool
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var removedID uuid.UUID
		err := tx.QueryRowContext(ctx,
			`DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2 RETURNING id`,
			userID, productID,
		).Scan(&removedID)
		if err == nil {
			added = false
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to remove wishlist item: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO wishlist_items (id, user_id, product_id, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, product_id) DO NOTHING
		`, uuid.New(), userID, productID, time.Now())
		if err != nil {
			if refErr := referenceError(err, "fk_wishlist_items_user", "fk_wishlist_items_product"); refErr != nil {
				return refErr
			}
			return fmt.Errorf("failed to add wishlist item: %w", err)
		}
		added = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

func (r *wishlistRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wishlist_items WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count wishlist items: %w", err)
	}
	return count, nil
}

// Lines joins wishlist rows to their products, most recent first
func (r *wishlistRepository) Lines(ctx context.Context, userID uuid.UUID) ([]domain.WishlistLine, error) {
	query := `
		SELECT p.id, p.name, p.slug, p.price, p.image_url, p.is_available, wi.created_at
		FROM wishlist_items wi
		JOIN products p ON p.id = wi.product_id
		WHERE wi.user_id = $1
		ORDER BY wi.created_at DESC, p.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist items: %w", err)
	}
	defer rows.Close()

	lines := []domain.WishlistLine{}
	for rows.Next() {
		var line domain.WishlistLine
		if err := rows.Scan(&line.ProductID, &line.Name, &line.Slug, &line.Price, &line.ImageURL, &line.IsAvailable, &line.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		lines = append(lines, line)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wishlist items: %w", err)
	}
	return lines, nil
}
