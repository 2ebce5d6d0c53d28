package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"adorn-jewellery/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product with this slug already exists")
)

// ProductSort is one of the enumerated catalog sort keys
type ProductSort string

const (
	SortDefault   ProductSort = ""
	SortPriceLow  ProductSort = "price_low"
	SortPriceHigh ProductSort = "price_high"
	SortNewest    ProductSort = "newest"
)

// orderBy maps each sort key to a fixed ORDER BY clause; ties break on id
var orderBy = map[ProductSort]string{
	SortDefault:   "p.name ASC, p.id ASC",
	SortPriceLow:  "p.price ASC, p.id ASC",
	SortPriceHigh: "p.price DESC, p.id ASC",
	SortNewest:    "p.created_at DESC, p.id ASC",
}

// likeEscaper makes search terms match literally inside ILIKE patterns
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// ParseProductSort returns the sort key for raw, falling back to SortDefault
func ParseProductSort(raw string) ProductSort {
	sort := ProductSort(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := orderBy[sort]; ok {
		return sort
	}
	return SortDefault
}

// ProductFilter narrows the available-products listing
type ProductFilter struct {
	CategorySlug string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Query        string
	Sort         ProductSort
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	ListAvailable(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	ListFeatured(ctx context.Context, limit int) ([]*domain.Product, error)
	ListRelated(ctx context.Context, product *domain.Product, limit int) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `p.id, p.name, p.slug, p.category_id, p.description, p.price, p.original_price,
		p.stock, p.is_featured, p.is_available, p.image_url, p.created_at, p.updated_at`

// Create inserts a new product, deriving the slug from the name when empty
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	if product.Slug == "" {
		product.Slug = domain.Slugify(product.Name)
	}

	query := `
		INSERT INTO products (id, name, slug, category_id, description, price, original_price,
			stock, is_featured, is_available, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	originalPrice := decimal.NullDecimal{}
	if product.OriginalPrice != nil {
		originalPrice = decimal.NewNullDecimal(*product.OriginalPrice)
	}

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Slug,
		product.CategoryID,
		product.Description,
		product.Price,
		originalPrice,
		product.Stock,
		product.IsFeatured,
		product.IsAvailable,
		product.ImageURL,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		if isPgDuplicateKeyError(err) {
			return ErrProductAlreadyExists
		}
		if isPgForeignKeyError(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// FindByID retrieves a product by ID regardless of availability
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`
	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// FindBySlug retrieves an available product by slug
func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.slug = $1 AND p.is_available = TRUE`
	product, err := scanProduct(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		return nil, fmt.Errorf("failed to find product by slug: %w", err)
	}
	return product, nil
}

// ListAvailable retrieves available products matching the filter
func (r *productRepository) ListAvailable(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	conditions := []string{"p.is_available = TRUE"}
	args := []interface{}{}

	addArg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	join := ""
	if filter.CategorySlug != "" {
		join = "JOIN categories c ON c.id = p.category_id"
		conditions = append(conditions, "c.slug = "+addArg(filter.CategorySlug))
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, "p.price >= "+addArg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, "p.price <= "+addArg(*filter.MaxPrice))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := addArg("%" + likeEscaper.Replace(q) + "%")
		conditions = append(conditions, fmt.Sprintf(`(p.name ILIKE %s ESCAPE '\' OR p.description ILIKE %s ESCAPE '\')`, pattern, pattern))
	}

	order, ok := orderBy[filter.Sort]
	if !ok {
		order = orderBy[SortDefault]
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		%s
		WHERE %s
		ORDER BY %s
	`, productColumns, join, strings.Join(conditions, " AND "), order)

	return r.query(ctx, query, args...)
}

// ListFeatured retrieves up to limit featured, available products, newest first
func (r *productRepository) ListFeatured(ctx context.Context, limit int) ([]*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.is_featured = TRUE AND p.is_available = TRUE
		ORDER BY p.created_at DESC, p.id ASC
		LIMIT $1
	`
	return r.query(ctx, query, limit)
}

// ListRelated retrieves up to limit available products sharing the product's category
func (r *productRepository) ListRelated(ctx context.Context, product *domain.Product, limit int) ([]*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.category_id = $1 AND p.id <> $2 AND p.is_available = TRUE
		ORDER BY p.created_at DESC, p.id ASC
		LIMIT $3
	`
	return r.query(ctx, query, product.CategoryID, product.ID, limit)
}

func (r *productRepository) query(ctx context.Context, query string, args ...interface{}) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var originalPrice decimal.NullDecimal
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Slug,
		&product.CategoryID,
		&product.Description,
		&product.Price,
		&originalPrice,
		&product.Stock,
		&product.IsFeatured,
		&product.IsAvailable,
		&product.ImageURL,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	if originalPrice.Valid {
		price := originalPrice.Decimal
		product.OriginalPrice = &price
	}
	return product, nil
}
