package service

import (
	"context"
	"fmt"

	"adorn-jewellery/internal/domain"
	"adorn-jewellery/internal/repository"
)

const (
	FeaturedLimit = 6
	RelatedLimit  = 4
)

// HomePage is the landing page payload
type HomePage struct {
	FeaturedProducts []*domain.Product  `json:"featured_products"`
	Categories       []*domain.Category `json:"categories"`
}

// ShopPage is a filtered product listing plus the category list for navigation
type ShopPage struct {
	Products   []*domain.Product  `json:"products"`
	Categories []*domain.Category `json:"categories"`
	Count      int                `json:"count"`
}

// ProductPage is a single product with products from the same category
type ProductPage struct {
	Product         *domain.Product   `json:"product"`
	RelatedProducts []*domain.Product `json:"related_products"`
}

// CatalogService defines the interface for storefront browsing
type CatalogService interface {
	Home(ctx context.Context) (*HomePage, error)
	Shop(ctx context.Context, filter repository.ProductFilter) (*ShopPage, error)
	ProductDetail(ctx context.Context, slug string) (*ProductPage, error)
	Categories(ctx context.Context) ([]*domain.Category, error)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *catalogService) Home(ctx context.Context) (*HomePage, error) {
	featured, err := s.productRepo.ListFeatured(ctx, FeaturedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load featured products: %w", err)
	}

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	return &HomePage{FeaturedProducts: featured, Categories: categories}, nil
}

// Shop lists available products matching filter
func (s *catalogService) Shop(ctx context.Context, filter repository.ProductFilter) (*ShopPage, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, fmt.Errorf("%w: min_price exceeds max_price", ErrInvalidFilter)
	}

	products, err := s.productRepo.ListAvailable(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	return &ShopPage{Products: products, Categories: categories, Count: len(products)}, nil
}

func (s *catalogService) ProductDetail(ctx context.Context, slug string) (*ProductPage, error) {
	product, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	related, err := s.productRepo.ListRelated(ctx, product, RelatedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load related products: %w", err)
	}

	return &ProductPage{Product: product, RelatedProducts: related}, nil
}

func (s *catalogService) Categories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
