// Command seed loads the sample catalog. Rows that already exist are left
// untouched, so it is safe to run repeatedly.
package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adorn-jewellery/internal/config"
	"adorn-jewellery/internal/database"
	"adorn-jewellery/internal/domain"
	"adorn-jewellery/internal/logger"
	"adorn-jewellery/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type sampleProduct struct {
	name          string
	category      string
	description   string
	price         string
	originalPrice string
	stock         int
	featured      bool
}

var sampleCategories = []domain.Category{
	{Name: "Necklaces", Description: "Elegant necklaces for every occasion"},
	{Name: "Earrings", Description: "Beautiful earrings to complement your style"},
	{Name: "Bracelets", Description: "Stunning bracelets that add elegance"},
	{Name: "Rings", Description: "Exquisite rings for special moments"},
}

var sampleProducts = []sampleProduct{
	{"Diamond Pendant Necklace", "Necklaces", "A stunning diamond pendant necklace that adds elegance to any outfit. Features a brilliant-cut diamond set in 18k gold.", "299.99", "399.99", 15, true},
	{"Pearl Drop Earrings", "Earrings", "Classic pearl drop earrings perfect for formal occasions. Made with freshwater pearls and sterling silver.", "89.99", "129.99", 25, true},
	{"Gold Chain Bracelet", "Bracelets", "Delicate gold chain bracelet that adds a touch of sophistication. Adjustable length for perfect fit.", "149.99", "", 20, true},
	{"Sapphire Engagement Ring", "Rings", "Beautiful sapphire engagement ring surrounded by diamonds. A timeless symbol of love and commitment.", "1299.99", "1599.99", 5, true},
	{"Silver Hoop Earrings", "Earrings", "Modern silver hoop earrings perfect for everyday wear. Lightweight and comfortable.", "49.99", "", 30, true},
	{"Rose Gold Heart Necklace", "Necklaces", "Romantic rose gold heart necklace, perfect gift for loved ones. Comes with a beautiful gift box.", "79.99", "", 40, true},
	{"Gemstone Tennis Bracelet", "Bracelets", "Elegant tennis bracelet featuring alternating gemstones. Perfect for special occasions.", "249.99", "349.99", 12, false},
	{"Gold Band Ring", "Rings", "Simple yet elegant gold band ring. Perfect for stacking or wearing alone.", "199.99", "", 18, false},
	{"Crystal Chandelier Earrings", "Earrings", "Glamorous crystal chandelier earrings that catch the light beautifully. Perfect for evening wear.", "119.99", "", 15, false},
	{"Layered Chain Necklace", "Necklaces", "Trendy layered chain necklace with multiple strands. On-trend and versatile.", "69.99", "", 35, false},
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	dbService, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer dbService.Close()

	if err := database.RunMigrations(dbService.DB(), "migrations", log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	categoryRepo := repository.NewCategoryRepository(dbService.DB())
	productRepo := repository.NewProductRepository(dbService.DB())

	categoryIDs, err := seedCategories(ctx, categoryRepo, log)
	if err != nil {
		log.Fatal("Failed to seed categories", zap.Error(err))
	}
	if err := seedProducts(ctx, productRepo, categoryIDs, log); err != nil {
		log.Fatal("Failed to seed products", zap.Error(err))
	}

	log.Info("Sample data added successfully")
}

func seedCategories(ctx context.Context, repo repository.CategoryRepository, log *zap.Logger) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(sampleCategories))
	for _, sample := range sampleCategories {
		category := sample
		category.ID = uuid.New()
		category.Slug = domain.Slugify(category.Name)
		category.CreatedAt = time.Now()

		err := repo.Create(ctx, &category)
		switch {
		case err == nil:
			log.Info("Created category", zap.String("name", category.Name))
		case errors.Is(err, repository.ErrCategoryAlreadyExists):
			existing, findErr := repo.FindBySlug(ctx, category.Slug)
			if findErr != nil {
				return nil, findErr
			}
			category.ID = existing.ID
		default:
			return nil, err
		}
		ids[category.Name] = category.ID
	}
	return ids, nil
}

func seedProducts(ctx context.Context, repo repository.ProductRepository, categoryIDs map[string]uuid.UUID, log *zap.Logger) error {
	for _, sample := range sampleProducts {
		categoryID, ok := categoryIDs[sample.category]
		if !ok {
			return fmt.Errorf("unknown category %q for %q", sample.category, sample.name)
		}

		now := time.Now()
		product := &domain.Product{
			ID:          uuid.New(),
			Name:        sample.name,
			CategoryID:  categoryID,
			Description: sample.description,
			Price:       decimal.RequireFromString(sample.price),
			Stock:       sample.stock,
			IsFeatured:  sample.featured,
			IsAvailable: true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if sample.originalPrice != "" {
			original := decimal.RequireFromString(sample.originalPrice)
			product.OriginalPrice = &original
		}

		err := repo.Create(ctx, product)
		switch {
		case err == nil:
			log.Info("Created product", zap.String("name", product.Name), zap.String("slug", product.Slug))
		case errors.Is(err, repository.ErrProductAlreadyExists):
			log.Debug("Product already present", zap.String("name", product.Name))
		default:
			return err
		}
	}
	return nil
}
