package transport

import (
	"net/http"
	"strings"

	"adorn-jewellery/internal/middleware"
	"adorn-jewellery/internal/repository"
	"adorn-jewellery/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Reason is one entry of the why-choose-us page
type Reason struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

var whyChooseUs = []Reason{
	{Title: "Genuine Materials", Description: "Every piece is made from certified gold, sterling silver and ethically sourced stones."},
	{Title: "Handcrafted Quality", Description: "Our artisans finish each design by hand and inspect it before it leaves the workshop."},
	{Title: "Fast Delivery", Description: "Orders are dispatched within two business days with tracked delivery across Kenya."},
	{Title: "Easy Returns", Description: "Not quite right? Return unworn items within 14 days for an exchange or refund."},
	{Title: "Secure Checkout", Description: "Your details are protected and never shared with third parties."},
}

// CatalogHandler serves the public storefront pages
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers the public catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/home", h.Home)
	r.Get("/api/shop", h.Shop)
	r.Get("/api/products/{slug}", h.ProductDetail)
	r.Get("/api/categories", h.Categories)
	r.Get("/api/why-choose-us", h.WhyChooseUs)
}

// Home returns featured products and all categories
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalogService.Home(r.Context())
	if err != nil {
		respondServiceError(w, r, h.logger, err, "failed to load home page")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"featured_products": page.FeaturedProducts,
		"categories":        page.Categories,
	})
}

// Shop lists available products filtered by the query string
func (h *CatalogHandler) Shop(w http.ResponseWriter, r *http.Request) {
	filter, field, err := parseProductFilter(r)
	if err != nil {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			{Field: field, Message: "Value must be a decimal number"},
		})
		return
	}

	page, err := h.catalogService.Shop(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "failed to load products")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"products":   page.Products,
		"categories": page.Categories,
		"count":      page.Count,
	})
}

// ProductDetail returns one available product and its related products
func (h *CatalogHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	page, err := h.catalogService.ProductDetail(r.Context(), slug)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "failed to load product")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"product":          page.Product,
		"related_products": page.RelatedProducts,
	})
}

// Categories lists all categories
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.Categories(r.Context())
	if err != nil {
		respondServiceError(w, r, h.logger, err, "failed to load categories")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
	})
}

// WhyChooseUs returns the static selling points
func (h *CatalogHandler) WhyChooseUs(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"reasons": whyChooseUs,
	})
}

// parseProductFilter reads category, min_price, max_price, sort and q.
// On a malformed price it returns the offending parameter name.
func parseProductFilter(r *http.Request) (repository.ProductFilter, string, error) {
	q := r.URL.Query()
	filter := repository.ProductFilter{
		CategorySlug: strings.TrimSpace(q.Get("category")),
		Query:        strings.TrimSpace(q.Get("q")),
		Sort:         repository.ParseProductSort(q.Get("sort")),
	}

	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{
		{"min_price", &filter.MinPrice},
		{"max_price", &filter.MaxPrice},
	} {
		raw := strings.TrimSpace(q.Get(p.name))
		if raw == "" {
			continue
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, p.name, err
		}
		*p.dst = &value
	}

	return filter, "", nil
}
