package transport

import (
	"net/http"

	"adorn-jewellery/internal/domain"
	"adorn-jewellery/internal/middleware"
	"adorn-jewellery/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddToCartRequest adds a product to the cart; quantity defaults to 1
type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" form:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" form:"quantity" validate:"omitempty,gte=1,lte=99"`
}

// UpdateCartRequest sets the quantity of a cart line; 0 removes it
type UpdateCartRequest struct {
	Quantity int `json:"quantity" form:"quantity" validate:"gte=0,lte=99"`
}

// MergeCartRequest carries a guest cart kept on the client
type MergeCartRequest struct {
	Items []domain.LineRequest `json:"items" validate:"required"`
}

// WishlistRequest names the product to toggle
type WishlistRequest struct {
	ProductID uuid.UUID `json:"product_id" form:"product_id" validate:"required"`
}

// CartHandler handles cart and wishlist requests for signed-in users
type CartHandler struct {
	cartService     service.CartService
	wishlistService service.WishlistService
	logger          *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, wishlistService service.WishlistService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService:     cartService,
		wishlistService: wishlistService,
		logger:          logger,
	}
}

// RegisterRoutes registers the cart and wishlist routes behind authMiddleware
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/api/cart", h.GetCart)
		r.Post("/api/add-to-cart", h.AddToCart)
		r.Post("/api/cart-count", h.CartCount)
		r.Post("/api/cart-items", h.GetCart)
		r.Post("/api/cart/merge", h.MergeCart)
		r.Delete("/api/cart", h.ClearCart)
		r.Patch("/api/cart/{productID}", h.UpdateCartItem)
		r.Delete("/api/cart/{productID}", h.RemoveCartItem)

		r.Get("/api/wishlist", h.GetWishlist)
		r.Post("/api/add-to-wishlist", h.ToggleWishlist)
		r.Post("/api/wishlist-count", h.WishlistCount)
	})
}

// GetCart returns the cart lines with subtotals and the total
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.cartService.Items(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "failed to load cart")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"items":      view.Items,
		"cart_count": view.Count,
		"total":      view.Total,
	})
}

// AddToCart adds a product, summing with any existing quantity
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req AddToCartRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	count, err := h.cartService.Add(r.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "failed to add to cart")
		return
	}

	h.logger.Debug("Added to cart",
		zap.String("user_id", userID.String()),
		zap.String("product_id", req.ProductID.String()),
		zap.Int("quantity", req.Quantity),
	)
	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{"cart_count": count})
}

// CartCount returns the number of distinct products in the cart
func (h *CartHandler) CartCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	count, err := h.cartService.Count(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "failed to count cart")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{"cart_count": count})
}

// UpdateCartItem sets a line's quantity
func (h *CartHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateCartRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	count, err := h.cartService.UpdateQuantity(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "failed to update cart")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{"cart_count": count})
}

// RemoveCartItem deletes a line from the cart
func (h *CartHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	count, err := h.cartService.Remove(r.Context(), userID, productID)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "failed to remove from cart")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{"cart_count": count})
}

// ClearCart removes every line from the user's cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.cartService.Clear(r.Context(), userID); err != nil {
		respondServiceError(w, r, h.logger, err, "failed to clear cart")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{"cart_count": 0})
}

// MergeCart folds a guest cart into the user's cart
func (h *CartHandler) MergeCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req MergeCartRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	result, err := h.cartService.Merge(r.Context(), userID, req.Items)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "failed to merge cart")
		return
	}

	if len(result.Skipped) > 0 {
		h.logger.Info("Guest cart lines skipped",
			zap.String("user_id", userID.String()),
			zap.Int("skipped", len(result.Skipped)),
		)
	}
	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"merged":     result.Merged,
		"skipped":    result.Skipped,
		"cart_count": result.Count,
	})
}

// GetWishlist returns the saved products
func (h *CartHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	lines, err := h.wishlistService.Items(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "failed to load wishlist")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"items":          lines,
		"wishlist_count": len(lines),
	})
}

// ToggleWishlist adds the product when absent and removes it when present
func (h *CartHandler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req WishlistRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	result, err := h.wishlistService.Toggle(r.Context(), userID, req.ProductID)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "failed to update wishlist")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"action":         result.Action,
		"wishlist_count": result.Count,
	})
}

// WishlistCount returns the number of saved products
func (h *CartHandler) WishlistCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	count, err := h.wishlistService.Count(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "failed to count wishlist")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{"wishlist_count": count})
}

func productIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return uuid.Nil, false
	}
	return productID, true
}
