package transport

import (
	"encoding/json"
	"net/http"
	"strings"

	"adorn-jewellery/internal/domain"
	"adorn-jewellery/internal/middleware"
	"adorn-jewellery/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CheckoutRequest is the checkout form. JSON clients send the cart
// snapshot as items; form posts send it as a JSON string in cart_data.
type CheckoutRequest struct {
	FirstName   string               `json:"first_name" form:"first_name" validate:"required,notblank,max=100"`
	LastName    string               `json:"last_name" form:"last_name" validate:"required,notblank,max=100"`
	Email       string               `json:"email" form:"email" validate:"required,email"`
	Phone       string               `json:"phone" form:"phone" validate:"required,notblank,max=20"`
	Address     string               `json:"address" form:"address" validate:"required,notblank"`
	City        string               `json:"city" form:"city" validate:"required,notblank,max=100"`
	State       string               `json:"state" form:"state" validate:"required,notblank,max=100"`
	PostalCode  string               `json:"postal_code" form:"postal_code" validate:"required,notblank,max=20"`
	Country     string               `json:"country" form:"country" validate:"required,notblank,max=100"`
	Notes       string               `json:"notes" form:"notes" validate:"max=2000"`
	Items       []domain.LineRequest `json:"items" form:"-"`
	CartData    string               `json:"cart_data" form:"cart_data"`
	TotalAmount *decimal.Decimal     `json:"total_amount" form:"total_amount"`
}

func (req CheckoutRequest) shipping() domain.ShippingDetails {
	return domain.ShippingDetails{
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Email:      strings.TrimSpace(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
		Address:    strings.TrimSpace(req.Address),
		City:       strings.TrimSpace(req.City),
		State:      strings.TrimSpace(req.State),
		PostalCode: strings.TrimSpace(req.PostalCode),
		Country:    strings.TrimSpace(req.Country),
	}
}

// OrderHandler handles checkout and the customer's order history
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers checkout and account routes behind authMiddleware
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/api/checkout", h.Checkout)
		r.Get("/api/account/orders", h.ListOrders)
		r.Get("/api/account/orders/{orderNumber}", h.GetOrder)
	})
}

// Checkout places an order from the submitted snapshot or the saved cart
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req CheckoutRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	lines := req.Items
	if len(lines) == 0 && strings.TrimSpace(req.CartData) != "" {
		if err := json.Unmarshal([]byte(req.CartData), &lines); err != nil {
			h.logger.Debug("Invalid cart_data", zap.Error(err))
			middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
				{Field: "cart_data", Message: "Invalid value"},
			})
			return
		}
	}

	order, err := h.orderService.PlaceOrder(r.Context(), userID, service.CheckoutInput{
		Shipping:    req.shipping(),
		Notes:       req.Notes,
		Lines:       lines,
		ClientTotal: req.TotalAmount,
	})
	if err != nil {
		respondServiceError(w, r, h.logger, err, "failed to place order")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusCreated, map[string]interface{}{
		"message": "Order placed successfully! Check your email.",
		"order":   order,
	})
}

// ListOrders returns the user's orders, newest first
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	orders, err := h.orderService.History(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "failed to load orders")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrder returns one of the user's orders by number
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), userID, chi.URLParam(r, "orderNumber"))
	if err != nil {
		respondServiceError(w, r, h.logger, err, "failed to load order")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{"order": order})
}
