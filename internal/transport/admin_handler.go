package transport

import (
	"net/http"
	"strconv"

	"adorn-jewellery/internal/middleware"
	"adorn-jewellery/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UpdateStatusRequest changes an order's status
type UpdateStatusRequest struct {
	Status string `json:"status" form:"status" validate:"required"`
}

// AdminHandler exposes order and inbox management to staff
type AdminHandler struct {
	orderService   service.OrderService
	contactService service.ContactService
	logger         *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(orderService service.OrderService, contactService service.ContactService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		orderService:   orderService,
		contactService: contactService,
		logger:         logger,
	}
}

// RegisterRoutes registers the admin routes. Both middlewares run in order.
func (h *AdminHandler) RegisterRoutes(r chi.Router, authMiddleware, requireAdmin func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware, requireAdmin)

		r.Get("/orders", h.ListOrders)
		r.Patch("/orders/{orderNumber}/status", h.UpdateOrderStatus)
		r.Get("/contact-messages", h.ListContactMessages)
		r.Patch("/contact-messages/{id}/read", h.MarkContactMessageRead)
	})
}

// ListOrders lists every order, optionally filtered by ?status=
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respondServiceError(w, r, h.logger, err, "failed to list orders")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"orders": orders,
		"count":  len(orders),
	})
}

// UpdateOrderStatus sets the status of an order
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), chi.URLParam(r, "orderNumber"), req.Status)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "failed to update order status")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{"order": order})
}

// ListContactMessages lists the inbox, optionally only ?unread=true
func (h *AdminHandler) ListContactMessages(w http.ResponseWriter, r *http.Request) {
	unreadOnly := false
	if raw := r.URL.Query().Get("unread"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
				{Field: "unread", Message: "Value must be true or false"},
			})
			return
		}
		unreadOnly = parsed
	}

	messages, err := h.contactService.List(r.Context(), unreadOnly)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "failed to list contact messages")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"count":    len(messages),
	})
}

// MarkContactMessageRead flags a message as read
func (h *AdminHandler) MarkContactMessageRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid message ID")
		return
	}

	if err := h.contactService.MarkRead(r.Context(), id); err != nil {
		respondServiceError(w, r, h.logger, err, "failed to update contact message")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, nil)
}
