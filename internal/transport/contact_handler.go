package transport

import (
	"net/http"

	"adorn-jewellery/internal/middleware"
	"adorn-jewellery/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ContactRequest is the contact form payload
type ContactRequest struct {
	Name    string `json:"name" form:"name" validate:"required,notblank,max=100"`
	Email   string `json:"email" form:"email" validate:"required,email"`
	Subject string `json:"subject" form:"subject" validate:"max=200"`
	Message string `json:"message" form:"message" validate:"required,notblank,max=5000"`
}

// ContactHandler accepts messages from the contact form
type ContactHandler struct {
	contactService service.ContactService
	logger         *zap.Logger
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(contactService service.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		logger:         logger,
	}
}

// RegisterRoutes registers the contact route behind rateLimit
func (h *ContactHandler) RegisterRoutes(r chi.Router, rateLimit func(http.Handler) http.Handler) {
	r.With(rateLimit).Post("/api/contact", h.Submit)
}

// Submit stores the message and alerts the shop
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	msg, err := h.contactService.Submit(r.Context(), service.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		respondServiceError(w, r, h.logger, err, "failed to send message")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusCreated, map[string]interface{}{
		"message": "Thank you! Your message has been sent. We'll reply soon.",
		"id":      msg.ID,
	})
}
