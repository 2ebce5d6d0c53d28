package transport

import (
	"errors"
	"net/http"

	"adorn-jewellery/internal/middleware"
	"adorn-jewellery/internal/repository"
	"adorn-jewellery/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// decodeRequest decodes and validates the body into v. It writes the error
// response itself and reports whether the handler should continue.
func decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}, logger *zap.Logger) bool {
	err := middleware.DecodeAndValidate(r, v)
	if err == nil {
		return true
	}

	logger.Debug("Request validation failed", zap.String("path", r.URL.Path), zap.Error(err))

	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return false
	}
	if errors.Is(err, middleware.ErrUnsupportedMediaType) {
		middleware.RespondWithError(w, http.StatusUnsupportedMediaType, "unsupported content type")
		return false
	}

	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
	return false
}

// requireUser returns the authenticated user or writes a 401
func requireUser(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		logger.Error("User ID not found in context", zap.String("path", r.URL.Path))
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

// respondServiceError maps service and repository errors onto HTTP
// responses. Unknown errors are logged and answered with a generic 500
// carrying fallback as the message.
func respondServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error, fallback string) {
	var stockErr *repository.OutOfStockError

	switch {
	case errors.As(err, &stockErr):
		middleware.RespondWithErrorDetails(w, http.StatusConflict, "insufficient stock", map[string]interface{}{
			"product_id": stockErr.ProductID,
			"product":    stockErr.Name,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
	case errors.Is(err, repository.ErrOutOfStock):
		middleware.RespondWithError(w, http.StatusConflict, "insufficient stock")
	case errors.Is(err, repository.ErrProductUnavailable):
		middleware.RespondWithError(w, http.StatusConflict, "product is not available")

	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, repository.ErrCartItemNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "item is not in the cart")
	case errors.Is(err, repository.ErrOrderNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, repository.ErrContactMessageNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "message not found")
	case errors.Is(err, repository.ErrUserNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "user not found")

	case errors.Is(err, repository.ErrUserAlreadyExists):
		middleware.RespondWithError(w, http.StatusConflict, "user with this email already exists")

	case errors.Is(err, service.ErrEmptyCart):
		middleware.RespondWithError(w, http.StatusBadRequest, "your cart is empty")
	case errors.Is(err, service.ErrInvalidQuantity), errors.Is(err, repository.ErrInvalidOrderQuantity):
		middleware.RespondWithError(w, http.StatusBadRequest, "quantity must be between 1 and 99")
	case errors.Is(err, service.ErrBlankField):
		middleware.RespondWithError(w, http.StatusBadRequest, "required field is blank")
	case errors.Is(err, service.ErrInvalidFilter):
		middleware.RespondWithError(w, http.StatusBadRequest, "min_price must not exceed max_price")
	case errors.Is(err, repository.ErrOrderWithoutLineItems):
		middleware.RespondWithError(w, http.StatusBadRequest, "order has no line items")
	case errors.Is(err, repository.ErrTotalMismatch):
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, "order total does not match current prices")
	case errors.Is(err, service.ErrInvalidStatus):
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, "invalid order status")

	case errors.Is(err, service.ErrInvalidCredentials):
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, service.ErrTokenExpired):
		middleware.RespondWithError(w, http.StatusUnauthorized, "refresh token expired")
	case errors.Is(err, service.ErrInvalidToken):
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid refresh token")

	default:
		logger.Error(fallback,
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
			zap.Error(err),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
