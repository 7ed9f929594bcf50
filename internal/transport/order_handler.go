package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderItemRequest is one entry of the order placement body, which is a
// JSON array of these
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// OrderHandler handles HTTP requests for order operations
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

// RegisterRoutes registers the order routes. Placement requires the
// "user" role; history only requires authentication.
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, userOnly func(http.Handler) http.Handler) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Group(func(r chi.Router) {
			r.Use(userOnly)
			r.Post("/", h.Place)
		})

		r.Get("/", h.History)
	})
}

// Place handles POST /orders
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var items []OrderItemRequest

	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		h.logger.Debug("Order decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "request body must be an array of order items")
		return
	}

	if err := middleware.ValidateVar(items, "required,min=1,unique=ProductID,dive"); err != nil {
		h.logger.Debug("Order validation failed", zap.Error(err))

		if messages := middleware.FormatValidationErrors(err); len(messages) > 0 {
			middleware.RespondWithValidationErrors(w, messages)
			return
		}

		middleware.RespondWithError(w, http.StatusUnprocessableEntity, "order validation failed")
		return
	}

	userID, ok := userIDFromContext(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	requests := make([]repository.ItemRequest, len(items))
	for i, item := range items {
		requests[i] = repository.ItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	order, err := h.orderService.PlaceOrder(r.Context(), userID, requests)
	if err != nil {
		var stockErr *repository.InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			h.logger.Debug("Order rejected for insufficient stock",
				zap.String("product", stockErr.ProductName),
				zap.Int("available", stockErr.Available),
				zap.Int("requested", stockErr.Requested),
			)
			middleware.RespondWithError(w, http.StatusBadRequest, stockErr.Error())
		case errors.Is(err, repository.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, err.Error())
		default:
			h.logger.Error("Order placement failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError,
				"an internal server error occurred while placing the order")
		}
		return
	}

	h.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("total", order.TotalPrice.String()),
	)
	middleware.RespondWithSuccess(w, http.StatusCreated, "order placed successfully", order)
}

// History handles GET /orders
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summaries, err := h.orderService.GetHistory(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to retrieve order history", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError,
			"an internal server error occurred while retrieving your order history")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, fmt.Sprintf("found %d orders", len(summaries)), summaries)
}
