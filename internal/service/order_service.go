package service

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// OrderService defines the interface for order business logic. Stock
// validation and pricing happen inside the repository transaction, so
// the service stays a thin orchestration layer.
type OrderService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, items []repository.ItemRequest) (*repository.OrderWithItems, error)
	GetHistory(ctx context.Context, userID uuid.UUID) ([]*domain.OrderSummary, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderService{orderRepo: orderRepo}
}

// PlaceOrder places an order for the given user. Item list shape
// (non-empty, positive quantities) is enforced upstream by request
// validation.
func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, items []repository.ItemRequest) (*repository.OrderWithItems, error) {
	return s.orderRepo.PlaceOrder(ctx, userID, items)
}

// GetHistory returns the user's order summaries, newest first
func (s *orderService) GetHistory(ctx context.Context, userID uuid.UUID) ([]*domain.OrderSummary, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}
