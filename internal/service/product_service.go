package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductService defines the interface for catalog business logic
type ProductService interface {
	Create(ctx context.Context, ownerID uuid.UUID, name, description string, price decimal.Decimal, stock int, category string) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, upd repository.ProductUpdate) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, search string, page, pageSize int) ([]*domain.Product, int, error)
}

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

type productService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

// Create stores a new catalog entry owned by ownerID
func (s *productService) Create(ctx context.Context, ownerID uuid.UUID, name, description string, price decimal.Decimal, stock int, category string) (*domain.Product, error) {
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Price:       price.Round(2),
		Stock:       stock,
		Category:    category,
		UserID:      ownerID,
		CreatedAt:   time.Now(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// Update applies a partial update; fields not provided keep their value
func (s *productService) Update(ctx context.Context, id uuid.UUID, upd repository.ProductUpdate) (*domain.Product, error) {
	if upd.Price != nil {
		rounded := upd.Price.Round(2)
		upd.Price = &rounded
	}
	return s.productRepo.Update(ctx, id, upd)
}

// Delete removes a product; a zero delete count maps to
// ErrProductNotFound so the handler can answer 404
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return repository.ErrProductNotFound
	}
	return nil
}

// GetByID retrieves one product
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// List retrieves a page of products with an optional name search.
// Out-of-range pagination values fall back to the defaults (page 1,
// size 10).
func (s *productService) List(ctx context.Context, search string, page, pageSize int) ([]*domain.Product, int, error) {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return s.productRepo.List(ctx, search, page, pageSize)
}
