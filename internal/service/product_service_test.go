package service

import (
	"context"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProductRepository is an in-memory ProductRepository for service tests
type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product

	lastPage     int
	lastPageSize int
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) Create(_ context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Update(_ context.Context, id uuid.UUID, upd repository.ProductUpdate) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	if upd.Name != nil {
		product.Name = *upd.Name
	}
	if upd.Description != nil {
		product.Description = *upd.Description
	}
	if upd.Price != nil {
		product.Price = *upd.Price
	}
	if upd.Stock != nil {
		product.Stock = *upd.Stock
	}
	if upd.Category != nil {
		product.Category = *upd.Category
	}
	return product, nil
}

func (m *mockProductRepository) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	if _, ok := m.products[id]; !ok {
		return 0, nil
	}
	delete(m.products, id)
	return 1, nil
}

func (m *mockProductRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	if product, ok := m.products[id]; ok {
		return product, nil
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) List(_ context.Context, _ string, page, pageSize int) ([]*domain.Product, int, error) {
	m.lastPage = page
	m.lastPageSize = pageSize
	return nil, 0, nil
}

func TestProductService_CreateRoundsPrice(t *testing.T) {
	repo := newMockProductRepository()
	svc := NewProductService(repo)

	product, err := svc.Create(context.Background(), uuid.New(),
		"Widget", "a widget", decimal.RequireFromString("9.999"), 3, "widgets")
	require.NoError(t, err)

	assert.True(t, product.Price.Equal(decimal.RequireFromString("10.00")),
		"expected price rounded to 10.00, got %s", product.Price)
	assert.Equal(t, 2, int(product.Price.Exponent())*-1)
}

func TestProductService_UpdateRoundsPrice(t *testing.T) {
	repo := newMockProductRepository()
	svc := NewProductService(repo)

	created, err := svc.Create(context.Background(), uuid.New(),
		"Widget", "a widget", decimal.RequireFromString("5.00"), 3, "widgets")
	require.NoError(t, err)

	price := decimal.RequireFromString("7.555")
	updated, err := svc.Update(context.Background(), created.ID, repository.ProductUpdate{Price: &price})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("7.56")))
}

func TestProductService_DeleteMapsZeroRowsToNotFound(t *testing.T) {
	repo := newMockProductRepository()
	svc := NewProductService(repo)

	created, err := svc.Create(context.Background(), uuid.New(),
		"Widget", "a widget", decimal.RequireFromString("5.00"), 3, "widgets")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), created.ID), repository.ErrProductNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), uuid.New()), repository.ErrProductNotFound)
}

func TestProductService_ListClampsPagination(t *testing.T) {
	repo := newMockProductRepository()
	svc := NewProductService(repo)

	_, _, err := svc.List(context.Background(), "", 0, -5)
	require.NoError(t, err)
	assert.Equal(t, DefaultPage, repo.lastPage)
	assert.Equal(t, DefaultPageSize, repo.lastPageSize)

	_, _, err = svc.List(context.Background(), "", 3, 25)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.lastPage)
	assert.Equal(t, 25, repo.lastPageSize)
}
