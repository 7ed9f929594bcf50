package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrOrderCreateFailed = errors.New("failed to create order")

// InsufficientStockError is returned when a requested quantity exceeds
// the stock available at the time the product row was locked.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: only %d units of %s available", e.Available, e.ProductName)
}

// ItemRequest is one (product, quantity) entry of an order request.
type ItemRequest struct {
	ProductID uuid.UUID
	Quantity  int
}

// OrderWithItems bundles an order with its line items, as returned by
// PlaceOrder.
type OrderWithItems struct {
	domain.Order
	Items []domain.OrderItem `json:"items"`
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, items []ItemRequest) (*OrderWithItems, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.OrderSummary, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// lockedProduct is the slice of a product row read under FOR UPDATE.
type lockedProduct struct {
	name  string
	price decimal.Decimal
	stock int
}

// PlaceOrder atomically validates stock, prices the order, writes the
// order and its line items, and decrements inventory. All referenced
// product rows are locked with SELECT ... FOR UPDATE for the duration
// of the transaction, so two concurrent orders for the same product
// serialize: the second re-reads post-decrement stock and fails if the
// remainder is insufficient. Any error rolls the whole transaction
// back; no partial order or partial decrement is ever visible.
func (r *orderRepository) PlaceOrder(ctx context.Context, userID uuid.UUID, items []ItemRequest) (*OrderWithItems, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	locked, err := lockProducts(ctx, tx, items)
	if err != nil {
		return nil, err
	}

	// Validate quantities against locked stock and accumulate the
	// total in fixed-point decimal.
	total := decimal.Zero
	for _, item := range items {
		product, ok := locked[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
		}
		if item.Quantity > product.stock {
			return nil, &InsufficientStockError{
				ProductName: product.name,
				Available:   product.stock,
				Requested:   item.Quantity,
			}
		}
		total = total.Add(product.price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	total = total.Round(2)

	now := time.Now()
	order := domain.Order{
		ID:         uuid.New(),
		UserID:     userID,
		TotalPrice: total,
		Status:     domain.OrderStatusPending,
		CreatedAt:  now,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, description, total_price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, order.ID, order.UserID, order.Description, order.TotalPrice, order.Status, order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderCreateFailed, err)
	}

	// Decrement stock and record line items with the unit price
	// captured under the lock. The price is never re-read, so a
	// concurrent price edit cannot desynchronize the stored total.
	orderItems := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		product := locked[item.ProductID]

		_, err = tx.ExecContext(ctx, `
			UPDATE products SET stock = stock - $2 WHERE id = $1
		`, item.ProductID, item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}

		orderItem := domain.OrderItem{
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: product.price,
			CreatedAt: now,
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, orderItem.OrderID, orderItem.ProductID, orderItem.Quantity, orderItem.UnitPrice, orderItem.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}

		orderItems = append(orderItems, orderItem)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	return &OrderWithItems{Order: order, Items: orderItems}, nil
}

// lockProducts reads the requested product rows FOR UPDATE, keyed by
// id. Rows absent from the result were not found.
func lockProducts(ctx context.Context, tx *sql.Tx, items []ItemRequest) (map[uuid.UUID]lockedProduct, error) {
	placeholders := make([]string, len(items))
	args := make([]interface{}, len(items))
	for i, item := range items {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = item.ProductID
	}

	query := fmt.Sprintf(`
		SELECT id, name, price, stock
		FROM products
		WHERE id IN (%s)
		FOR UPDATE
	`, strings.Join(placeholders, ", "))

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}
	defer rows.Close()

	locked := make(map[uuid.UUID]lockedProduct, len(items))
	for rows.Next() {
		var id uuid.UUID
		var p lockedProduct
		if err := rows.Scan(&id, &p.name, &p.price, &p.stock); err != nil {
			return nil, fmt.Errorf("failed to scan locked product: %w", err)
		}
		locked[id] = p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked products: %w", err)
	}

	return locked, nil
}

// ListByUser retrieves order summaries for a user, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.OrderSummary, error) {
	query := `
		SELECT id, total_price, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	summaries := []*domain.OrderSummary{}
	for rows.Next() {
		summary := &domain.OrderSummary{}
		err := rows.Scan(
			&summary.ID,
			&summary.TotalPrice,
			&summary.Status,
			&summary.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order summary: %w", err)
		}
		summaries = append(summaries, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return summaries, nil
}
