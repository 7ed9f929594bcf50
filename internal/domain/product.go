package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog. Price maps to
// NUMERIC(10,2) so money never passes through floating point.
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	Category    string          `json:"category" db:"category"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
