package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog item with its current stock level.
type Product struct {
	ID        string          `json:"id" db:"id"`
	Name      string          `json:"name" db:"name" validate:"required,max=200"`
	Barcode   string          `json:"barcode" db:"barcode" validate:"required,max=64"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
	Stock     int             `json:"stock" db:"stock"`
	Version   int             `json:"version" db:"version"` // for optimistic locking
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
