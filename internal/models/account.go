package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PendingAccount tracks a customer's running balance of amounts owed from
// underpaid sales. Positive balance = owed by the customer, negative =
// customer credit. Created lazily on first charge, never deleted.
type PendingAccount struct {
	CustomerID string          `json:"customer_id" db:"customer_id"`
	Balance    decimal.Decimal `json:"balance" db:"balance"`
	Version    int             `json:"version" db:"version"` // for optimistic locking
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}
