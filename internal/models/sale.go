package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleStatus is the lifecycle state of a sale while the coordinator
// processes it. Only FINALIZED sales are ever persisted; ABORTED is the
// terminal state of any in-flight sale whose compensation has completed.
type SaleStatus string

const (
	SaleStatusDraft              SaleStatus = "DRAFT"
	SaleStatusLineItemsValidated SaleStatus = "LINE_ITEMS_VALIDATED"
	SaleStatusStockReserved      SaleStatus = "STOCK_RESERVED"
	SaleStatusPaymentApplied     SaleStatus = "PAYMENT_APPLIED"
	SaleStatusFinalized          SaleStatus = "FINALIZED"
	SaleStatusAborted            SaleStatus = "ABORTED"
)

// SaleLineItem is a single product line within a sale. UnitPrice is the
// price snapshot captured at validation time; later catalog price changes
// never affect a finalized sale.
type SaleLineItem struct {
	ProductID   string          `json:"product_id" db:"product_id" validate:"required"`
	ProductName string          `json:"product_name" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity" validate:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
}

// Subtotal returns quantity times the snapshotted unit price.
func (li SaleLineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Sale is an immutable, append-only record of a finalized transaction.
// Corrections are modeled as new compensating sales, never as mutation.
type Sale struct {
	ID         string          `json:"id" db:"id"`
	CustomerID string          `json:"customer_id" db:"customer_id"`
	Items      []SaleLineItem  `json:"items" db:"items"`
	Total      decimal.Decimal `json:"total" db:"total"`
	AmountPaid decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	AmountDue  decimal.Decimal `json:"amount_due" db:"amount_due"`
	Status     SaleStatus      `json:"status" db:"status"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}
