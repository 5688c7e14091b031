package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tiendapos/backend/internal/models"
	"github.com/tiendapos/backend/internal/store"
)

// SaleLineItemRequest is a requested line within a new sale.
type SaleLineItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// SaleService coordinates a sale across the inventory and account
// ledgers. The two ledgers are independently lockable resources, so
// cross-entity atomicity is achieved with a saga-style sequence of steps
// with explicit undo, not a two-phase commit: any failure after stock has
// been reserved triggers synchronous restoration before the error is
// returned.
type SaleService struct {
	inventory *InventoryService
	accounts  *AccountService
	sales     store.SaleRepository
	products  store.ProductRepository
}

func NewSaleService(inventory *InventoryService, accounts *AccountService, sales store.SaleRepository, products store.ProductRepository) *SaleService {
	return &SaleService{
		inventory: inventory,
		accounts:  accounts,
		sales:     sales,
		products:  products,
	}
}

type reservation struct {
	productID string
	quantity  int
}

// CreateSale validates the line items, reserves stock for each in listed
// order, applies the payment and posts any unpaid remainder as a charge
// to the customer's pending account, then persists the finalized sale.
// Persisting is the commit point; on any earlier failure all reserved
// stock is restored (reverse order) and the original failure is surfaced
// unchanged.
func (s *SaleService) CreateSale(ctx context.Context, customerID string, items []SaleLineItemRequest, amountPaid decimal.Decimal) (*models.Sale, error) {
	if len(items) == 0 {
		return nil, ErrEmptySale
	}
	if amountPaid.IsNegative() {
		return nil, ErrInvalidAmount
	}

	// Draft -> LineItemsValidated. Prices are snapshotted here; later
	// catalog price changes do not affect this sale.
	lineItems := make([]models.SaleLineItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidAmount
		}
		p, err := s.products.LoadProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrProductNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, &PersistenceError{Op: "load product", Err: err}
		}
		lineItems = append(lineItems, models.SaleLineItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    item.Quantity,
			UnitPrice:   p.UnitPrice,
		})
	}

	// LineItemsValidated -> StockReserved. All-or-nothing group: a failed
	// item undoes every prior reservation in this sale.
	reserved := make([]reservation, 0, len(lineItems))
	for _, li := range lineItems {
		if _, err := s.inventory.ReserveStock(ctx, li.ProductID, li.Quantity); err != nil {
			if compErr := s.restoreReserved(ctx, reserved); compErr != nil {
				return nil, compErr
			}
			log.Printf("[SALE] Aborted for customer %s: %v", customerID, err)
			return nil, err
		}
		reserved = append(reserved, reservation{productID: li.ProductID, quantity: li.Quantity})
	}

	total := decimal.Zero
	for _, li := range lineItems {
		total = total.Add(li.Subtotal())
	}

	// Payment validation happens before committing the sale.
	if amountPaid.GreaterThan(total) {
		if compErr := s.restoreReserved(ctx, reserved); compErr != nil {
			return nil, compErr
		}
		log.Printf("[SALE] Aborted for customer %s: paid %s exceeds total %s", customerID, amountPaid, total)
		return nil, ErrOverpaymentNotAllowed
	}

	// StockReserved -> PaymentApplied.
	amountDue := total.Sub(amountPaid)
	charged := false
	if amountDue.IsPositive() {
		if _, err := s.accounts.Charge(ctx, customerID, amountDue); err != nil {
			if compErr := s.restoreReserved(ctx, reserved); compErr != nil {
				return nil, compErr
			}
			log.Printf("[SALE] Aborted for customer %s: charge failed: %v", customerID, err)
			return nil, err
		}
		charged = true
	}

	sale := &models.Sale{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Items:      lineItems,
		Total:      total,
		AmountPaid: amountPaid,
		AmountDue:  amountDue,
		Status:     models.SaleStatusFinalized,
		CreatedAt:  time.Now().UTC(),
	}

	// PaymentApplied -> Finalized. This is the commit point.
	if err := s.sales.SaveSale(ctx, sale); err != nil {
		if charged {
			if _, revErr := s.accounts.RecordPayment(ctx, customerID, amountDue); revErr != nil {
				return nil, &CompensationError{Op: "charge reversal", Err: revErr}
			}
		}
		if compErr := s.restoreReserved(ctx, reserved); compErr != nil {
			return nil, compErr
		}
		return nil, &PersistenceError{Op: "save sale", Err: err}
	}

	log.Printf("[SALE] Finalized %s for customer %s, total %s, due %s", sale.ID, customerID, total, amountDue)
	return sale, nil
}

// restoreReserved undoes reservations in reverse order. A persistence
// failure here leaves the ledger in an unknown state, which is surfaced
// as a fatal CompensationError.
func (s *SaleService) restoreReserved(ctx context.Context, reserved []reservation) error {
	for i := len(reserved) - 1; i >= 0; i-- {
		r := reserved[i]
		if err := s.inventory.RestoreStock(ctx, r.productID, r.quantity); err != nil {
			return &CompensationError{Op: "stock restoration", Err: err}
		}
	}
	return nil
}

// GetSale returns a finalized sale by ID.
func (s *SaleService) GetSale(ctx context.Context, id string) (*models.Sale, error) {
	sale, err := s.sales.LoadSale(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrSaleNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, &PersistenceError{Op: "load sale", Err: err}
	}
	return sale, nil
}

// ListSales returns the most recent finalized sales, newest first.
func (s *SaleService) ListSales(ctx context.Context, limit int) ([]*models.Sale, error) {
	sales, err := s.sales.ListSales(ctx, limit)
	if err != nil {
		return nil, &PersistenceError{Op: "list sales", Err: err}
	}
	return sales, nil
}
