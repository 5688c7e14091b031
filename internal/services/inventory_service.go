package services

import (
	"context"
	"errors"
	"log"

	"github.com/tiendapos/backend/internal/store"
)

// InventoryService is the inventory ledger: it owns all stock mutations.
// Stock never goes negative; a reservation either fully applies or leaves
// the product untouched.
type InventoryService struct {
	products store.ProductRepository
	locker   *entityLocker
}

func NewInventoryService(products store.ProductRepository) *InventoryService {
	return &InventoryService{
		products: products,
		locker:   newEntityLocker(),
	}
}

// ReserveStock atomically decrements the product's stock by qty and
// returns the pre-reservation quantity for audit. Fails with
// ErrInsufficientStock when current stock < qty; no partial decrement
// occurs on failure.
func (s *InventoryService) ReserveStock(ctx context.Context, productID string, qty int) (int, error) {
	if qty <= 0 {
		return 0, ErrInvalidAmount
	}

	unlock := s.locker.lock("product:" + productID)
	defer unlock()

	p, err := s.products.LoadProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			return 0, ErrProductNotFound
		}
		return 0, &PersistenceError{Op: "load product", Err: err}
	}

	if p.Stock < qty {
		return 0, ErrInsufficientStock
	}

	prev := p.Stock
	p.Stock -= qty
	if err := s.products.SaveProduct(ctx, p); err != nil {
		return 0, &PersistenceError{Op: "save product", Err: err}
	}

	log.Printf("[INVENTORY] Reserved %d x %s, stock %d -> %d", qty, productID, prev, p.Stock)
	return prev, nil
}

// RestoreStock atomically increments the product's stock by qty. This is
// the compensation step for an undone reservation, not a business return,
// and it is not idempotent: callers must invoke it exactly once per
// reservation being rolled back.
func (s *InventoryService) RestoreStock(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return ErrInvalidAmount
	}

	unlock := s.locker.lock("product:" + productID)
	defer unlock()

	p, err := s.products.LoadProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return &PersistenceError{Op: "load product", Err: err}
	}

	p.Stock += qty
	if err := s.products.SaveProduct(ctx, p); err != nil {
		return &PersistenceError{Op: "save product", Err: err}
	}

	log.Printf("[INVENTORY] Restored %d x %s, stock now %d", qty, productID, p.Stock)
	return nil
}

// GetStock returns a read-only snapshot of the product's stock level.
func (s *InventoryService) GetStock(ctx context.Context, productID string) (int, error) {
	p, err := s.products.LoadProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			return 0, ErrProductNotFound
		}
		return 0, &PersistenceError{Op: "load product", Err: err}
	}
	return p.Stock, nil
}
