// Package store defines the repository boundary used by the ledger
// services. Each load/save offers at least per-entity atomic
// read-modify-write; the postgres implementation relies on row locks,
// the memory implementation on an internal mutex.
package store

import (
	"context"
	"errors"

	"github.com/tiendapos/backend/internal/models"
)

var (
	// ErrProductNotFound is returned when no product exists for the given ID.
	ErrProductNotFound = errors.New("product not found")

	// ErrAccountNotFound is returned when no pending account exists for the customer.
	ErrAccountNotFound = errors.New("account not found")

	// ErrSaleNotFound is returned when no sale exists for the given ID.
	ErrSaleNotFound = errors.New("sale not found")

	// ErrDuplicateBarcode is returned when creating a product with a barcode
	// that is already registered.
	ErrDuplicateBarcode = errors.New("barcode already registered")
)

// ProductRepository loads and saves catalog products.
type ProductRepository interface {
	LoadProduct(ctx context.Context, id string) (*models.Product, error)
	SaveProduct(ctx context.Context, p *models.Product) error
	CreateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context, offset, limit int) ([]*models.Product, error)
	FindProductByBarcode(ctx context.Context, barcode string) (*models.Product, error)
}

// AccountRepository loads and saves pending accounts.
type AccountRepository interface {
	LoadAccount(ctx context.Context, customerID string) (*models.PendingAccount, error)
	SaveAccount(ctx context.Context, a *models.PendingAccount) error
	ListOpenAccounts(ctx context.Context) ([]*models.PendingAccount, error)
}

// SaleRepository persists finalized sales. The sale history is append-only.
type SaleRepository interface {
	SaveSale(ctx context.Context, s *models.Sale) error
	LoadSale(ctx context.Context, id string) (*models.Sale, error)
	ListSales(ctx context.Context, limit int) ([]*models.Sale, error)
}

// Store aggregates the three repositories behind one backend.
type Store interface {
	ProductRepository
	AccountRepository
	SaleRepository
}
