package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tiendapos/backend/internal/models"
	"github.com/tiendapos/backend/internal/store"
)

// ProductService manages the product catalog. Stock mutation is not done
// here; only the inventory ledger touches stock after creation.
type ProductService struct {
	products store.ProductRepository
}

func NewProductService(products store.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

// CreateProduct registers a new catalog item with its initial stock.
func (s *ProductService) CreateProduct(ctx context.Context, name, barcode string, unitPrice decimal.Decimal, stock int) (*models.Product, error) {
	if unitPrice.IsNegative() || stock < 0 {
		return nil, ErrInvalidAmount
	}

	p := &models.Product{
		ID:        uuid.NewString(),
		Name:      name,
		Barcode:   barcode,
		UnitPrice: unitPrice,
		Stock:     stock,
	}
	if err := s.products.CreateProduct(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicateBarcode) {
			return nil, ErrDuplicateBarcode
		}
		return nil, &PersistenceError{Op: "create product", Err: err}
	}
	return p, nil
}

// UpdateProduct edits name, barcode and unit price. Stock is deliberately
// left alone so catalog edits cannot race the inventory ledger.
func (s *ProductService) UpdateProduct(ctx context.Context, id, name, barcode string, unitPrice decimal.Decimal) (*models.Product, error) {
	if unitPrice.IsNegative() {
		return nil, ErrInvalidAmount
	}

	p, err := s.products.LoadProduct(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, &PersistenceError{Op: "load product", Err: err}
	}

	p.Name = name
	p.Barcode = barcode
	p.UnitPrice = unitPrice
	if err := s.products.SaveProduct(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicateBarcode) {
			return nil, ErrDuplicateBarcode
		}
		return nil, &PersistenceError{Op: "save product", Err: err}
	}
	return p, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return &PersistenceError{Op: "delete product", Err: err}
	}
	return nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.products.LoadProduct(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, &PersistenceError{Op: "load product", Err: err}
	}
	return p, nil
}

func (s *ProductService) ListProducts(ctx context.Context, offset, limit int) ([]*models.Product, error) {
	products, err := s.products.ListProducts(ctx, offset, limit)
	if err != nil {
		return nil, &PersistenceError{Op: "list products", Err: err}
	}
	return products, nil
}

// FindByBarcode looks a product up by its scanned barcode.
func (s *ProductService) FindByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	p, err := s.products.FindProductByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, &PersistenceError{Op: "find product", Err: err}
	}
	return p, nil
}
