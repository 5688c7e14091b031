// Package postgres implements the repository boundary on PostgreSQL.
// Per-entity atomic read-modify-write is provided by versioned UPDATEs:
// every SaveProduct/SaveAccount carries the version the caller loaded,
// and a zero-row update means a concurrent writer won the race.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/tiendapos/backend/internal/models"
	"github.com/tiendapos/backend/internal/store"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Version = 1

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, barcode, unit_price, stock, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Name, p.Barcode, p.UnitPrice, p.Stock, p.Version, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return store.ErrDuplicateBarcode
		}
		return err
	}
	return nil
}

func (s *Store) LoadProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, barcode, unit_price, stock, version, created_at, updated_at
		FROM products
		WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Barcode, &p.UnitPrice, &p.Stock, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) SaveProduct(ctx context.Context, p *models.Product) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1, barcode = $2, unit_price = $3, stock = $4, version = version + 1, updated_at = $5
		WHERE id = $6 AND version = $7`,
		p.Name, p.Barcode, p.UnitPrice, p.Stock, time.Now().UTC(), p.ID, p.Version)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return store.ErrDuplicateBarcode
		}
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("optimistic lock failed for product %s", p.ID)
	}
	p.Version++
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrProductNotFound
	}
	return nil
}

func (s *Store) ListProducts(ctx context.Context, offset, limit int) ([]*models.Product, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, barcode, unit_price, stock, version, created_at, updated_at
		FROM products
		ORDER BY name
		OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Barcode, &p.UnitPrice, &p.Stock, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

func (s *Store) FindProductByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	var p models.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, barcode, unit_price, stock, version, created_at, updated_at
		FROM products
		WHERE barcode = $1`, barcode).
		Scan(&p.ID, &p.Name, &p.Barcode, &p.UnitPrice, &p.Stock, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) LoadAccount(ctx context.Context, customerID string) (*models.PendingAccount, error) {
	var a models.PendingAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT customer_id, balance, version, created_at, updated_at
		FROM pending_accounts
		WHERE customer_id = $1`, customerID).
		Scan(&a.CustomerID, &a.Balance, &a.Version, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) SaveAccount(ctx context.Context, a *models.PendingAccount) error {
	now := time.Now().UTC()

	if a.Version == 0 {
		a.Version = 1
		a.CreatedAt = now
		a.UpdatedAt = now
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO pending_accounts (customer_id, balance, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)`,
			a.CustomerID, a.Balance, a.Version, a.CreatedAt, a.UpdatedAt)
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE pending_accounts
		SET balance = $1, version = version + 1, updated_at = $2
		WHERE customer_id = $3 AND version = $4`,
		a.Balance, now, a.CustomerID, a.Version)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("optimistic lock failed for account %s", a.CustomerID)
	}
	a.Version++
	return nil
}

func (s *Store) ListOpenAccounts(ctx context.Context) ([]*models.PendingAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT customer_id, balance, version, created_at, updated_at
		FROM pending_accounts
		WHERE balance <> 0
		ORDER BY customer_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []*models.PendingAccount{}
	for rows.Next() {
		var a models.PendingAccount
		if err := rows.Scan(&a.CustomerID, &a.Balance, &a.Version, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, &a)
	}
	return accounts, rows.Err()
}

// SaveSale writes the sale header and its line items in one transaction.
// Sales are append-only; there is no update path.
func (s *Store) SaveSale(ctx context.Context, sale *models.Sale) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, customer_id, total, amount_paid, amount_due, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sale.ID, sale.CustomerID, sale.Total, sale.AmountPaid, sale.AmountDue, sale.Status, sale.CreatedAt)
	if err != nil {
		return err
	}

	for i, item := range sale.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sale_line_items (sale_id, position, product_id, product_name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			sale.ID, i, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) LoadSale(ctx context.Context, id string) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.QueryRowContext(ctx, `
		SELECT id, customer_id, total, amount_paid, amount_due, status, created_at
		FROM sales
		WHERE id = $1`, id).
		Scan(&sale.ID, &sale.CustomerID, &sale.Total, &sale.AmountPaid, &sale.AmountDue, &sale.Status, &sale.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := s.loadLineItems(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return &sale, nil
}

func (s *Store) ListSales(ctx context.Context, limit int) ([]*models.Sale, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_id, total, amount_paid, amount_due, status, created_at
		FROM sales
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := []*models.Sale{}
	for rows.Next() {
		var sale models.Sale
		if err := rows.Scan(&sale.ID, &sale.CustomerID, &sale.Total, &sale.AmountPaid, &sale.AmountDue, &sale.Status, &sale.CreatedAt); err != nil {
			return nil, err
		}
		sales = append(sales, &sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, sale := range sales {
		items, err := s.loadLineItems(ctx, sale.ID)
		if err != nil {
			return nil, err
		}
		sale.Items = items
	}
	return sales, nil
}

func (s *Store) loadLineItems(ctx context.Context, saleID string) ([]models.SaleLineItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, product_name, quantity, unit_price
		FROM sale_line_items
		WHERE sale_id = $1
		ORDER BY position`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.SaleLineItem{}
	for rows.Next() {
		var item models.SaleLineItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
