// Package memory provides an in-memory Store implementation used in dev
// mode and by the service tests. All operations are guarded by a single
// RWMutex, which satisfies the per-entity atomic read-modify-write
// contract of the repository boundary.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tiendapos/backend/internal/models"
	"github.com/tiendapos/backend/internal/store"
)

type Store struct {
	mu       sync.RWMutex
	products map[string]*models.Product
	barcodes map[string]string // barcode -> product ID
	accounts map[string]*models.PendingAccount
	sales    map[string]*models.Sale
	saleIDs  []string // insertion order, newest last
}

func New() *Store {
	return &Store{
		products: make(map[string]*models.Product),
		barcodes: make(map[string]string),
		accounts: make(map[string]*models.PendingAccount),
		sales:    make(map[string]*models.Sale),
	}
}

func (s *Store) CreateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.barcodes[p.Barcode]; ok {
		return store.ErrDuplicateBarcode
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Version = 1

	cp := *p
	s.products[p.ID] = &cp
	s.barcodes[p.Barcode] = p.ID
	return nil
}

func (s *Store) LoadProduct(_ context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) SaveProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.products[p.ID]
	if !ok {
		return store.ErrProductNotFound
	}

	if prev.Barcode != p.Barcode {
		if owner, taken := s.barcodes[p.Barcode]; taken && owner != p.ID {
			return store.ErrDuplicateBarcode
		}
		delete(s.barcodes, prev.Barcode)
		s.barcodes[p.Barcode] = p.ID
	}

	p.Version = prev.Version + 1
	p.UpdatedAt = time.Now().UTC()

	cp := *p
	s.products[p.ID] = &cp
	return nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return store.ErrProductNotFound
	}
	delete(s.barcodes, p.Barcode)
	delete(s.products, id)
	return nil
}

func (s *Store) ListProducts(_ context.Context, offset, limit int) ([]*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*models.Product, 0, len(s.products))
	for _, p := range s.products {
		cp := *p
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []*models.Product{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *Store) FindProductByBarcode(_ context.Context, barcode string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.barcodes[barcode]
	if !ok {
		return nil, store.ErrProductNotFound
	}
	cp := *s.products[id]
	return &cp, nil
}

func (s *Store) LoadAccount(_ context.Context, customerID string) (*models.PendingAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[customerID]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *Store) SaveAccount(_ context.Context, a *models.PendingAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if prev, ok := s.accounts[a.CustomerID]; ok {
		a.Version = prev.Version + 1
	} else {
		a.Version = 1
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	cp := *a
	s.accounts[a.CustomerID] = &cp
	return nil
}

func (s *Store) ListOpenAccounts(_ context.Context) ([]*models.PendingAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	open := make([]*models.PendingAccount, 0)
	for _, a := range s.accounts {
		if a.Balance.IsZero() {
			continue
		}
		cp := *a
		open = append(open, &cp)
	}
	sort.Slice(open, func(i, j int) bool { return open[i].CustomerID < open[j].CustomerID })
	return open, nil
}

func (s *Store) SaveSale(_ context.Context, sale *models.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *sale
	cp.Items = append([]models.SaleLineItem(nil), sale.Items...)
	s.sales[sale.ID] = &cp
	s.saleIDs = append(s.saleIDs, sale.ID)
	return nil
}

func (s *Store) LoadSale(_ context.Context, id string) (*models.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.sales[id]
	if !ok {
		return nil, store.ErrSaleNotFound
	}
	cp := *sale
	cp.Items = append([]models.SaleLineItem(nil), sale.Items...)
	return &cp, nil
}

func (s *Store) ListSales(_ context.Context, limit int) ([]*models.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.saleIDs)
	if limit <= 0 || limit > n {
		limit = n
	}

	// Newest first.
	out := make([]*models.Sale, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		sale := s.sales[s.saleIDs[i]]
		cp := *sale
		cp.Items = append([]models.SaleLineItem(nil), sale.Items...)
		out = append(out, &cp)
	}
	return out, nil
}
