package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendapos/backend/internal/models"
	"github.com/tiendapos/backend/internal/store"
)

func TestStore_Products(t *testing.T) {
	ctx := context.Background()

	t.Run("create and load", func(t *testing.T) {
		s := New()
		p := &models.Product{ID: "p1", Name: "Milk", Barcode: "b1", UnitPrice: decimal.RequireFromString("10.00"), Stock: 5}
		require.NoError(t, s.CreateProduct(ctx, p))

		loaded, err := s.LoadProduct(ctx, "p1")
		assert.NoError(t, err)
		assert.Equal(t, "Milk", loaded.Name)
		assert.Equal(t, 1, loaded.Version)
	})

	t.Run("duplicate barcode rejected", func(t *testing.T) {
		s := New()
		require.NoError(t, s.CreateProduct(ctx, &models.Product{ID: "p1", Name: "Milk", Barcode: "b1"}))
		err := s.CreateProduct(ctx, &models.Product{ID: "p2", Name: "Other", Barcode: "b1"})
		assert.ErrorIs(t, err, store.ErrDuplicateBarcode)
	})

	t.Run("save bumps version and reindexes barcode", func(t *testing.T) {
		s := New()
		p := &models.Product{ID: "p1", Name: "Milk", Barcode: "b1"}
		require.NoError(t, s.CreateProduct(ctx, p))

		p.Barcode = "b2"
		require.NoError(t, s.SaveProduct(ctx, p))
		assert.Equal(t, 2, p.Version)

		_, err := s.FindProductByBarcode(ctx, "b1")
		assert.ErrorIs(t, err, store.ErrProductNotFound)

		found, err := s.FindProductByBarcode(ctx, "b2")
		assert.NoError(t, err)
		assert.Equal(t, "p1", found.ID)
	})

	t.Run("loaded product is a copy", func(t *testing.T) {
		s := New()
		require.NoError(t, s.CreateProduct(ctx, &models.Product{ID: "p1", Name: "Milk", Barcode: "b1", Stock: 5}))

		loaded, _ := s.LoadProduct(ctx, "p1")
		loaded.Stock = 0

		again, _ := s.LoadProduct(ctx, "p1")
		assert.Equal(t, 5, again.Stock)
	})

	t.Run("delete frees the barcode", func(t *testing.T) {
		s := New()
		require.NoError(t, s.CreateProduct(ctx, &models.Product{ID: "p1", Name: "Milk", Barcode: "b1"}))
		require.NoError(t, s.DeleteProduct(ctx, "p1"))
		assert.NoError(t, s.CreateProduct(ctx, &models.Product{ID: "p2", Name: "Other", Barcode: "b1"}))
	})

	t.Run("list is ordered by name with paging", func(t *testing.T) {
		s := New()
		require.NoError(t, s.CreateProduct(ctx, &models.Product{ID: "p1", Name: "Zucchini", Barcode: "b1"}))
		require.NoError(t, s.CreateProduct(ctx, &models.Product{ID: "p2", Name: "Apple", Barcode: "b2"}))
		require.NoError(t, s.CreateProduct(ctx, &models.Product{ID: "p3", Name: "Milk", Barcode: "b3"}))

		all, err := s.ListProducts(ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "Apple", all[0].Name)

		page, err := s.ListProducts(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "Milk", page[0].Name)
	})

	t.Run("negative offset is treated as zero", func(t *testing.T) {
		s := New()
		require.NoError(t, s.CreateProduct(ctx, &models.Product{ID: "p1", Name: "Milk", Barcode: "b1"}))

		all, err := s.ListProducts(ctx, -1, 100)
		require.NoError(t, err)
		require.Len(t, all, 1)
	})
}

func TestStore_Accounts(t *testing.T) {
	ctx := context.Background()

	t.Run("save and load", func(t *testing.T) {
		s := New()
		a := &models.PendingAccount{CustomerID: "cust-1", Balance: decimal.RequireFromString("5.00")}
		require.NoError(t, s.SaveAccount(ctx, a))
		assert.Equal(t, 1, a.Version)

		loaded, err := s.LoadAccount(ctx, "cust-1")
		assert.NoError(t, err)
		assert.True(t, loaded.Balance.Equal(decimal.RequireFromString("5.00")))
	})

	t.Run("missing account", func(t *testing.T) {
		s := New()
		_, err := s.LoadAccount(ctx, "ghost")
		assert.ErrorIs(t, err, store.ErrAccountNotFound)
	})

	t.Run("open accounts excludes zero balances", func(t *testing.T) {
		s := New()
		require.NoError(t, s.SaveAccount(ctx, &models.PendingAccount{CustomerID: "a", Balance: decimal.RequireFromString("5.00")}))
		require.NoError(t, s.SaveAccount(ctx, &models.PendingAccount{CustomerID: "b", Balance: decimal.Zero}))
		require.NoError(t, s.SaveAccount(ctx, &models.PendingAccount{CustomerID: "c", Balance: decimal.RequireFromString("-1.00")}))

		open, err := s.ListOpenAccounts(ctx)
		assert.NoError(t, err)
		require.Len(t, open, 2)
		assert.Equal(t, "a", open[0].CustomerID)
		assert.Equal(t, "c", open[1].CustomerID)
	})
}

func TestStore_Sales(t *testing.T) {
	ctx := context.Background()

	t.Run("save and load with items", func(t *testing.T) {
		s := New()
		sale := &models.Sale{
			ID:         "sale-1",
			CustomerID: "cust-1",
			Items:      []models.SaleLineItem{{ProductID: "p1", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")}},
			Total:      decimal.RequireFromString("20.00"),
			Status:     models.SaleStatusFinalized,
		}
		require.NoError(t, s.SaveSale(ctx, sale))

		loaded, err := s.LoadSale(ctx, "sale-1")
		assert.NoError(t, err)
		assert.Len(t, loaded.Items, 1)
	})

	t.Run("missing sale", func(t *testing.T) {
		s := New()
		_, err := s.LoadSale(ctx, "ghost")
		assert.ErrorIs(t, err, store.ErrSaleNotFound)
	})

	t.Run("list returns newest first with limit", func(t *testing.T) {
		s := New()
		for _, id := range []string{"s1", "s2", "s3"} {
			require.NoError(t, s.SaveSale(ctx, &models.Sale{ID: id, Status: models.SaleStatusFinalized}))
		}

		sales, err := s.ListSales(ctx, 2)
		require.NoError(t, err)
		require.Len(t, sales, 2)
		assert.Equal(t, "s3", sales[0].ID)
		assert.Equal(t, "s2", sales[1].ID)
	})
}
