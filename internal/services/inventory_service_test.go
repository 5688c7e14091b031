package services

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendapos/backend/internal/models"
	"github.com/tiendapos/backend/internal/store/memory"
)

func seedProduct(t *testing.T, s *memory.Store, id, name string, price string, stock int) {
	t.Helper()
	p := &models.Product{
		ID:        id,
		Name:      name,
		Barcode:   "BC-" + id,
		UnitPrice: decimal.RequireFromString(price),
		Stock:     stock,
	}
	require.NoError(t, s.CreateProduct(context.Background(), p))
}

func TestInventoryService_ReserveStock(t *testing.T) {
	ctx := context.Background()

	t.Run("successful reservation returns previous stock", func(t *testing.T) {
		s := memory.New()
		seedProduct(t, s, "p1", "Milk", "10.00", 5)
		inv := NewInventoryService(s)

		prev, err := inv.ReserveStock(ctx, "p1", 2)
		assert.NoError(t, err)
		assert.Equal(t, 5, prev)

		stock, err := inv.GetStock(ctx, "p1")
		assert.NoError(t, err)
		assert.Equal(t, 3, stock)
	})

	t.Run("insufficient stock leaves quantity untouched", func(t *testing.T) {
		s := memory.New()
		seedProduct(t, s, "p1", "Milk", "10.00", 5)
		inv := NewInventoryService(s)

		_, err := inv.ReserveStock(ctx, "p1", 6)
		assert.ErrorIs(t, err, ErrInsufficientStock)

		stock, _ := inv.GetStock(ctx, "p1")
		assert.Equal(t, 5, stock)
	})

	t.Run("unknown product", func(t *testing.T) {
		inv := NewInventoryService(memory.New())

		_, err := inv.ReserveStock(ctx, "nope", 1)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("non-positive quantity rejected", func(t *testing.T) {
		s := memory.New()
		seedProduct(t, s, "p1", "Milk", "10.00", 5)
		inv := NewInventoryService(s)

		_, err := inv.ReserveStock(ctx, "p1", 0)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = inv.ReserveStock(ctx, "p1", -3)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestInventoryService_RestoreStock(t *testing.T) {
	ctx := context.Background()

	t.Run("reserve then restore is a round trip", func(t *testing.T) {
		s := memory.New()
		seedProduct(t, s, "p1", "Milk", "10.00", 7)
		inv := NewInventoryService(s)

		_, err := inv.ReserveStock(ctx, "p1", 4)
		require.NoError(t, err)
		require.NoError(t, inv.RestoreStock(ctx, "p1", 4))

		stock, err := inv.GetStock(ctx, "p1")
		assert.NoError(t, err)
		assert.Equal(t, 7, stock)
	})

	t.Run("unknown product", func(t *testing.T) {
		inv := NewInventoryService(memory.New())
		assert.ErrorIs(t, inv.RestoreStock(ctx, "nope", 1), ErrProductNotFound)
	})
}

func TestInventoryService_ConcurrentReservations(t *testing.T) {
	// Stock is N and every competitor wants all N units: exactly one
	// reservation may win and the final stock must be zero.
	ctx := context.Background()
	const stock = 10
	const competitors = 25

	s := memory.New()
	seedProduct(t, s, "p1", "Milk", "10.00", stock)
	inv := NewInventoryService(s)

	var wg sync.WaitGroup
	results := make(chan error, competitors)
	for i := 0; i < competitors; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := inv.ReserveStock(ctx, "p1", stock)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientStock)
			losses++
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, competitors-1, losses)

	final, err := inv.GetStock(ctx, "p1")
	assert.NoError(t, err)
	assert.Equal(t, 0, final)
}
