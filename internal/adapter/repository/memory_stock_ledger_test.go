package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slem/internal/domain/entity"
	"slem/internal/domain/repository"
	"slem/pkg/errors"
)

func seedProduct(t *testing.T, store *MemoryStore, id, sellerID string, price float64, stock int) {
	t.Helper()
	err := NewMemoryProductRepository(store).Create(context.Background(), &entity.Product{
		ID:       id,
		SellerID: sellerID,
		Title:    "Product " + id,
		Price:    price,
		Stock:    stock,
		Status:   entity.ProductStatusActive,
	})
	require.NoError(t, err)
}

func stockOf(t *testing.T, store *MemoryStore, id string) int {
	t.Helper()
	p, err := NewMemoryProductRepository(store).GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func TestMemoryStockLedgerReserve(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements every line", func(t *testing.T) {
		store := NewMemoryStore()
		seedProduct(t, store, "p1", "s1", 100, 5)
		seedProduct(t, store, "p2", "s1", 50, 1)
		ledger := NewMemoryStockLedger(store)

		products, err := ledger.Reserve(ctx, "s1", []repository.StockDemand{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		})
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, 5, products[0].Stock)
		assert.Equal(t, 3, stockOf(t, store, "p1"))
		assert.Equal(t, 0, stockOf(t, store, "p2"))
	})

	t.Run("short line leaves all stock untouched", func(t *testing.T) {
		store := NewMemoryStore()
		seedProduct(t, store, "p1", "s1", 100, 5)
		seedProduct(t, store, "p2", "s1", 50, 1)
		ledger := NewMemoryStockLedger(store)

		_, err := ledger.Reserve(ctx, "s1", []repository.StockDemand{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 3},
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeInsufficientStock))

		appErr, _ := errors.As(err)
		assert.Equal(t, 1, appErr.Details["available"])
		assert.Equal(t, 5, stockOf(t, store, "p1"))
		assert.Equal(t, 1, stockOf(t, store, "p2"))
	})

	t.Run("foreign product is a seller mismatch", func(t *testing.T) {
		store := NewMemoryStore()
		seedProduct(t, store, "p1", "s1", 100, 5)
		seedProduct(t, store, "p9", "s2", 100, 5)
		ledger := NewMemoryStockLedger(store)

		_, err := ledger.Reserve(ctx, "s1", []repository.StockDemand{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "p9", Quantity: 1},
		})
		assert.True(t, errors.Is(err, errors.CodeSellerMismatch))
		assert.Equal(t, 5, stockOf(t, store, "p1"))
	})

	t.Run("missing product", func(t *testing.T) {
		store := NewMemoryStore()
		ledger := NewMemoryStockLedger(store)

		_, err := ledger.Reserve(ctx, "s1", []repository.StockDemand{{ProductID: "nope", Quantity: 1}})
		assert.True(t, errors.Is(err, errors.CodeNotFound))
	})
}

func TestMemoryStockLedgerConcurrentReservationsNeverOversell(t *testing.T) {
	store := NewMemoryStore()
	seedProduct(t, store, "p1", "s1", 100, 4)
	ledger := NewMemoryStockLedger(store)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = ledger.Reserve(context.Background(), "s1", []repository.StockDemand{{ProductID: "p1", Quantity: 3}})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, errors.CodeInsufficientStock))
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, stockOf(t, store, "p1"))
}

func TestMemoryStockLedgerReleaseAndSetStock(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedProduct(t, store, "p1", "s1", 100, 2)
	ledger := NewMemoryStockLedger(store)

	require.NoError(t, ledger.Release(ctx, []repository.StockDemand{{ProductID: "p1", Quantity: 3}}))
	assert.Equal(t, 5, stockOf(t, store, "p1"))

	err := ledger.SetStock(ctx, "p1", -1)
	assert.True(t, errors.Is(err, errors.CodeValidation))

	require.NoError(t, ledger.SetStock(ctx, "p1", 9))
	assert.Equal(t, 9, stockOf(t, store, "p1"))
}

func TestMergeDemands(t *testing.T) {
	merged := repository.MergeDemands([]repository.StockDemand{
		{ProductID: "a", Quantity: 1},
		{ProductID: "b", Quantity: 2},
		{ProductID: "a", Quantity: 3},
	})

	assert.Equal(t, []repository.StockDemand{
		{ProductID: "a", Quantity: 4},
		{ProductID: "b", Quantity: 2},
	}, merged)
}
