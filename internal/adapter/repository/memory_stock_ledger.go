package repository

import (
	"context"
	"time"

	"slem/internal/domain/entity"
	"slem/internal/domain/repository"
	"slem/pkg/errors"
)

type memoryStockLedger struct {
	store *MemoryStore
}

func NewMemoryStockLedger(store *MemoryStore) repository.StockLedger {
	return &memoryStockLedger{store: store}
}

func (l *memoryStockLedger) Reserve(ctx context.Context, sellerID string, demands []repository.StockDemand) ([]*entity.Product, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	merged := repository.MergeDemands(demands)
	snapshot := make([]*entity.Product, 0, len(merged))

	for _, d := range merged {
		p, ok := l.store.products[d.ProductID]
		if !ok || !p.IsListed() {
			return nil, errors.NotFound("Product", nil)
		}
		if p.SellerID != sellerID {
			return nil, errors.SellerMismatch(d.ProductID)
		}
		if p.Stock < d.Quantity {
			return nil, errors.InsufficientStock(d.ProductID, p.Stock)
		}
		snapshot = append(snapshot, cloneProduct(p))
	}

	now := time.Now()
	for _, d := range merged {
		p := l.store.products[d.ProductID]
		p.Stock -= d.Quantity
		p.UpdatedAt = now
	}

	return snapshot, nil
}

func (l *memoryStockLedger) Release(ctx context.Context, demands []repository.StockDemand) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	now := time.Now()
	for _, d := range repository.MergeDemands(demands) {
		p, ok := l.store.products[d.ProductID]
		if !ok {
			continue
		}
		p.Stock += d.Quantity
		p.UpdatedAt = now
	}
	return nil
}

func (l *memoryStockLedger) SetStock(ctx context.Context, productID string, stock int) error {
	if stock < 0 {
		return errors.Validation("stock must be greater than or equal to 0")
	}

	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	p, ok := l.store.products[productID]
	if !ok || p.DeletedAt != nil {
		return errors.NotFound("Product", nil)
	}
	p.Stock = stock
	p.UpdatedAt = time.Now()
	return nil
}
