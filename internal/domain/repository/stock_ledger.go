package repository

import (
	"context"

	"slem/internal/domain/entity"
)

type StockDemand struct {
	ProductID string
	Quantity  int
}

// StockLedger is the only writer of Product.Stock.
type StockLedger interface {
	// Reserve checks every demand (product exists and is listed, owned by sellerID,
	// enough stock) before decrementing any of them. Either all decrements land or none.
	// The returned products reflect the state read before the decrement.
	Reserve(ctx context.Context, sellerID string, demands []StockDemand) ([]*entity.Product, error)

	// Release returns previously reserved quantities.
	Release(ctx context.Context, demands []StockDemand) error

	// SetStock is the owner/admin override; negative values are rejected.
	SetStock(ctx context.Context, productID string, stock int) error
}

// MergeDemands folds repeated product ids into one demand each, keeping first-seen order.
func MergeDemands(demands []StockDemand) []StockDemand {
	index := make(map[string]int, len(demands))
	merged := make([]StockDemand, 0, len(demands))
	for _, d := range demands {
		if i, ok := index[d.ProductID]; ok {
			merged[i].Quantity += d.Quantity
			continue
		}
		index[d.ProductID] = len(merged)
		merged = append(merged, d)
	}
	return merged
}
