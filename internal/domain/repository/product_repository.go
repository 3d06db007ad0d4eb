package repository

import (
	"context"

	"slem/internal/domain/entity"
)

// ProductRepository never writes stock, views or sales through Update;
// stock belongs to the StockLedger and counters use atomic increments.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	SoftDelete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	IncrementSales(ctx context.Context, id string, quantity int) error
	List(ctx context.Context, filter entity.ProductFilter, limit, offset int) ([]*entity.Product, int64, error)
	ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]*entity.Product, int64, error)
	SuggestTitles(ctx context.Context, query string, limit int) ([]string, error)
}
