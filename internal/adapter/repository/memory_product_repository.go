package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"slem/internal/domain/entity"
	"slem/internal/domain/repository"
	"slem/pkg/errors"
)

type memoryProductRepository struct {
	store *MemoryStore
}

func NewMemoryProductRepository(store *MemoryStore) repository.ProductRepository {
	return &memoryProductRepository{store: store}
}

func (r *memoryProductRepository) Create(ctx context.Context, product *entity.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	r.store.products[product.ID] = cloneProduct(product)
	return nil
}

func (r *memoryProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.products[id]
	if !ok || p.DeletedAt != nil {
		return nil, errors.NotFound("Product", nil)
	}
	return cloneProduct(p), nil
}

func (r *memoryProductRepository) Update(ctx context.Context, product *entity.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.products[product.ID]
	if !ok || current.DeletedAt != nil {
		return errors.NotFound("Product", nil)
	}

	updated := cloneProduct(product)
	updated.Stock = current.Stock
	updated.Views = current.Views
	updated.Sales = current.Sales
	updated.SellerID = current.SellerID
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = time.Now()
	r.store.products[product.ID] = updated

	product.Stock, product.Views, product.Sales = updated.Stock, updated.Views, updated.Sales
	product.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *memoryProductRepository) SoftDelete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.products[id]
	if !ok || p.DeletedAt != nil {
		return errors.NotFound("Product", nil)
	}
	now := time.Now()
	p.DeletedAt = &now
	p.Status = entity.ProductStatusInactive
	p.UpdatedAt = now
	return nil
}

func (r *memoryProductRepository) IncrementViews(ctx context.Context, id string) error {
	return r.increment(id, func(p *entity.Product) { p.Views++ })
}

func (r *memoryProductRepository) IncrementSales(ctx context.Context, id string, quantity int) error {
	return r.increment(id, func(p *entity.Product) { p.Sales += quantity })
}

func (r *memoryProductRepository) increment(id string, fn func(p *entity.Product)) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.products[id]
	if !ok {
		return errors.NotFound("Product", nil)
	}
	fn(p)
	return nil
}

func (r *memoryProductRepository) List(ctx context.Context, filter entity.ProductFilter, limit, offset int) ([]*entity.Product, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var products []*entity.Product
	for _, p := range r.store.products {
		if matchesProductFilter(p, filter) {
			products = append(products, cloneProduct(p))
		}
	}
	sortProducts(products, filter.Sort)

	return paginate(products, limit, offset), int64(len(products)), nil
}

func (r *memoryProductRepository) ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]*entity.Product, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var products []*entity.Product
	for _, p := range r.store.products {
		if p.SellerID == sellerID && p.DeletedAt == nil {
			products = append(products, cloneProduct(p))
		}
	}
	sortProducts(products, "newest")

	return paginate(products, limit, offset), int64(len(products)), nil
}

func (r *memoryProductRepository) SuggestTitles(ctx context.Context, query string, limit int) ([]string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	products := make([]*entity.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		products = append(products, p)
	}
	sortProducts(products, "popular")
	return suggestTitles(products, query, limit), nil
}
