package repository

import (
	"context"
	"time"

	"slem/internal/domain/entity"
	"slem/internal/domain/repository"
)

type memoryCartRepository struct {
	store *MemoryStore
}

func NewMemoryCartRepository(store *MemoryStore) repository.CartRepository {
	return &memoryCartRepository{store: store}
}

func (r *memoryCartRepository) Get(ctx context.Context, buyerID string) (*entity.Cart, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if cart, ok := r.store.carts[buyerID]; ok {
		return cloneCart(cart), nil
	}
	return &entity.Cart{BuyerID: buyerID, Items: []entity.CartItem{}}, nil
}

func (r *memoryCartRepository) Mutate(ctx context.Context, buyerID string, fn func(cart *entity.Cart) error) (*entity.Cart, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	var cart *entity.Cart
	if existing, ok := r.store.carts[buyerID]; ok {
		cart = cloneCart(existing)
	} else {
		cart = &entity.Cart{BuyerID: buyerID, Items: []entity.CartItem{}, CreatedAt: now}
	}

	if err := fn(cart); err != nil {
		return nil, err
	}

	cart.UpdatedAt = now
	r.store.carts[buyerID] = cloneCart(cart)
	return cart, nil
}
