package repository

import (
	"context"

	"slem/internal/domain/entity"
)

type CartRepository interface {
	// Get returns the buyer's cart, or an empty one if none was stored yet.
	Get(ctx context.Context, buyerID string) (*entity.Cart, error)

	// Mutate loads (or lazily creates) the cart and applies fn atomically.
	// Nothing is written when fn returns an error.
	Mutate(ctx context.Context, buyerID string, fn func(cart *entity.Cart) error) (*entity.Cart, error)
}
