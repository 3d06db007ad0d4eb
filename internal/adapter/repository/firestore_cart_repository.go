package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"slem/internal/domain/entity"
	"slem/internal/domain/repository"
	"slem/pkg/errors"
)

type firestoreCartRepository struct {
	client *firestore.Client
}

func NewFirestoreCartRepository(client *firestore.Client) repository.CartRepository {
	return &firestoreCartRepository{
		client: client,
	}
}

func (r *firestoreCartRepository) Get(ctx context.Context, buyerID string) (*entity.Cart, error) {
	doc, err := r.client.Collection("carts").Doc(buyerID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return &entity.Cart{BuyerID: buyerID, Items: []entity.CartItem{}}, nil
		}
		return nil, errors.Internal("Failed to get cart", err)
	}

	var cart entity.Cart
	if err := doc.DataTo(&cart); err != nil {
		return nil, errors.Internal("Failed to parse cart data", err)
	}
	return &cart, nil
}

func (r *firestoreCartRepository) Mutate(ctx context.Context, buyerID string, fn func(cart *entity.Cart) error) (*entity.Cart, error) {
	ref := r.client.Collection("carts").Doc(buyerID)
	var result *entity.Cart

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now()
		cart := &entity.Cart{BuyerID: buyerID, Items: []entity.CartItem{}, CreatedAt: now}

		doc, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		if err == nil {
			if err := doc.DataTo(cart); err != nil {
				return err
			}
		}

		if err := fn(cart); err != nil {
			return err
		}
		cart.UpdatedAt = now
		result = cart
		return tx.Set(ref, cart)
	})
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.Internal("Failed to update cart", err)
	}

	return result, nil
}
