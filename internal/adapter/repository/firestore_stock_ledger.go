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

type firestoreStockLedger struct {
	client *firestore.Client
}

func NewFirestoreStockLedger(client *firestore.Client) repository.StockLedger {
	return &firestoreStockLedger{
		client: client,
	}
}

func (l *firestoreStockLedger) Reserve(ctx context.Context, sellerID string, demands []repository.StockDemand) ([]*entity.Product, error) {
	merged := repository.MergeDemands(demands)
	var snapshot []*entity.Product

	err := l.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snapshot = snapshot[:0]
		refs := make([]*firestore.DocumentRef, 0, len(merged))

		// Firestore requires all reads before the first write.
		for _, d := range merged {
			ref := l.client.Collection("products").Doc(d.ProductID)
			doc, err := tx.Get(ref)
			if err != nil {
				if status.Code(err) == codes.NotFound {
					return errors.NotFound("Product", err)
				}
				return err
			}

			var product entity.Product
			if err := doc.DataTo(&product); err != nil {
				return err
			}
			if !product.IsListed() {
				return errors.NotFound("Product", nil)
			}
			if product.SellerID != sellerID {
				return errors.SellerMismatch(d.ProductID)
			}
			if product.Stock < d.Quantity {
				return errors.InsufficientStock(d.ProductID, product.Stock)
			}

			refs = append(refs, ref)
			snapshot = append(snapshot, &product)
		}

		now := time.Now()
		for i, d := range merged {
			if err := tx.Update(refs[i], []firestore.Update{
				{Path: "stock", Value: snapshot[i].Stock - d.Quantity},
				{Path: "updatedAt", Value: now},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.Internal("Failed to reserve stock", err)
	}

	return snapshot, nil
}

func (l *firestoreStockLedger) Release(ctx context.Context, demands []repository.StockDemand) error {
	merged := repository.MergeDemands(demands)
	batch := l.client.Batch()
	now := time.Now()
	for _, d := range merged {
		batch.Update(l.client.Collection("products").Doc(d.ProductID), []firestore.Update{
			{Path: "stock", Value: firestore.Increment(d.Quantity)},
			{Path: "updatedAt", Value: now},
		})
	}

	if _, err := batch.Commit(ctx); err != nil {
		return errors.Internal("Failed to release stock", err)
	}
	return nil
}

func (l *firestoreStockLedger) SetStock(ctx context.Context, productID string, stock int) error {
	if stock < 0 {
		return errors.Validation("Stock cannot be negative")
	}

	_, err := l.client.Collection("products").Doc(productID).Update(ctx, []firestore.Update{
		{Path: "stock", Value: stock},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Product", err)
		}
		return errors.Internal("Failed to update stock", err)
	}
	return nil
}
