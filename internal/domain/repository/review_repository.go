package repository

import (
	"context"

	"slem/internal/domain/entity"
)

type ReviewRepository interface {
	// Submit stores the review and applies it to the seller's profile atomically.
	// A second review for the same order yields a conflict.
	Submit(ctx context.Context, review *entity.SellerReview, apply func(profile *entity.SellerProfile)) (*entity.SellerProfile, error)
	GetByOrderID(ctx context.Context, orderID string) (*entity.SellerReview, error)
	ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]*entity.SellerReview, int64, error)
}
