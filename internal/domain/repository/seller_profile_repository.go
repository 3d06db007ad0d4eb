package repository

import (
	"context"

	"slem/internal/domain/entity"
)

type SellerProfileRepository interface {
	// Create fails with a conflict when the user already has a profile.
	Create(ctx context.Context, profile *entity.SellerProfile) error
	GetByUserID(ctx context.Context, userID string) (*entity.SellerProfile, error)
	Mutate(ctx context.Context, userID string, fn func(profile *entity.SellerProfile) error) (*entity.SellerProfile, error)
}
