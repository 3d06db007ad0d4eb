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

type firestoreSellerProfileRepository struct {
	client *firestore.Client
}

func NewFirestoreSellerProfileRepository(client *firestore.Client) repository.SellerProfileRepository {
	return &firestoreSellerProfileRepository{
		client: client,
	}
}

func (r *firestoreSellerProfileRepository) Create(ctx context.Context, profile *entity.SellerProfile) error {
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err := r.client.Collection("sellerProfiles").Doc(profile.UserID).Create(ctx, profile)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.Conflict("Seller profile already exists")
		}
		return errors.Internal("Failed to create seller profile", err)
	}
	return nil
}

func (r *firestoreSellerProfileRepository) GetByUserID(ctx context.Context, userID string) (*entity.SellerProfile, error) {
	doc, err := r.client.Collection("sellerProfiles").Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Seller profile", err)
		}
		return nil, errors.Internal("Failed to get seller profile", err)
	}

	var profile entity.SellerProfile
	if err := doc.DataTo(&profile); err != nil {
		return nil, errors.Internal("Failed to parse seller profile", err)
	}
	return &profile, nil
}

func (r *firestoreSellerProfileRepository) Mutate(ctx context.Context, userID string, fn func(profile *entity.SellerProfile) error) (*entity.SellerProfile, error) {
	ref := r.client.Collection("sellerProfiles").Doc(userID)
	var result *entity.SellerProfile

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Seller profile", err)
			}
			return err
		}

		var profile entity.SellerProfile
		if err := doc.DataTo(&profile); err != nil {
			return err
		}
		if err := fn(&profile); err != nil {
			return err
		}
		profile.UpdatedAt = time.Now()
		result = &profile
		return tx.Set(ref, &profile)
	})
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.Internal("Failed to update seller profile", err)
	}
	return result, nil
}
