package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"slem/internal/domain/entity"
	"slem/internal/domain/repository"
	"slem/pkg/errors"
)

type firestoreReviewRepository struct {
	client *firestore.Client
}

func NewFirestoreReviewRepository(client *firestore.Client) repository.ReviewRepository {
	return &firestoreReviewRepository{
		client: client,
	}
}

func (r *firestoreReviewRepository) Submit(ctx context.Context, review *entity.SellerReview, apply func(profile *entity.SellerProfile)) (*entity.SellerProfile, error) {
	reviewRef := r.client.Collection("reviews").Doc(review.OrderID)
	profileRef := r.client.Collection("sellerProfiles").Doc(review.SellerID)
	var result *entity.SellerProfile

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(reviewRef); err == nil {
			return errors.Conflict("You have already reviewed this order")
		} else if status.Code(err) != codes.NotFound {
			return err
		}

		now := time.Now()
		profile := newDefaultProfile(review.SellerID, now)
		doc, err := tx.Get(profileRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		if err == nil {
			if err := doc.DataTo(profile); err != nil {
				return err
			}
		}

		apply(profile)
		profile.UpdatedAt = now

		review.ID = review.OrderID
		review.CreatedAt = now
		if err := tx.Create(reviewRef, review); err != nil {
			return err
		}
		result = profile
		return tx.Set(profileRef, profile)
	})
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		if status.Code(err) == codes.AlreadyExists {
			return nil, errors.Conflict("You have already reviewed this order")
		}
		return nil, errors.Internal("Failed to submit review", err)
	}

	return result, nil
}

func (r *firestoreReviewRepository) GetByOrderID(ctx context.Context, orderID string) (*entity.SellerReview, error) {
	doc, err := r.client.Collection("reviews").Doc(orderID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Review", err)
		}
		return nil, errors.Internal("Failed to get review", err)
	}

	var review entity.SellerReview
	if err := doc.DataTo(&review); err != nil {
		return nil, errors.Internal("Failed to parse review data", err)
	}
	return &review, nil
}

func (r *firestoreReviewRepository) ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]*entity.SellerReview, int64, error) {
	query := r.client.Collection("reviews").Where("sellerId", "==", sellerID)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count reviews", err)
	}
	total := int64(len(countDocs))

	query = query.OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var reviews []*entity.SellerReview
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate reviews", err)
		}

		var review entity.SellerReview
		if err := doc.DataTo(&review); err != nil {
			return nil, 0, errors.Internal("Failed to parse review data", err)
		}
		reviews = append(reviews, &review)
	}

	return reviews, total, nil
}
