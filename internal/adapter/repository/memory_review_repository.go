package repository

import (
	"context"
	"sort"
	"time"

	"slem/internal/domain/entity"
	"slem/internal/domain/repository"
	"slem/pkg/errors"
)

type memoryReviewRepository struct {
	store *MemoryStore
}

func NewMemoryReviewRepository(store *MemoryStore) repository.ReviewRepository {
	return &memoryReviewRepository{store: store}
}

func (r *memoryReviewRepository) Submit(ctx context.Context, review *entity.SellerReview, apply func(profile *entity.SellerProfile)) (*entity.SellerProfile, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.reviews[review.OrderID]; exists {
		return nil, errors.Conflict("You have already reviewed this order")
	}

	now := time.Now()
	var profile *entity.SellerProfile
	if existing, ok := r.store.profiles[review.SellerID]; ok {
		profile = cloneProfile(existing)
	} else {
		profile = newDefaultProfile(review.SellerID, now)
	}
	apply(profile)
	profile.UpdatedAt = now

	review.ID = review.OrderID
	review.CreatedAt = now
	r.store.reviews[review.OrderID] = cloneReview(review)
	r.store.profiles[review.SellerID] = cloneProfile(profile)
	return profile, nil
}

func (r *memoryReviewRepository) GetByOrderID(ctx context.Context, orderID string) (*entity.SellerReview, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rv, ok := r.store.reviews[orderID]
	if !ok {
		return nil, errors.NotFound("Review", nil)
	}
	return cloneReview(rv), nil
}

func (r *memoryReviewRepository) ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]*entity.SellerReview, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var reviews []*entity.SellerReview
	for _, rv := range r.store.reviews {
		if rv.SellerID == sellerID {
			reviews = append(reviews, cloneReview(rv))
		}
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].CreatedAt.After(reviews[j].CreatedAt) })

	return paginate(reviews, limit, offset), int64(len(reviews)), nil
}

// newDefaultProfile is used when a review lands for a seller who never set up a storefront.
func newDefaultProfile(userID string, now time.Time) *entity.SellerProfile {
	return &entity.SellerProfile{
		UserID:     userID,
		TrustScore: entity.DefaultTrustScore,
		Followers:  []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
