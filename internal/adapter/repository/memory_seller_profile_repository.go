package repository

import (
	"context"
	"time"

	"slem/internal/domain/entity"
	"slem/internal/domain/repository"
	"slem/pkg/errors"
)

type memorySellerProfileRepository struct {
	store *MemoryStore
}

func NewMemorySellerProfileRepository(store *MemoryStore) repository.SellerProfileRepository {
	return &memorySellerProfileRepository{store: store}
}

func (r *memorySellerProfileRepository) Create(ctx context.Context, profile *entity.SellerProfile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.profiles[profile.UserID]; exists {
		return errors.Conflict("Seller profile already exists")
	}
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	r.store.profiles[profile.UserID] = cloneProfile(profile)
	return nil
}

func (r *memorySellerProfileRepository) GetByUserID(ctx context.Context, userID string) (*entity.SellerProfile, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.profiles[userID]
	if !ok {
		return nil, errors.NotFound("Seller profile", nil)
	}
	return cloneProfile(p), nil
}

func (r *memorySellerProfileRepository) Mutate(ctx context.Context, userID string, fn func(profile *entity.SellerProfile) error) (*entity.SellerProfile, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.profiles[userID]
	if !ok {
		return nil, errors.NotFound("Seller profile", nil)
	}

	profile := cloneProfile(current)
	if err := fn(profile); err != nil {
		return nil, err
	}
	profile.UpdatedAt = time.Now()
	r.store.profiles[userID] = cloneProfile(profile)
	return profile, nil
}
