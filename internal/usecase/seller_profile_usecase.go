package usecase

import (
	"context"
	"strings"

	"slem/internal/domain/entity"
	"slem/internal/domain/repository"
	"slem/pkg/errors"
	"slem/pkg/logger"
)

type SellerProfileUseCase struct {
	profileRepo repository.SellerProfileRepository
	userRepo    repository.UserRepository
}

func NewSellerProfileUseCase(profileRepo repository.SellerProfileRepository, userRepo repository.UserRepository) *SellerProfileUseCase {
	return &SellerProfileUseCase{
		profileRepo: profileRepo,
		userRepo:    userRepo,
	}
}

type SellerProfileInput struct {
	StoreName   *string
	Description *string
	BannerImage *string
}

type FollowResult struct {
	Following bool `json:"following"`
	Followers int  `json:"followers"`
}

// CreateProfile opens a storefront and promotes a buyer to seller.
func (uc *SellerProfileUseCase) CreateProfile(ctx context.Context, userID string, input SellerProfileInput) (*entity.SellerProfile, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &entity.SellerProfile{
		UserID:     userID,
		StoreName:  user.FullName + "'s Store",
		TrustScore: entity.DefaultTrustScore,
		Followers:  []string{},
	}
	applyProfileInput(profile, input)

	if err := uc.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	if user.Role == entity.RoleBuyer {
		user.Role = entity.RoleSeller
		if err := uc.userRepo.Update(ctx, user); err != nil {
			logger.Error("Failed to promote user %s to seller: %v", userID, err)
		}
	}
	return profile, nil
}

func (uc *SellerProfileUseCase) UpdateProfile(ctx context.Context, userID string, input SellerProfileInput) (*entity.SellerProfile, error) {
	if input.StoreName != nil && strings.TrimSpace(*input.StoreName) == "" {
		return nil, errors.Validation("Store name cannot be empty")
	}
	return uc.profileRepo.Mutate(ctx, userID, func(profile *entity.SellerProfile) error {
		applyProfileInput(profile, input)
		return nil
	})
}

func (uc *SellerProfileUseCase) GetProfile(ctx context.Context, userID string) (*entity.SellerProfile, error) {
	return uc.profileRepo.GetByUserID(ctx, userID)
}

func (uc *SellerProfileUseCase) ToggleFollow(ctx context.Context, followerID, sellerID string) (*FollowResult, error) {
	if followerID == sellerID {
		return nil, errors.BadRequest("You cannot follow yourself", nil)
	}

	var following bool
	profile, err := uc.profileRepo.Mutate(ctx, sellerID, func(profile *entity.SellerProfile) error {
		for i, id := range profile.Followers {
			if id == followerID {
				profile.Followers = append(profile.Followers[:i], profile.Followers[i+1:]...)
				following = false
				return nil
			}
		}
		profile.Followers = append(profile.Followers, followerID)
		following = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &FollowResult{Following: following, Followers: len(profile.Followers)}, nil
}

func applyProfileInput(profile *entity.SellerProfile, input SellerProfileInput) {
	if input.StoreName != nil && strings.TrimSpace(*input.StoreName) != "" {
		profile.StoreName = strings.TrimSpace(*input.StoreName)
	}
	if input.Description != nil {
		profile.Description = *input.Description
	}
	if input.BannerImage != nil {
		profile.BannerImage = *input.BannerImage
	}
}
