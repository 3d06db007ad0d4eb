package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"slem/internal/domain/entity"
	"slem/internal/domain/repository"
	"slem/internal/domain/service"
	"slem/pkg/errors"
)

type UserUseCase struct {
	userRepo repository.UserRepository
}

func NewUserUseCase(userRepo repository.UserRepository) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
	}
}

type UpdateProfileInput struct {
	FullName    *string
	PhoneNumber *string
	Location    *entity.Location
}

type AddressInput struct {
	Label     string
	Details   string
	IsDefault bool
}

func (uc *UserUseCase) GetUserByID(ctx context.Context, userID string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = *input.PhoneNumber
	}
	if input.Location != nil {
		user.Location = *input.Location
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *UserUseCase) AddAddress(ctx context.Context, userID string, input AddressInput) (*entity.User, error) {
	if !service.IsDeliverableAddress(input.Details) {
		return nil, errors.Validation("Address must include a valid district or city in Sierra Leone")
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	addr := entity.DeliveryAddress{
		ID:      uuid.New().String(),
		Label:   input.Label,
		Details: input.Details,
	}
	user.DeliveryAddresses = append(user.DeliveryAddresses, addr)

	preferred := ""
	if input.IsDefault {
		preferred = addr.ID
	}
	service.NormalizeDefault(user.DeliveryAddresses, preferred)

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *UserUseCase) UpdateAddress(ctx context.Context, userID, addressID string, input AddressInput) (*entity.User, error) {
	if input.Details != "" && !service.IsDeliverableAddress(input.Details) {
		return nil, errors.Validation("Address must include a valid district or city in Sierra Leone")
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := addressIndex(user, addressID)
	if idx < 0 {
		return nil, errors.NotFound("Address", nil)
	}

	if input.Label != "" {
		user.DeliveryAddresses[idx].Label = input.Label
	}
	if input.Details != "" {
		user.DeliveryAddresses[idx].Details = input.Details
	}

	preferred := ""
	if input.IsDefault {
		preferred = addressID
	}
	service.NormalizeDefault(user.DeliveryAddresses, preferred)

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *UserUseCase) DeleteAddress(ctx context.Context, userID, addressID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := addressIndex(user, addressID)
	if idx < 0 {
		return nil, errors.NotFound("Address", nil)
	}

	user.DeliveryAddresses = append(user.DeliveryAddresses[:idx], user.DeliveryAddresses[idx+1:]...)
	service.NormalizeDefault(user.DeliveryAddresses, "")

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *UserUseCase) SetDefaultAddress(ctx context.Context, userID, addressID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if addressIndex(user, addressID) < 0 {
		return nil, errors.NotFound("Address", nil)
	}
	service.NormalizeDefault(user.DeliveryAddresses, addressID)

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *UserUseCase) ListUsers(ctx context.Context, role string, page, limit int) ([]*entity.User, int64, error) {
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	return uc.userRepo.List(ctx, role, limit, offset)
}

func (uc *UserUseCase) SetSellerVerification(ctx context.Context, userID string, verified bool) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if verified && user.Role != entity.RoleSeller {
		return nil, errors.Validation("Only sellers can be verified")
	}

	user.IsVerifiedSeller = verified
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *UserUseCase) DeleteUser(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return errors.BadRequest("You cannot delete your own account", nil)
	}
	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}
	return uc.userRepo.Delete(ctx, userID)
}

func addressIndex(user *entity.User, addressID string) int {
	for i, a := range user.DeliveryAddresses {
		if a.ID == addressID {
			return i
		}
	}
	return -1
}
