package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"slem/internal/domain/entity"
	"slem/internal/domain/repository"
	"slem/pkg/errors"
	"slem/pkg/logger"
)

const passwordSpecials = "!@#$%^&*"

type AuthUseCase struct {
	userRepo    repository.UserRepository
	profileRepo repository.SellerProfileRepository
	tokens      TokenIssuer
}

func NewAuthUseCase(userRepo repository.UserRepository, profileRepo repository.SellerProfileRepository, tokens TokenIssuer) *AuthUseCase {
	return &AuthUseCase{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		tokens:      tokens,
	}
}

type SignUpInput struct {
	FullName    string
	Email       string
	PhoneNumber string
	Password    string
	Role        string
}

type AuthResult struct {
	User  *entity.User `json:"user"`
	Token string       `json:"token"`
}

// ExternalIdentity is a user already authenticated by a federated provider.
type ExternalIdentity struct {
	UID         string
	Email       string
	DisplayName string
	PhoneNumber string
	PhotoURL    string
	Provider    string
}

func (uc *AuthUseCase) SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error) {
	if err := ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)
	if _, err := uc.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, errors.Conflict("User already exists")
	} else if !errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	// Self sign-up can never grant admin.
	role := input.Role
	if role != entity.RoleSeller {
		role = entity.RoleBuyer
	}

	user := &entity.User{
		ID:                uuid.New().String(),
		FullName:          strings.TrimSpace(input.FullName),
		Email:             email,
		PhoneNumber:       input.PhoneNumber,
		PasswordHash:      string(hash),
		Role:              role,
		Provider:          "password",
		DeliveryAddresses: []entity.DeliveryAddress{},
		LastLogin:         time.Now(),
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if role == entity.RoleSeller {
		profile := &entity.SellerProfile{
			UserID:     user.ID,
			StoreName:  fmt.Sprintf("%s's Store", user.FullName),
			TrustScore: entity.DefaultTrustScore,
			Followers:  []string{},
		}
		if err := uc.profileRepo.Create(ctx, profile); err != nil && !errors.Is(err, errors.CodeConflict) {
			logger.Error("Failed to create seller profile for %s: %v", user.ID, err)
		}
	}

	return uc.issue(user)
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, errors.Unauthorized("Invalid email or password", nil)
		}
		return nil, err
	}

	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, errors.Unauthorized("Invalid email or password", nil)
	}

	user.LastLogin = time.Now()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		logger.Warn("Failed to record last login for %s: %v", user.ID, err)
	}

	return uc.issue(user)
}

// ProvisionExternalUser returns the local account for a federated identity,
// creating a buyer account on first sight.
func (uc *AuthUseCase) ProvisionExternalUser(ctx context.Context, identity ExternalIdentity) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, identity.UID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	fullName := identity.DisplayName
	if fullName == "" {
		fullName = strings.Split(identity.Email, "@")[0]
	}

	user = &entity.User{
		ID:                identity.UID,
		FullName:          fullName,
		Email:             normalizeEmail(identity.Email),
		PhoneNumber:       identity.PhoneNumber,
		ProfilePhotoURL:   identity.PhotoURL,
		Role:              entity.RoleBuyer,
		Provider:          identity.Provider,
		DeliveryAddresses: []entity.DeliveryAddress{},
		LastLogin:         time.Now(),
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("Provisioned %s user %s", identity.Provider, user.ID)
	return user, nil
}

func (uc *AuthUseCase) issue(user *entity.User) (*AuthResult, error) {
	token, err := uc.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, errors.Internal("Failed to generate authentication token", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// ValidatePassword enforces length and character-class rules.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.Validation("Password must be at least 8 characters")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}

	if !upper || !lower || !digit || !special {
		return errors.Validation("Password must contain uppercase, lowercase, number and special character (!@#$%^&*)")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
