package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slem/internal/domain/entity"
	"slem/pkg/errors"
)

const strongPassword = "Str0ng!pass"

func TestSignUp(t *testing.T) {
	m := newMarketplace()
	uc := NewAuthUseCase(m.users, m.profiles, stubTokens{})
	ctx := context.Background()

	result, err := uc.SignUp(ctx, SignUpInput{FullName: "Aminata Kamara", Email: " Aminata@Example.com ", Password: strongPassword, Role: entity.RoleSeller})
	require.NoError(t, err)
	assert.Equal(t, "aminata@example.com", result.User.Email)
	assert.Equal(t, entity.RoleSeller, result.User.Role)
	assert.Equal(t, "token-"+result.User.ID, result.Token)
	assert.NotEqual(t, strongPassword, result.User.PasswordHash)

	profile, err := m.profiles.GetByUserID(ctx, result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aminata Kamara's Store", profile.StoreName)

	_, err = uc.SignUp(ctx, SignUpInput{FullName: "Again", Email: "aminata@example.com", Password: strongPassword})
	assert.True(t, errors.Is(err, errors.CodeConflict))

	admin, err := uc.SignUp(ctx, SignUpInput{FullName: "Sneaky", Email: "sneaky@example.com", Password: strongPassword, Role: entity.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleBuyer, admin.User.Role)
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword(strongPassword))
	for _, weak := range []string{"Sh0rt!", "alllower1!", "ALLUPPER1!", "NoDigits!!", "NoSpecial12"} {
		assert.True(t, errors.Is(ValidatePassword(weak), errors.CodeValidation), weak)
	}
}

func TestLogin(t *testing.T) {
	m := newMarketplace()
	uc := NewAuthUseCase(m.users, m.profiles, stubTokens{})
	ctx := context.Background()

	signed, err := uc.SignUp(ctx, SignUpInput{FullName: "Musa Bangura", Email: "musa@example.com", Password: strongPassword})
	require.NoError(t, err)

	result, err := uc.Login(ctx, "MUSA@example.com", strongPassword)
	require.NoError(t, err)
	assert.Equal(t, signed.User.ID, result.User.ID)

	_, err = uc.Login(ctx, "musa@example.com", "Wr0ng!pass")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))

	_, err = uc.Login(ctx, "nobody@example.com", strongPassword)
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))
}

func TestProvisionExternalUser(t *testing.T) {
	m := newMarketplace()
	uc := NewAuthUseCase(m.users, m.profiles, stubTokens{})
	ctx := context.Background()

	user, err := uc.ProvisionExternalUser(ctx, ExternalIdentity{UID: "fb-1", Email: "fatmata@example.com", Provider: "firebase"})
	require.NoError(t, err)
	assert.Equal(t, "fatmata", user.FullName)
	assert.Equal(t, entity.RoleBuyer, user.Role)

	again, err := uc.ProvisionExternalUser(ctx, ExternalIdentity{UID: "fb-1"})
	require.NoError(t, err)
	assert.Equal(t, user.Email, again.Email)
}
