package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"slem/internal/domain/entity"
	"slem/internal/domain/repository"
	"slem/internal/infrastructure/firebase"
	"slem/internal/usecase"
	"slem/pkg/errors"
	"slem/pkg/response"
)

// IdentityResolver maps a bearer token to a local user.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*entity.User, error)
}

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

type jwtResolver struct {
	verifier TokenVerifier
	userRepo repository.UserRepository
}

func NewJWTResolver(verifier TokenVerifier, userRepo repository.UserRepository) IdentityResolver {
	return &jwtResolver{verifier: verifier, userRepo: userRepo}
}

func (r *jwtResolver) Resolve(ctx context.Context, token string) (*entity.User, error) {
	uid, err := r.verifier.VerifyToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return r.userRepo.GetByID(ctx, uid)
}

type FirebaseIdentityClient interface {
	TokenVerifier
	LookupUser(ctx context.Context, uid string) (*firebase.Identity, error)
}

type UserProvisioner interface {
	ProvisionExternalUser(ctx context.Context, identity usecase.ExternalIdentity) (*entity.User, error)
}

type firebaseResolver struct {
	client      FirebaseIdentityClient
	userRepo    repository.UserRepository
	provisioner UserProvisioner
}

// NewFirebaseResolver accepts Firebase ID tokens and provisions unknown users as buyers.
func NewFirebaseResolver(client FirebaseIdentityClient, userRepo repository.UserRepository, provisioner UserProvisioner) IdentityResolver {
	return &firebaseResolver{client: client, userRepo: userRepo, provisioner: provisioner}
}

func (r *firebaseResolver) Resolve(ctx context.Context, token string) (*entity.User, error) {
	uid, err := r.client.VerifyToken(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := r.userRepo.GetByID(ctx, uid)
	if err == nil || !errors.Is(err, errors.CodeNotFound) {
		return user, err
	}

	identity, err := r.client.LookupUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	return r.provisioner.ProvisionExternalUser(ctx, usecase.ExternalIdentity{
		UID:         identity.UID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		PhoneNumber: identity.PhoneNumber,
		PhotoURL:    identity.PhotoURL,
		Provider:    "firebase",
	})
}

type AuthMiddleware struct {
	resolvers []IdentityResolver
}

// NewAuthMiddleware tries resolvers in order; the first success wins.
func NewAuthMiddleware(resolvers ...IdentityResolver) *AuthMiddleware {
	return &AuthMiddleware{
		resolvers: resolvers,
	}
}

func (m *AuthMiddleware) ResolveToken(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, errors.Unauthorized("Authorization header is required", nil)
	}

	var lastErr error
	for _, r := range m.resolvers {
		user, err := r.Resolve(ctx, token)
		if err == nil {
			return user, nil
		}
		lastErr = err
	}
	return nil, errors.Unauthorized("Invalid or expired token", lastErr)
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := BearerToken(c)
		if err != nil {
			return response.Error(c, err)
		}

		user, err := m.ResolveToken(c.Request().Context(), token)
		if err != nil {
			return response.Error(c, err)
		}

		SetUser(c, user)
		return next(c)
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.Unauthorized("Authorization header is required", nil)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.Unauthorized("Invalid authorization format", nil)
	}
	return parts[1], nil
}

func SetUser(c echo.Context, user *entity.User) {
	c.Set("uid", user.ID)
	c.Set("role", user.Role)
	c.Set("user", user)
}
