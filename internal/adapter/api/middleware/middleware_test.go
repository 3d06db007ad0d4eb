package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slem/internal/adapter/repository"
	"slem/internal/domain/entity"
	domainrepo "slem/internal/domain/repository"
	"slem/internal/infrastructure/firebase"
	"slem/internal/infrastructure/jwt"
	"slem/internal/infrastructure/ratelimit"
	"slem/internal/usecase"
	"slem/pkg/errors"
)

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

func whoAmI(c echo.Context) error {
	return c.String(http.StatusOK, fmt.Sprintf("%v/%v", c.Get("uid"), c.Get("role")))
}

func do(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Error.Code
}

func newAuthFixture(t *testing.T) (*echo.Echo, *jwt.TokenService, domainrepo.UserRepository) {
	t.Helper()
	users := repository.NewMemoryUserRepository(repository.NewMemoryStore())
	for id, role := range map[string]string{"buyer": entity.RoleBuyer, "root": entity.RoleAdmin} {
		require.NoError(t, users.Create(context.Background(), &entity.User{ID: id, Email: id + "@example.com", Role: role}))
	}

	tokens := jwt.NewTokenService("test-secret", time.Hour)
	auth := NewAuthMiddleware(NewJWTResolver(tokens, users))

	e := echo.New()
	e.GET("/me", whoAmI, auth.Authenticate)
	e.GET("/admin", whoAmI, auth.Authenticate, RequireRoles(entity.RoleAdmin))
	e.GET("/open", whoAmI, RequireRoles(entity.RoleAdmin))
	return e, tokens, users
}

func TestAuthenticate(t *testing.T) {
	e, tokens, users := newAuthFixture(t)

	token, err := tokens.Issue("buyer", entity.RoleBuyer)
	require.NoError(t, err)

	rec := do(e, http.MethodGet, "/me", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "buyer/buyer", rec.Body.String())

	rec = do(e, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, errors.CodeUnauthorized, errorCode(t, rec))

	rec = do(e, http.MethodGet, "/me", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Token "+token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	require.NoError(t, users.Delete(context.Background(), "buyer"))
	rec = do(e, http.MethodGet, "/me", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	e, tokens, _ := newAuthFixture(t)

	buyer, err := tokens.Issue("buyer", entity.RoleBuyer)
	require.NoError(t, err)
	admin, err := tokens.Issue("root", entity.RoleAdmin)
	require.NoError(t, err)

	rec := do(e, http.MethodGet, "/admin", buyer)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, errors.CodeForbidden, errorCode(t, rec))

	rec = do(e, http.MethodGet, "/admin", admin)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/open", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleComesFromStoredUser(t *testing.T) {
	e, tokens, _ := newAuthFixture(t)

	forged, err := tokens.Issue("buyer", entity.RoleAdmin)
	require.NoError(t, err)

	rec := do(e, http.MethodGet, "/admin", forged)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewRateLimiter(map[string]ratelimit.Rule{
		ratelimit.ActionCart: {Burst: 1, Window: time.Minute},
	})

	e := echo.New()
	e.GET("/cart", whoAmI, func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if uid := c.Request().Header.Get("X-User"); uid != "" {
				c.Set("uid", uid)
			}
			return next(c)
		}
	}, RateLimit(limiter, ratelimit.ActionCart))

	get := func(uid string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.Header.Set("X-User", uid)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, get("u1").Code)

	rec := get("u1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, errors.CodeTooManyRequests, errorCode(t, rec))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, get("u2").Code)
	assert.Equal(t, http.StatusOK, get("").Code)
	assert.Equal(t, http.StatusTooManyRequests, get("").Code)
}

type fakeFirebase struct {
	identities map[string]*firebase.Identity
}

func (f *fakeFirebase) VerifyToken(ctx context.Context, token string) (string, error) {
	if _, ok := f.identities[token]; !ok {
		return "", errors.Unauthorized("bad firebase token", nil)
	}
	return token, nil
}

func (f *fakeFirebase) LookupUser(ctx context.Context, uid string) (*firebase.Identity, error) {
	return f.identities[uid], nil
}

type stubTokens struct{}

func (stubTokens) Issue(userID, role string) (string, error) { return "t", nil }

func TestFirebaseResolverProvisionsUnknownUsers(t *testing.T) {
	store := repository.NewMemoryStore()
	users := repository.NewMemoryUserRepository(store)
	auth := usecase.NewAuthUseCase(users, repository.NewMemorySellerProfileRepository(store), stubTokens{})

	client := &fakeFirebase{identities: map[string]*firebase.Identity{
		"fb-1": {UID: "fb-1", Email: "kadi@example.com", DisplayName: "Kadi"},
	}}
	m := NewAuthMiddleware(
		NewJWTResolver(jwt.NewTokenService("test-secret", time.Hour), users),
		NewFirebaseResolver(client, users, auth),
	)

	user, err := m.ResolveToken(context.Background(), "fb-1")
	require.NoError(t, err)
	assert.Equal(t, "Kadi", user.FullName)
	assert.Equal(t, entity.RoleBuyer, user.Role)

	stored, err := users.GetByID(context.Background(), "fb-1")
	require.NoError(t, err)
	assert.Equal(t, "firebase", stored.Provider)

	_, err = m.ResolveToken(context.Background(), "unknown")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))
}
