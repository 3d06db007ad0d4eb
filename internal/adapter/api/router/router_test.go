package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slem/internal/adapter/api"
	"slem/internal/adapter/api/handler"
	"slem/internal/adapter/api/middleware"
	"slem/internal/adapter/api/router"
	"slem/internal/adapter/repository"
	domainrepo "slem/internal/domain/repository"
	"slem/internal/infrastructure/cache"
	"slem/internal/infrastructure/jwt"
	"slem/internal/infrastructure/messaging"
	"slem/internal/infrastructure/ratelimit"
	"slem/internal/infrastructure/websocket"
	"slem/internal/usecase"
	"slem/pkg/response"
)

const deliveryFee = 25

type testServer struct {
	e         *echo.Echo
	users     domainrepo.UserRepository
	wsManager *websocket.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := repository.NewMemoryStore()
	users := repository.NewMemoryUserRepository(store)
	products := repository.NewMemoryProductRepository(store)
	ledger := repository.NewMemoryStockLedger(store)
	orders := repository.NewMemoryOrderRepository(store)
	chats := repository.NewMemoryChatRepository(store)
	profiles := repository.NewMemorySellerProfileRepository(store)

	tokens := jwt.NewTokenService("test-secret", time.Hour)
	limiter := ratelimit.NewRateLimiter(map[string]ratelimit.Rule{
		ratelimit.ActionCart: {Burst: 100, Window: time.Minute},
		ratelimit.ActionAuth: {Burst: 100, Window: time.Minute},
	})
	wsManager := websocket.NewManager()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	wsManager.Start(ctx)
	notifier := messaging.NewLogNotifier()

	authUseCase := usecase.NewAuthUseCase(users, profiles, tokens)
	chatUseCase := usecase.NewChatUseCase(chats, users, products, wsManager, notifier, limiter)
	authMiddleware := middleware.NewAuthMiddleware(middleware.NewJWTResolver(tokens, users))

	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = response.HTTPErrorHandler

	router.Setup(e, router.Handlers{
		Auth:      handler.NewAuthHandler(authUseCase),
		User:      handler.NewUserHandler(usecase.NewUserUseCase(users)),
		Product:   handler.NewProductHandler(usecase.NewProductUseCase(products, ledger, users, cache.NewMemoryCache(time.Minute), nil)),
		Cart:      handler.NewCartHandler(usecase.NewCartUseCase(repository.NewMemoryCartRepository(store), products)),
		Order:     handler.NewOrderHandler(usecase.NewOrderUseCase(orders, products, ledger, users, wsManager, notifier, deliveryFee)),
		Chat:      handler.NewChatHandler(chatUseCase),
		Review:    handler.NewReviewHandler(usecase.NewReviewUseCase(repository.NewMemoryReviewRepository(store), orders)),
		Seller:    handler.NewSellerProfileHandler(usecase.NewSellerProfileUseCase(profiles, users)),
		WebSocket: handler.NewWebSocketHandler(wsManager, authMiddleware, handler.NewChatGateway(chatUseCase)),
		Health:    handler.NewHealthHandler(wsManager),
	}, authMiddleware, limiter)

	return &testServer{e: e, users: users, wsManager: wsManager}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string                 `json:"code"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func (s *testServer) call(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

type session struct {
	ID    string
	Token string
}

func (s *testServer) signUp(t *testing.T, name, email, role string) session {
	t.Helper()
	code, env := s.call(t, http.MethodPost, "/v1/auth/signup", "", map[string]string{
		"fullName":    name,
		"email":       email,
		"phoneNumber": "+23276123456",
		"password":    "Str0ng!pass",
		"role":        role,
	})
	require.Equal(t, http.StatusCreated, code)

	var result struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decode(t, env, &result)
	return session{ID: result.User.ID, Token: result.Token}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Server is running")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/v1/cart", "/v1/orders", "/v1/users/me", "/v1/chats"} {
		code, env := s.call(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
		assert.False(t, env.Success)
	}

	code, _ := s.call(t, http.MethodGet, "/v1/products", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env := s.call(t, http.MethodGet, "/v1/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestSignUpAndLogin(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "Abu Conteh", "abu@example.com", "")

	code, env := s.call(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "abu@example.com", "password": "Str0ng!pass",
	})
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, env = s.call(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "abu@example.com", "password": "Wr0ng!pass",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	code, env = s.call(t, http.MethodPost, "/v1/auth/signup", "", map[string]string{"email": "bad"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestOrderFlow(t *testing.T) {
	s := newTestServer(t)
	seller := s.signUp(t, "Mariama Sesay", "mariama@example.com", "seller")
	buyer := s.signUp(t, "Ibrahim Koroma", "ibrahim@example.com", "")

	s.verifySeller(t, seller.ID)

	code, env := s.call(t, http.MethodPost, "/v1/my-products", seller.Token, map[string]interface{}{
		"title": "Solar lantern", "description": "Rechargeable", "price": 150,
		"stock": 2, "category": "home", "condition": "new",
	})
	require.Equal(t, http.StatusCreated, code)
	var product struct {
		ID string `json:"id"`
	}
	decode(t, env, &product)

	code, _ = s.call(t, http.MethodPost, "/v1/my-products", buyer.Token, map[string]interface{}{
		"title": "Nope", "description": "x", "category": "home", "condition": "new",
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.call(t, http.MethodGet, "/v1/products?search=solar", "", nil)
	require.Equal(t, http.StatusOK, code)
	var page response.PaginatedResponse
	decode(t, env, &page)
	assert.Equal(t, int64(1), page.Total)

	order := map[string]interface{}{
		"sellerId":        seller.ID,
		"items":           []map[string]interface{}{{"productId": product.ID, "quantity": 3}},
		"deliveryAddress": "12 Siaka Stevens Street, Freetown",
	}
	code, env = s.call(t, http.MethodPost, "/v1/orders", buyer.Token, order)
	require.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INSUFFICIENT_STOCK", env.Error.Code)
	assert.Equal(t, float64(2), env.Error.Details["available"])

	order["items"] = []map[string]interface{}{{"productId": product.ID, "quantity": 2}}
	code, env = s.call(t, http.MethodPost, "/v1/orders", buyer.Token, order)
	require.Equal(t, http.StatusCreated, code)
	var placed struct {
		ID     string  `json:"id"`
		Status string  `json:"status"`
		Total  float64 `json:"total"`
	}
	decode(t, env, &placed)
	assert.Equal(t, "Pending", placed.Status)
	assert.Equal(t, float64(2*150+deliveryFee), placed.Total)

	code, _ = s.call(t, http.MethodPatch, "/v1/orders/"+placed.ID+"/status", buyer.Token, map[string]string{"status": "Shipped"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.call(t, http.MethodPatch, "/v1/orders/"+placed.ID+"/status", seller.Token, map[string]string{"status": "Processing"})
	assert.Equal(t, http.StatusOK, code)

	code, env = s.call(t, http.MethodGet, "/v1/orders/"+placed.ID+"/events", buyer.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var events []map[string]interface{}
	decode(t, env, &events)
	assert.Len(t, events, 2)

	code, _ = s.call(t, http.MethodGet, "/v1/orders/selling", buyer.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.call(t, http.MethodGet, "/v1/orders/selling", seller.Token, nil)
	require.Equal(t, http.StatusOK, code)
	decode(t, env, &page)
	assert.Equal(t, int64(1), page.Total)
}

func (s *testServer) verifySeller(t *testing.T, id string) {
	t.Helper()
	user, err := s.users.GetByID(context.Background(), id)
	require.NoError(t, err)
	user.IsVerifiedSeller = true
	require.NoError(t, s.users.Update(context.Background(), user))
}

func TestWebSocketRequiresToken(t *testing.T) {
	s := newTestServer(t)

	code, env := s.call(t, http.MethodGet, "/ws", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	code, _ = s.call(t, http.MethodGet, "/ws?token=forged", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestSellerReceivesOrderOverWebSocket(t *testing.T) {
	s := newTestServer(t)
	server := httptest.NewServer(s.e)
	defer server.Close()

	seller := s.signUp(t, "Fatu Kanu", "fatu@example.com", "seller")
	buyer := s.signUp(t, "Sorie Bah", "sorie@example.com", "")
	s.verifySeller(t, seller.ID)

	code, env := s.call(t, http.MethodPost, "/v1/my-products", seller.Token, map[string]interface{}{
		"title": "Gari 5kg", "description": "Fresh", "price": 80,
		"stock": 5, "category": "food", "condition": "new",
	})
	require.Equal(t, http.StatusCreated, code)
	var product struct {
		ID string `json:"id"`
	}
	decode(t, env, &product)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=" + seller.Token
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.wsManager.ConnectedUsers() == 1 }, time.Second, 10*time.Millisecond)

	code, _ = s.call(t, http.MethodPost, "/v1/orders", buyer.Token, map[string]interface{}{
		"sellerId":        seller.ID,
		"items":           []map[string]interface{}{{"productId": product.ID, "quantity": 1}},
		"deliveryAddress": "4 Hospital Road, Bo",
	})
	require.Equal(t, http.StatusCreated, code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame websocket.WSMessage
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, websocket.MessageTypeOrderCreated, frame.Type)
	assert.Equal(t, websocket.UserChannel(seller.ID), frame.Channel)
}
