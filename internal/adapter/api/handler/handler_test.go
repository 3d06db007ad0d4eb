package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slem/internal/adapter/api"
	"slem/internal/adapter/repository"
	"slem/internal/domain/entity"
	"slem/internal/infrastructure/cache"
	"slem/internal/infrastructure/messaging"
	"slem/internal/infrastructure/websocket"
	"slem/internal/usecase"
	"slem/pkg/response"
)

type memoryImages struct {
	urls []string
}

func (m *memoryImages) UploadImage(ctx context.Context, file io.Reader, contentType, folder string) (string, error) {
	url := "https://img.example.com/" + folder + "/x.png"
	m.urls = append(m.urls, url)
	return url, nil
}

func (m *memoryImages) DeleteFile(ctx context.Context, fileURL string) error { return nil }

type fixture struct {
	e       *echo.Echo
	images  *memoryImages
	product *ProductHandler
	order   *OrderHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	users := repository.NewMemoryUserRepository(store)
	products := repository.NewMemoryProductRepository(store)
	ledger := repository.NewMemoryStockLedger(store)
	images := &memoryImages{}

	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &entity.User{ID: "seller", Role: entity.RoleSeller, IsVerifiedSeller: true}))
	require.NoError(t, users.Create(ctx, &entity.User{ID: "buyer", Role: entity.RoleBuyer}))
	require.NoError(t, products.Create(ctx, &entity.Product{ID: "p1", SellerID: "seller", Title: "Kettle", Price: 90, Stock: 3, Status: entity.ProductStatusActive}))

	e := echo.New()
	e.Validator = api.NewValidator()

	return &fixture{
		e:       e,
		images:  images,
		product: NewProductHandler(usecase.NewProductUseCase(products, ledger, users, cache.NewMemoryCache(time.Minute), images)),
		order: NewOrderHandler(usecase.NewOrderUseCase(
			repository.NewMemoryOrderRepository(store), products, ledger, users,
			websocket.NewManager(), messaging.NewLogNotifier(), 20,
		)),
	}
}

func (f *fixture) context(req *http.Request, uid, role string) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	if uid != "" {
		c.Set("uid", uid)
		c.Set("role", role)
	}
	return c, rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestListProductsRejectsBadQuery(t *testing.T) {
	f := newFixture(t)

	for _, target := range []string{"/v1/products?sort=cheapest", "/v1/products?priceMin=50&priceMax=10", "/v1/products?priceMin=abc"} {
		c, rec := f.context(httptest.NewRequest(http.MethodGet, target, nil), "", "")
		require.NoError(t, f.product.ListProducts(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}

	c, rec := f.context(httptest.NewRequest(http.MethodGet, "/v1/products?sort=priceLow&limit=5", nil), "", "")
	require.NoError(t, f.product.ListProducts(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pageSize":5`)
}

func TestPlaceOrderValidatesDeliveryAddress(t *testing.T) {
	f := newFixture(t)

	body := `{"sellerId":"seller","items":[{"productId":"p1","quantity":1}],"deliveryAddress":"221B Baker Street, London"}`
	c, rec := f.context(jsonRequest(http.MethodPost, "/v1/orders", body), "buyer", entity.RoleBuyer)
	require.NoError(t, f.order.PlaceOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeResponse(t, rec).Error.Message, "Sierra Leone")

	body = `{"sellerId":"seller","items":[{"productId":"p1","quantity":1}],"deliveryAddress":"7 Wilkinson Road, Freetown","paymentMethod":"CARD"}`
	c, rec = f.context(jsonRequest(http.MethodPost, "/v1/orders", body), "buyer", entity.RoleBuyer)
	require.NoError(t, f.order.PlaceOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body = `{"sellerId":"seller","items":[{"productId":"p1","quantity":1}],"deliveryAddress":"7 Wilkinson Road, Freetown","paymentMethod":"MOBILE_MONEY"}`
	c, rec = f.context(jsonRequest(http.MethodPost, "/v1/orders", body), "buyer", entity.RoleBuyer)
	require.NoError(t, f.order.PlaceOrder(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func imageRequest(t *testing.T, contentType string, size int) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="photo"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{0x89}, size))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/my-products/p1/images", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestUploadImage(t *testing.T) {
	f := newFixture(t)

	upload := func(req *http.Request) *httptest.ResponseRecorder {
		c, rec := f.context(req, "seller", entity.RoleSeller)
		c.SetParamNames("id")
		c.SetParamValues("p1")
		require.NoError(t, f.product.UploadImage(c))
		return rec
	}

	rec := upload(httptest.NewRequest(http.MethodPost, "/v1/my-products/p1/images", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload(imageRequest(t, "application/pdf", 16))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload(imageRequest(t, "image/png", maxImageSize+1))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload(imageRequest(t, "image/png", 16))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, f.images.urls, 1)
	assert.Contains(t, rec.Body.String(), f.images.urls[0])
}
