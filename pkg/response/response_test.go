package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "slem/pkg/errors"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorRendersAppErrorWithDetails(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, Error(c, apperrors.InsufficientStock("p1", 2)))

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decode(t, rec)
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, apperrors.CodeInsufficientStock, body.Error.Code)
	details, ok := body.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), details["available"])
}

func TestErrorHidesInternalMessages(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, Error(c, apperrors.Internal("firestore: deadline exceeded on orders/123", nil)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "An unexpected error occurred", body.Error.Message)
}

func TestErrorUnknownErrorIsInternal(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, Error(c, fmt.Errorf("boom")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperrors.CodeInternal, decode(t, rec).Error.Code)
}

func TestHTTPErrorHandlerUsesEnvelope(t *testing.T) {
	c, rec := newContext()

	HTTPErrorHandler(echo.NewHTTPError(http.StatusNotFound, "Not Found"), c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, apperrors.CodeNotFound, body.Error.Code)
	assert.Equal(t, "Not Found", body.Error.Message)
}

func TestPaginatedComputesTotalPages(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, Paginated(c, []string{"a", "b"}, 21, 1, 10))

	var body struct {
		Data PaginatedResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Data.TotalPages)
	assert.Equal(t, int64(21), body.Data.Total)
}
