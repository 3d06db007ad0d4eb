package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesWrappedAppError(t *testing.T) {
	err := fmt.Errorf("placing order: %w", Conflict("Product already in cart"))

	assert.True(t, Is(err, CodeConflict))
	assert.False(t, Is(err, CodeNotFound))
	assert.False(t, Is(fmt.Errorf("plain"), CodeConflict))
}

func TestInsufficientStockCarriesAvailable(t *testing.T) {
	err := InsufficientStock("p1", 2)

	assert.Equal(t, http.StatusConflict, err.Status)
	assert.Equal(t, "Only 2 item(s) in stock", err.Message)
	assert.Equal(t, 2, err.Details["available"])
	assert.Equal(t, "p1", err.Details["productId"])
}

func TestAsUnwrapsCause(t *testing.T) {
	cause := fmt.Errorf("firestore unavailable")
	err := fmt.Errorf("outer: %w", Internal("Failed to load order", cause))

	appErr, ok := As(err)
	if assert.True(t, ok) {
		assert.Equal(t, CodeInternal, appErr.Code)
		assert.ErrorIs(t, appErr, cause)
	}
}

func TestWithDetails(t *testing.T) {
	err := Validation("Only 1 item(s) in stock").WithDetails(map[string]interface{}{"available": 1})

	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, 1, err.Details["available"])
}
