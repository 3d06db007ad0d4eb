package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationParams(t *testing.T) {
	assert.Equal(t, PaginationParams{Page: 1, PageSize: DefaultPageSize, Offset: 0}, NewPaginationParams(0, 0))
	assert.Equal(t, PaginationParams{Page: 3, PageSize: 10, Offset: 20}, NewPaginationParams(3, 10))
	assert.Equal(t, DefaultPageSize, NewPaginationParams(1, MaxPageSize+1).PageSize)
}

func TestWindow(t *testing.T) {
	start, end := NewPaginationParams(2, 10).Window(15)
	assert.Equal(t, 10, start)
	assert.Equal(t, 15, end)

	start, end = NewPaginationParams(5, 10).Window(15)
	assert.Equal(t, 15, start)
	assert.Equal(t, 15, end)
}
