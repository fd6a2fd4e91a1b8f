package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paramsFor(t *testing.T, query string) PaginationParams {
	t.Helper()

	var got PaginationParams
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		got = GetPaginationParams(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/?"+query, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	return got
}

func TestGetPaginationParams(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", 1, 25},
		{"explicit values", "page=3&limit=50", 3, 50},
		{"zero page falls back", "page=0", 1, 25},
		{"negative page falls back", "page=-2", 1, 25},
		{"unsupported limit falls back", "limit=37", 1, 25},
		{"non-numeric falls back", "page=abc&limit=xyz", 1, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := paramsFor(t, tt.query)
			assert.Equal(t, tt.wantPage, params.Page)
			assert.Equal(t, tt.wantLimit, params.Limit)
		})
	}

	t.Run("search passes through", func(t *testing.T) {
		params := paramsFor(t, "search=paper")
		assert.Equal(t, "paper", params.Search)
	})
}

func TestCalculatePagination(t *testing.T) {
	t.Run("middle page", func(t *testing.T) {
		meta := CalculatePagination(2, 25, 60)
		assert.Equal(t, 2, meta.CurrentPage)
		assert.Equal(t, 3, meta.LastPage)
		assert.Equal(t, 26, meta.From)
		assert.Equal(t, 50, meta.To)
		assert.True(t, meta.HasMore)
	})

	t.Run("last partial page", func(t *testing.T) {
		meta := CalculatePagination(3, 25, 60)
		assert.Equal(t, 51, meta.From)
		assert.Equal(t, 60, meta.To)
		assert.False(t, meta.HasMore)
	})

	t.Run("empty result", func(t *testing.T) {
		meta := CalculatePagination(1, 25, 0)
		assert.Equal(t, 0, meta.From)
		assert.Equal(t, 0, meta.To)
		assert.Equal(t, 0, meta.LastPage)
		assert.False(t, meta.HasMore)
	})
}

func TestGetOffset(t *testing.T) {
	assert.Equal(t, 0, GetOffset(1, 25))
	assert.Equal(t, 50, GetOffset(3, 25))
}
