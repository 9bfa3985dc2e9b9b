package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	var got Pagination
	app.Get("/", func(c *fiber.Ctx) error {
		got = parsePagination(c)
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		name         string
		query        string
		expectedPage int
		expectedSize int
	}{
		{"Defaults", "", 1, 10},
		{"Explicit", "?page=3&size=25", 3, 25},
		{"Size capped", "?size=5000", 1, 100},
		{"Negative page floored", "?page=-2", 1, 10},
		{"Zero size defaulted", "?size=0", 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			_, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedPage, got.Page)
			assert.Equal(t, tt.expectedSize, got.Size)
		})
	}
}

func TestPaginationWindow(t *testing.T) {
	p := Pagination{Page: 3, Size: 20}
	assert.Equal(t, 20, p.Limit())
	assert.Equal(t, 40, p.Offset())
}

func TestPaginatedEnvelope(t *testing.T) {
	env := paginated([]int{1, 2, 3}, 23, Pagination{Page: 2, Size: 10})
	assert.Equal(t, int64(23), env.Total)
	assert.Equal(t, 2, env.Page)
	assert.Equal(t, int64(3), env.Pages)

	empty := paginated([]int{}, 0, Pagination{Page: 1, Size: 10})
	assert.Equal(t, int64(0), empty.Pages)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"Not found", models.NewNotFoundError("Post", 1), http.StatusNotFound},
		{"Plain validation", models.NewValidationError("bad"), http.StatusBadRequest},
		{"Field validation", models.NewFieldValidationError(map[string]string{"email": "invalid"}), http.StatusUnprocessableEntity},
		{"Conflict", models.NewConflictError("dup"), http.StatusConflict},
		{"Unauthorized", models.NewUnauthorizedError("no"), http.StatusUnauthorized},
		{"Forbidden", models.NewForbiddenError("no"), http.StatusForbidden},
		{"Internal", models.NewInternalError(assert.AnError), http.StatusInternalServerError},
		{"Unknown error type", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, statusForError(tt.err))
		})
	}
}
