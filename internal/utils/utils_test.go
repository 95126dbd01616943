package utils

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	userID, tokenID := uuid.New(), uuid.New()

	raw, err := GenerateToken("secret", userID, tokenID, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("secret", raw)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, tokenID, claims.TokenID)

	_, err = ParseToken("other-secret", raw)
	assert.Error(t, err)

	expired, err := GenerateToken("secret", userID, tokenID, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("secret", expired)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "secret124"))
	assert.False(t, CheckPassword("", "secret123"))
}

func TestPasswordHashLongInput(t *testing.T) {
	long := strings.Repeat("a", 100)

	hash, err := HashPassword(long)
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, long))
	assert.True(t, CheckPassword(hash, long[:72]))
	assert.False(t, CheckPassword(hash, long[:71]))
}

func TestParsePagination(t *testing.T) {
	testCases := []struct {
		query    string
		expected Pagination
	}{
		{query: "", expected: Pagination{Page: 1, PerPage: 15, Offset: 0}},
		{query: "page=3&per_page=10", expected: Pagination{Page: 3, PerPage: 10, Offset: 20}},
		{query: "page=2&perpage=5", expected: Pagination{Page: 2, PerPage: 5, Offset: 5}},
		{query: "page=-1&per_page=abc", expected: Pagination{Page: 1, PerPage: 15, Offset: 0}},
		{query: "per_page=1000", expected: Pagination{Page: 1, PerPage: 100, Offset: 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			app := fiber.New()
			var got Pagination
			app.Get("/", func(c *fiber.Ctx) error {
				got = ParsePagination(c)
				return c.SendStatus(fiber.StatusNoContent)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/?"+tc.query, nil))
			require.NoError(t, err)
			io.Copy(io.Discard, resp.Body)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 15))
	assert.Equal(t, 1, TotalPages(15, 15))
	assert.Equal(t, 2, TotalPages(16, 15))
	assert.Equal(t, 1, TotalPages(10, 0))
}
