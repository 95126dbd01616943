package utils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// Pagination holds pagination parameters.
type Pagination struct {
	Page    int
	PerPage int
	Offset  int
}

// ParsePagination reads page and per_page (or perpage) query params with
// sane defaults.
func ParsePagination(c *fiber.Ctx) Pagination {
	perPageRaw := c.Query("per_page")
	if perPageRaw == "" {
		perPageRaw = c.Query("perpage")
	}

	page := parseInt(c.Query("page"), 1)
	perPage := parseInt(perPageRaw, DefaultPerPage)
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if page <= 0 {
		page = 1
	}

	return Pagination{
		Page:    page,
		PerPage: perPage,
		Offset:  (page - 1) * perPage,
	}
}

// TotalPages returns how many pages of perPage items total spans, at least one.
func TotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

func parseInt(value string, fallback int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	if parsed, err := cast.ToIntE(strings.TrimLeft(value, "0")); err == nil && parsed > 0 {
		return parsed
	}
	return fallback
}
