package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/foodcatalog/internal/middleware"
	"github.com/example/foodcatalog/internal/services"
)

// CategoryHandler manages category endpoints.
type CategoryHandler struct {
	categories    *services.CategoryService
	defaultLocale string
	logger        *zap.Logger
}

// NewCategoryHandler constructs CategoryHandler.
func NewCategoryHandler(categories *services.CategoryService, defaultLocale string, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, defaultLocale: defaultLocale, logger: logger}
}

// categoryRequest accepts either a translations list or the legacy
// {"name": {"kk": "..."}} map.
type categoryRequest struct {
	Translations []services.TranslationInput `json:"translations"`
	Name         map[string]string           `json:"name"`
}

func (r categoryRequest) inputs() []services.TranslationInput {
	if len(r.Translations) > 0 || len(r.Name) == 0 {
		return r.Translations
	}
	return services.TranslationsFromMaps(r.Name, nil)
}

func (h *CategoryHandler) presenter(c *fiber.Ctx) presenter {
	return presenter{loc: middleware.CurrentLocale(c, h.defaultLocale), fallback: h.defaultLocale}
}

// ListCategories returns every category.
func (h *CategoryHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.categories.List(c.UserContext())
	if err != nil {
		return renderError(c, h.logger, err, "Failed to retrieve categories")
	}
	return respond(c, fiber.StatusOK, "Categories retrieved successfully", h.presenter(c).categories(categories))
}

// GetCategory returns a single category by ID.
func (h *CategoryHandler) GetCategory(c *fiber.Ctx) error {
	id, err := parseID(c, services.ErrCategoryNotFound)
	if err != nil {
		return renderError(c, h.logger, err, "Failed to retrieve category")
	}

	category, err := h.categories.Get(c.UserContext(), id)
	if err != nil {
		return renderError(c, h.logger, err, "Failed to retrieve category")
	}
	return respond(c, fiber.StatusOK, "Category retrieved successfully", h.presenter(c).category(category))
}

// CreateCategory persists a new category with its translations.
func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}

	category, err := h.categories.Create(c.UserContext(), req.inputs())
	if err != nil {
		return renderError(c, h.logger, err, "Failed to create category")
	}
	return respond(c, fiber.StatusCreated, "Category created successfully", h.presenter(c).category(category))
}

// UpdateCategory replaces the translations of an existing category.
func (h *CategoryHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := parseID(c, services.ErrCategoryNotFound)
	if err != nil {
		return renderError(c, h.logger, err, "Failed to update category")
	}

	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}

	category, err := h.categories.Update(c.UserContext(), id, req.inputs())
	if err != nil {
		return renderError(c, h.logger, err, "Failed to update category")
	}
	return respond(c, fiber.StatusOK, "Category updated successfully", h.presenter(c).category(category))
}

// DeleteCategory removes a category by ID.
func (h *CategoryHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseID(c, services.ErrCategoryNotFound)
	if err != nil {
		return renderError(c, h.logger, err, "Failed to delete category")
	}

	if err := h.categories.Delete(c.UserContext(), id); err != nil {
		return renderError(c, h.logger, err, "Failed to delete category")
	}
	return respond(c, fiber.StatusOK, "Category deleted successfully", nil)
}
