package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/example/foodcatalog/internal/middleware"
	"github.com/example/foodcatalog/internal/services"
)

// ProductHandler manages product CRUD.
type ProductHandler struct {
	products      *services.ProductService
	defaultLocale string
	logger        *zap.Logger
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(products *services.ProductService, defaultLocale string, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, defaultLocale: defaultLocale, logger: logger}
}

// RegisterProductRoutes attaches product routes to the router.
func (h *ProductHandler) RegisterProductRoutes(router fiber.Router) {
	router.Get("/", h.ListProducts)
	router.Post("/", h.CreateProduct)
	router.Get("/:id", h.GetProduct)
	router.Put("/:id", h.UpdateProduct)
	router.Patch("/:id", h.UpdateProduct)
	router.Post("/:id", middleware.MethodOverride(fiber.MethodPut, fiber.MethodPatch), h.UpdateProduct)
	router.Delete("/:id", h.DeleteProduct)
}

func (h *ProductHandler) presenter(c *fiber.Ctx) presenter {
	return presenter{
		loc:      middleware.CurrentLocale(c, h.defaultLocale),
		fallback: h.defaultLocale,
		imageURL: h.products.ImageURL,
	}
}

// ListProducts returns paginated products with optional filters.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	var query services.ProductQuery
	if err := c.QueryParser(&query); err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid query parameters", nil)
	}

	loc := middleware.CurrentLocale(c, h.defaultLocale)
	page, err := h.products.List(c.UserContext(), query, loc)
	if err != nil {
		return renderError(c, h.logger, err, "Failed to retrieve products")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Products retrieved successfully",
		"data":    h.presenter(c).products(page.Products),
		"meta": fiber.Map{
			"current_page": page.CurrentPage,
			"last_page":    page.LastPage,
			"per_page":     page.PerPage,
			"total":        page.Total,
		},
		"code": fiber.StatusOK,
	})
}

// GetProduct loads a product with its translations and category.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c, services.ErrProductNotFound)
	if err != nil {
		return renderError(c, h.logger, err, "Failed to retrieve product")
	}

	product, err := h.products.Get(c.UserContext(), id)
	if err != nil {
		return renderError(c, h.logger, err, "Failed to retrieve product")
	}
	return respond(c, fiber.StatusOK, "Product retrieved successfully", h.presenter(c).product(product))
}

// CreateProduct handles product creation from a multipart form.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	in, closeImage, err := readProductInput(c)
	defer closeImage()
	if err != nil {
		return h.bodyError(c, err, "Failed to create product")
	}

	product, err := h.products.Create(c.UserContext(), in)
	if err != nil {
		return renderError(c, h.logger, err, "Failed to create product")
	}
	return respond(c, fiber.StatusCreated, "Product created successfully", h.presenter(c).product(product))
}

// UpdateProduct applies a partial update.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c, services.ErrProductNotFound)
	if err != nil {
		return renderError(c, h.logger, err, "Failed to update product")
	}

	in, closeImage, err := readProductInput(c)
	defer closeImage()
	if err != nil {
		return h.bodyError(c, err, "Failed to update product")
	}

	product, err := h.products.Update(c.UserContext(), id, in)
	if err != nil {
		return renderError(c, h.logger, err, "Failed to update product")
	}
	return respond(c, fiber.StatusOK, "Product updated successfully", h.presenter(c).product(product))
}

// DeleteProduct removes a product and its image.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c, services.ErrProductNotFound)
	if err != nil {
		return renderError(c, h.logger, err, "Failed to delete product")
	}

	if err := h.products.Delete(c.UserContext(), id); err != nil {
		return renderError(c, h.logger, err, "Failed to delete product")
	}
	return respond(c, fiber.StatusOK, "Product deleted successfully", nil)
}

func (h *ProductHandler) bodyError(c *fiber.Ctx, err error, fallback string) error {
	if errors.Is(err, errMalformedBody) {
		return respond(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}
	return renderError(c, h.logger, err, fallback)
}
