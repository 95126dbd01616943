package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/example/foodcatalog/internal/services"
	"github.com/example/foodcatalog/internal/validation"
)

const invalidDataMessage = "The given data was invalid."

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": status < fiber.StatusBadRequest,
		"message": message,
		"data":    data,
		"code":    status,
	})
}

func respondValidation(c *fiber.Ctx, errs *validation.Errors) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"success": false,
		"message": invalidDataMessage,
		"data":    nil,
		"code":    fiber.StatusUnprocessableEntity,
		"errors":  errs,
	})
}

// renderError is the single place service errors become HTTP responses.
// Unknown errors are logged and answered with fallback and a 500.
func renderError(c *fiber.Ctx, logger *zap.Logger, err error, fallback string) error {
	var errs *validation.Errors
	if errors.As(err, &errs) {
		return respondValidation(c, errs)
	}

	switch {
	case errors.Is(err, services.ErrCategoryNotFound):
		return respond(c, fiber.StatusNotFound, "Category not found", nil)
	case errors.Is(err, services.ErrProductNotFound):
		return respond(c, fiber.StatusNotFound, "Product not found", nil)
	case errors.Is(err, services.ErrCategoryInUse):
		return respond(c, fiber.StatusConflict, "Category has products and cannot be deleted", nil)
	case errors.Is(err, services.ErrUnauthenticated):
		return respond(c, fiber.StatusUnauthorized, "Unauthenticated", nil)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return respond(c, fiberErr.Code, fiberErr.Message, nil)
	}

	logger.Error(fallback,
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return respond(c, fiber.StatusInternalServerError, fallback, nil)
}

// parseID reads the :id route param. A malformed id is reported as notFound
// since no row can carry it.
func parseID(c *fiber.Ctx, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}

// ErrorHandler renders errors that escaped a handler, including recovered
// panics and unmatched routes, in the API envelope.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return respond(c, fiberErr.Code, fiberErr.Message, nil)
		}
		return renderError(c, logger, err, "Server Error")
	}
}
