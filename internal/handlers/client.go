package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/foodcatalog/internal/services"
	"github.com/example/foodcatalog/internal/utils"
)

// ClientHandler lists storefront clients.
type ClientHandler struct {
	clients *services.ClientService
	logger  *zap.Logger
}

// NewClientHandler constructs ClientHandler.
func NewClientHandler(clients *services.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{clients: clients, logger: logger}
}

// ListClients returns paginated clients with their login and phone.
func (h *ClientHandler) ListClients(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	clients, total, err := h.clients.List(c.UserContext(), pg)
	if err != nil {
		return renderError(c, h.logger, err, "Failed to retrieve clients")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Clients retrieved successfully",
		"data":    presentClients(clients),
		"pagination": fiber.Map{
			"total":        total,
			"per_page":     pg.PerPage,
			"current_page": pg.Page,
			"total_pages":  utils.TotalPages(total, pg.PerPage),
		},
		"code": fiber.StatusOK,
	})
}
