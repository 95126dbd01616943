package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/foodcatalog/internal/middleware"
	"github.com/example/foodcatalog/internal/services"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	auth   *services.AuthService
	logger *zap.Logger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// Login authenticates a user and issues a bearer token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}

	user, token, err := h.auth.Login(c.UserContext(), req)
	if err != nil {
		return renderError(c, h.logger, err, "Server Error")
	}

	return respond(c, fiber.StatusOK, "Login in successfully", fiber.Map{
		"user":  presentUser(user),
		"token": token,
	})
}

// Register creates a new admin account. Only admins may call it.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}

	user, err := h.auth.Register(c.UserContext(), req)
	if err != nil {
		return renderError(c, h.logger, err, "Server Error")
	}

	return respond(c, fiber.StatusCreated, "User created successfully", presentUser(user))
}

// Logout revokes the token of the current request.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token, ok := middleware.CurrentToken(c)
	if !ok {
		return respond(c, fiber.StatusUnauthorized, "Unauthenticated", nil)
	}

	if err := h.auth.Logout(c.UserContext(), token); err != nil {
		return renderError(c, h.logger, err, "Server Error")
	}
	return respond(c, fiber.StatusOK, "Logged out successfully", nil)
}

// LogoutAll revokes every token of the current user.
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return respond(c, fiber.StatusUnauthorized, "Unauthenticated", nil)
	}

	if err := h.auth.LogoutAll(c.UserContext(), user); err != nil {
		return renderError(c, h.logger, err, "Server Error")
	}
	return respond(c, fiber.StatusOK, "Logged out from all devices successfully", nil)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return respond(c, fiber.StatusUnauthorized, "Unauthenticated", nil)
	}
	return respond(c, fiber.StatusOK, "User retrieved successfully", presentUser(user))
}
