package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/example/foodcatalog/internal/models"
	"github.com/example/foodcatalog/internal/services"
)

const (
	userContextKey  = "currentUser"
	tokenContextKey = "currentToken"
)

// AuthMiddleware validates the bearer token and loads the user and token row into context.
func AuthMiddleware(auth *services.AuthService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthenticated")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthenticated")
		}

		user, token, err := auth.Authenticate(c.UserContext(), strings.TrimSpace(parts[1]))
		if err != nil {
			if !errors.Is(err, services.ErrUnauthenticated) {
				logger.Error("authenticate request", zap.String("path", c.Path()), zap.Error(err))
			}
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthenticated")
		}

		c.Locals(userContextKey, user)
		c.Locals(tokenContextKey, token)
		return c.Next()
	}
}

// RequireRole rejects authenticated users without one of roles. It must run
// after AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthenticated")
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "This action is unauthorized.")
	}
}

// CurrentUser extracts the authenticated user from context.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(userContextKey).(*models.User)
	return user, ok && user != nil
}

// CurrentToken extracts the access token the request authenticated with.
func CurrentToken(c *fiber.Ctx) (*models.AccessToken, bool) {
	token, ok := c.Locals(tokenContextKey).(*models.AccessToken)
	return token, ok && token != nil
}
