package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// MethodOverride guards a POST route that stands in for one of methods. The
// intended method comes from the _method form field or the
// X-HTTP-Method-Override header; anything else is answered with 405.
func MethodOverride(methods ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		override := c.Get("X-HTTP-Method-Override")
		if override == "" {
			override = c.FormValue("_method")
		}
		override = strings.ToUpper(strings.TrimSpace(override))

		for _, method := range methods {
			if override == method {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusMethodNotAllowed, "Method Not Allowed")
	}
}
