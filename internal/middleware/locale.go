package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/foodcatalog/internal/locale"
)

const localeContextKey = "locale"

// Locale negotiates the response locale from Accept-Language.
func Locale(fallback string) fiber.Handler {
	if code, ok := locale.Normalize(fallback); ok {
		fallback = code
	} else {
		fallback = locale.Uzbek
	}

	return func(c *fiber.Ctx) error {
		loc := locale.Negotiate(c.Get(fiber.HeaderAcceptLanguage), fallback)
		c.Locals(localeContextKey, loc)
		c.Set(fiber.HeaderContentLanguage, loc)
		return c.Next()
	}
}

// CurrentLocale returns the negotiated locale, or fallback outside the middleware.
func CurrentLocale(c *fiber.Ctx, fallback string) string {
	if loc, ok := c.Locals(localeContextKey).(string); ok && loc != "" {
		return loc
	}
	return fallback
}
