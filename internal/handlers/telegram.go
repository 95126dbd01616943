package handlers

import (
	"crypto/subtle"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/foodcatalog/internal/services"
)

const telegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// TelegramHandler receives bot webhook updates.
type TelegramHandler struct {
	bot    *services.TelegramBot
	secret string
	logger *zap.Logger
}

// NewTelegramHandler constructs TelegramHandler. An empty secret disables the header check.
func NewTelegramHandler(bot *services.TelegramBot, secret string, logger *zap.Logger) *TelegramHandler {
	return &TelegramHandler{bot: bot, secret: secret, logger: logger}
}

// Webhook dispatches one update. Telegram retries non-2xx answers, so every
// processed update is acknowledged with 200.
func (h *TelegramHandler) Webhook(c *fiber.Ctx) error {
	if h.secret != "" {
		got := c.Get(telegramSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			return respond(c, fiber.StatusUnauthorized, "Unauthenticated", nil)
		}
	}

	var update services.Update
	if err := json.Unmarshal(c.Body(), &update); err != nil {
		h.logger.Warn("telegram update decode failed", zap.Error(err))
		return c.JSON(fiber.Map{"status": services.StatusError})
	}

	status := h.bot.Handle(c.UserContext(), update)
	return c.JSON(fiber.Map{"status": status})
}
