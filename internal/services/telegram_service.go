package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultTelegramAPIURL is the public Bot API endpoint.
const DefaultTelegramAPIURL = "https://api.telegram.org"

// ErrTelegramNotConfigured is returned when no bot token is set.
var ErrTelegramNotConfigured = errors.New("telegram bot token not configured")

// TelegramService talks to the Telegram Bot API.
type TelegramService struct {
	baseURL  string
	botToken string
	client   *http.Client
	logger   *zap.Logger
}

// NewTelegramService creates a new TelegramService. An empty baseURL uses the public API.
func NewTelegramService(baseURL, botToken string, logger *zap.Logger) *TelegramService {
	if baseURL == "" {
		baseURL = DefaultTelegramAPIURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TelegramService{
		baseURL:  strings.TrimRight(baseURL, "/"),
		botToken: botToken,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}
}

// WebAppInfo opens a Telegram mini app.
type WebAppInfo struct {
	URL string `json:"url"`
}

type InlineKeyboardButton struct {
	Text   string      `json:"text"`
	WebApp *WebAppInfo `json:"web_app,omitempty"`
	URL    string      `json:"url,omitempty"`
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// SendMessageRequest is the sendMessage payload.
type SendMessageRequest struct {
	ChatID      int64                 `json:"chat_id"`
	Text        string                `json:"text"`
	ParseMode   string                `json:"parse_mode,omitempty"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

type setWebhookRequest struct {
	URL            string   `json:"url"`
	SecretToken    string   `json:"secret_token,omitempty"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
}

// SendMessage sends a message to a chat.
func (s *TelegramService) SendMessage(ctx context.Context, msg SendMessageRequest) error {
	return s.call(ctx, "sendMessage", msg)
}

// SetWebhook points the bot at url. secret is echoed back by Telegram in the
// X-Telegram-Bot-Api-Secret-Token header.
func (s *TelegramService) SetWebhook(ctx context.Context, url, secret string) error {
	return s.call(ctx, "setWebhook", setWebhookRequest{
		URL:            url,
		SecretToken:    secret,
		AllowedUpdates: []string{"message", "callback_query"},
	})
}

func (s *TelegramService) call(ctx context.Context, method string, payload interface{}) error {
	if s.botToken == "" {
		return ErrTelegramNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "encode %s", method)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", s.baseURL, s.botToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "build %s request", method)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "telegram %s", method)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrapf(err, "read %s response", method)
	}

	var result apiResponse
	if err := json.Unmarshal(raw, &result); err != nil || resp.StatusCode != http.StatusOK || !result.OK {
		s.logger.Warn("telegram api call failed",
			zap.String("method", method),
			zap.Int("status", resp.StatusCode),
			zap.String("description", result.Description),
		)
		if result.Description != "" {
			return errors.Errorf("telegram %s: %s", method, result.Description)
		}
		return errors.Errorf("telegram %s returned status %d", method, resp.StatusCode)
	}

	return nil
}
