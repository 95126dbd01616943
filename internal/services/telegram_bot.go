package services

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Webhook outcomes reported back to Telegram.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusIgnored = "ignored"
)

const (
	welcomeText = "Xosh keldińiz!\nHush kelibsiz!\nДобро пожаловать!"

	instructionsText = "Assalauma aleykum! ✅\n\n" +
		"Mazalı taǵamlarımızǵa buyırtpa beriwdi baslaw ushın tómendegi \"Ashıw\" túymesin basıń.\n\n" +
		"Eger sizde qandayda bir soraw bolsa, iltimas, bizlerdiń qollap-quwatlawımızǵa jazıń.\n\n" +
		"Assolomu aleykum! 👋\n\n" +
		"Mazali taomlarimizga buyurtma berishni boshlash uchun quyidagi “Ochish” tugmasini bosing.\n\n" +
		"Agar sizda biron bir savol bo'lsa, iltimos, bizning qo'llab-quvvatlashimizga yozing.\n\n" +
		"Здравствуйте! 👋\n\n" +
		"Чтобы заказать наши блюда, перейдите на платформу доставки, нажав на кнопку ниже \"Открыть\".\n\n" +
		"Если у вас возникнут вопросы, напишите нам в поддержку."

	openButtonText = "Ashıw / Ochish / Открыть 🚀"
)

// Update is the subset of a Telegram update the bot reacts to.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type CallbackQuery struct {
	ID      string   `json:"id"`
	Data    string   `json:"data"`
	Message *Message `json:"message,omitempty"`
}

// MessageSender delivers bot messages.
type MessageSender interface {
	SendMessage(ctx context.Context, msg SendMessageRequest) error
}

// TelegramBot dispatches webhook updates to command handlers.
type TelegramBot struct {
	sender    MessageSender
	webAppURL string
	logger    *zap.Logger
}

func NewTelegramBot(sender MessageSender, webAppURL string, logger *zap.Logger) *TelegramBot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TelegramBot{sender: sender, webAppURL: webAppURL, logger: logger}
}

// Handle routes an update and returns its outcome. It never fails.
func (b *TelegramBot) Handle(ctx context.Context, update Update) string {
	if !isStart(update) {
		return StatusIgnored
	}
	return b.Start(ctx, update)
}

// Start greets the chat and sends the button that opens the storefront.
func (b *TelegramBot) Start(ctx context.Context, update Update) string {
	chatID, ok := chatID(update)
	if !ok {
		b.logger.Error("start command without chat", zap.Int64("update_id", update.UpdateID))
		return StatusError
	}

	if err := b.sender.SendMessage(ctx, SendMessageRequest{ChatID: chatID, Text: welcomeText}); err != nil {
		b.logger.Error("start command welcome failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return StatusError
	}

	err := b.sender.SendMessage(ctx, SendMessageRequest{
		ChatID:    chatID,
		Text:      instructionsText,
		ParseMode: "HTML",
		ReplyMarkup: &InlineKeyboardMarkup{
			InlineKeyboard: [][]InlineKeyboardButton{{
				{Text: openButtonText, WebApp: &WebAppInfo{URL: b.webAppURL}},
			}},
		},
	})
	if err != nil {
		b.logger.Error("start command instructions failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return StatusError
	}

	return StatusOK
}

func isStart(update Update) bool {
	if update.Message != nil {
		fields := strings.Fields(update.Message.Text)
		if len(fields) == 0 {
			return false
		}
		command := fields[0]
		if at := strings.IndexByte(command, '@'); at >= 0 {
			command = command[:at]
		}
		return command == "/start"
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.Data == "start"
	}
	return false
}

func chatID(update Update) (int64, bool) {
	if update.Message != nil {
		return update.Message.Chat.ID, true
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
		return update.CallbackQuery.Message.Chat.ID, true
	}
	return 0, false
}
