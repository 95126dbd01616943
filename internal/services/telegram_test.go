package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type botAPI struct {
	mu       sync.Mutex
	paths    []string
	messages []SendMessageRequest
	fail     bool
}

func (b *botAPI) server(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.paths = append(b.paths, r.URL.Path)

		if strings.HasSuffix(r.URL.Path, "/sendMessage") {
			var msg SendMessageRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
			b.messages = append(b.messages, msg)
		}

		if b.fail {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
			return
		}
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTelegramBotStart(t *testing.T) {
	testCases := []struct {
		name     string
		update   Update
		chatID   int64
		expected string
	}{
		{name: "start command", update: Update{Message: &Message{Chat: Chat{ID: 42}, Text: "/start"}}, chatID: 42, expected: StatusOK},
		{name: "start with bot name", update: Update{Message: &Message{Chat: Chat{ID: 7}, Text: "/start@food_bot"}}, chatID: 7, expected: StatusOK},
		{name: "start with payload", update: Update{Message: &Message{Chat: Chat{ID: 8}, Text: "/start promo"}}, chatID: 8, expected: StatusOK},
		{name: "callback", update: Update{CallbackQuery: &CallbackQuery{Data: "start", Message: &Message{Chat: Chat{ID: 9}}}}, chatID: 9, expected: StatusOK},
		{name: "other text", update: Update{Message: &Message{Chat: Chat{ID: 1}, Text: "hello"}}, expected: StatusIgnored},
		{name: "empty update", update: Update{}, expected: StatusIgnored},
		{name: "callback without message", update: Update{CallbackQuery: &CallbackQuery{Data: "start"}}, expected: StatusError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			api := &botAPI{}
			srv := api.server(t)
			bot := NewTelegramBot(NewTelegramService(srv.URL, "TOKEN", nil), "https://shop.example.com", nil)

			status := bot.Handle(context.Background(), tc.update)
			assert.Equal(t, tc.expected, status)

			if tc.expected != StatusOK {
				assert.Empty(t, api.messages)
				return
			}

			require.Len(t, api.messages, 2)
			assert.Equal(t, "/botTOKEN/sendMessage", api.paths[0])

			assert.Equal(t, tc.chatID, api.messages[0].ChatID)
			assert.Equal(t, "Xosh keldińiz!\nHush kelibsiz!\nДобро пожаловать!", api.messages[0].Text)
			assert.Nil(t, api.messages[0].ReplyMarkup)

			second := api.messages[1]
			assert.Equal(t, tc.chatID, second.ChatID)
			assert.Equal(t, "HTML", second.ParseMode)
			require.NotNil(t, second.ReplyMarkup)
			button := second.ReplyMarkup.InlineKeyboard[0][0]
			assert.Equal(t, "Ashıw / Ochish / Открыть 🚀", button.Text)
			require.NotNil(t, button.WebApp)
			assert.Equal(t, "https://shop.example.com", button.WebApp.URL)
		})
	}
}

func TestTelegramBotSendFailure(t *testing.T) {
	api := &botAPI{fail: true}
	srv := api.server(t)
	bot := NewTelegramBot(NewTelegramService(srv.URL, "TOKEN", nil), "https://shop.example.com", nil)

	status := bot.Handle(context.Background(), Update{Message: &Message{Chat: Chat{ID: 1}, Text: "/start"}})
	assert.Equal(t, StatusError, status)
	assert.Len(t, api.messages, 1, "instructions are not sent after a failed welcome")
}

func TestTelegramServiceSetWebhook(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/setWebhook", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"ok":true,"result":true}`))
	}))
	defer srv.Close()

	client := NewTelegramService(srv.URL, "TOKEN", nil)
	require.NoError(t, client.SetWebhook(context.Background(), "https://api.example.com/api/telegram/webhook", "s3cret"))
	assert.Equal(t, "https://api.example.com/api/telegram/webhook", body["url"])
	assert.Equal(t, "s3cret", body["secret_token"])

	assert.ErrorIs(t, NewTelegramService(srv.URL, "", nil).SetWebhook(context.Background(), "x", ""), ErrTelegramNotConfigured)
}
