// Command telegram-webhook registers the bot webhook with the Telegram Bot API.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/example/foodcatalog/internal/config"
	"github.com/example/foodcatalog/internal/logger"
	"github.com/example/foodcatalog/internal/services"
)

const webhookPath = "/api/telegram/webhook"

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	url := flag.String("url", cfg.AppURL+webhookPath, "public webhook URL")
	flag.Parse()

	client := services.NewTelegramService(cfg.TelegramAPIURL, cfg.TelegramBotToken, zlog)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := client.SetWebhook(ctx, *url, cfg.TelegramWebhookSecret); err != nil {
		zlog.Fatal("set webhook", zap.String("url", *url), zap.Error(err))
	}
	zlog.Info("webhook set", zap.String("url", *url))
}
