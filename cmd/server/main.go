package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/example/foodcatalog/internal/cache"
	"github.com/example/foodcatalog/internal/config"
	"github.com/example/foodcatalog/internal/database"
	"github.com/example/foodcatalog/internal/handlers"
	"github.com/example/foodcatalog/internal/logger"
	"github.com/example/foodcatalog/internal/routes"
	"github.com/example/foodcatalog/internal/storage"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		zlog.Fatal("database", zap.Error(err))
	}

	store, err := newStorage(cfg)
	if err != nil {
		zlog.Fatal("storage", zap.Error(err))
	}

	appCache := newCache(cfg, zlog)

	app := fiber.New(fiber.Config{
		AppName:      "Food Catalog API",
		BodyLimit:    int(cfg.MaxImageSize()) + 1<<20,
		ErrorHandler: handlers.ErrorHandler(zlog),
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: !cfg.IsProduction()}))
	app.Use(fiberlogger.New())

	built := routes.Register(app, routes.Deps{
		DB:      db,
		Config:  cfg,
		Logger:  zlog,
		Cache:   appCache,
		Storage: store,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	created, err := built.Auth.EnsureAdmin(ctx, cfg.AdminLogin, cfg.AdminPassword, cfg.AdminPhone)
	cancel()
	if err != nil {
		zlog.Error("bootstrap admin", zap.Error(err))
	} else if created {
		zlog.Info("bootstrap admin created", zap.String("login", cfg.AdminLogin))
	}

	zlog.Info("starting server", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		zlog.Fatal("fiber.Listen", zap.Error(err))
	}
}

func newStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.StorageDriver == "cloudinary" {
		return storage.NewCloudinary(cfg.CloudinaryURL)
	}
	return storage.NewLocal(cfg.StorageDir, cfg.PublicURL)
}

// newCache prefers Redis and falls back to process memory when Redis is
// not configured or unreachable.
func newCache(cfg *config.Config, zlog *zap.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		return cache.NewMemory()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisCache, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		zlog.Warn("redis unavailable, using in-memory cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		return cache.NewMemory()
	}
	return redisCache
}
