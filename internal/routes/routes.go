package routes

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/foodcatalog/internal/cache"
	"github.com/example/foodcatalog/internal/config"
	"github.com/example/foodcatalog/internal/handlers"
	"github.com/example/foodcatalog/internal/middleware"
	"github.com/example/foodcatalog/internal/models"
	"github.com/example/foodcatalog/internal/repositories"
	"github.com/example/foodcatalog/internal/services"
	"github.com/example/foodcatalog/internal/storage"
)

// Deps are the shared collaborators the routes are built from.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Logger   *zap.Logger
	Cache    cache.Cache
	Storage  storage.Storage
	Telegram services.MessageSender
}

// Services is what Register built, for callers that need it after startup.
type Services struct {
	Auth *services.AuthService
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, deps Deps) *Services {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	categoryRepo := repositories.NewCategoryRepository(deps.DB)
	productRepo := repositories.NewProductRepository(deps.DB)
	userRepo := repositories.NewUserRepository(deps.DB)
	clientRepo := repositories.NewClientRepository(deps.DB)

	categoryService := services.NewCategoryService(categoryRepo, deps.Cache, cfg.CacheTTL, logger)
	productService := services.NewProductService(productRepo, categoryRepo, deps.Storage, cfg.MaxImageSize(), logger)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenExpires, logger)
	clientService := services.NewClientService(clientRepo)

	sender := deps.Telegram
	if sender == nil {
		sender = services.NewTelegramService(cfg.TelegramAPIURL, cfg.TelegramBotToken, logger)
	}
	bot := services.NewTelegramBot(sender, cfg.WebAppURL, logger)

	authHandler := handlers.NewAuthHandler(authService, logger)
	categoryHandler := handlers.NewCategoryHandler(categoryService, cfg.DefaultLocale, logger)
	productHandler := handlers.NewProductHandler(productService, cfg.DefaultLocale, logger)
	clientHandler := handlers.NewClientHandler(clientService, logger)
	telegramHandler := handlers.NewTelegramHandler(bot, cfg.TelegramWebhookSecret, logger)

	if len(cfg.CORSAllowedOrigins) > 0 {
		origins := strings.Join(cfg.CORSAllowedOrigins, ",")
		app.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
			AllowHeaders:     "Origin,Content-Type,Accept,Accept-Language,Authorization,X-HTTP-Method-Override",
			AllowCredentials: !strings.Contains(origins, "*"),
			MaxAge:           int((12 * time.Hour).Seconds()),
		}))
	}

	if local, ok := deps.Storage.(*storage.Local); ok {
		app.Static("/storage", local.Root())
	}

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "message": "ok", "data": nil, "code": fiber.StatusOK})
	})

	api.Post("/telegram/webhook", telegramHandler.Webhook)

	v1 := api.Group("/v1", middleware.Locale(cfg.DefaultLocale))

	// Auth routes
	v1.Post("/login", authHandler.Login)
	authenticated := middleware.AuthMiddleware(authService, logger)
	v1.Post("/logout", authenticated, authHandler.Logout)
	v1.Post("/logout-all", authenticated, authHandler.LogoutAll)
	v1.Get("/me", authenticated, authHandler.Me)
	v1.Post("/register", authenticated, middleware.RequireRole(models.RoleAdmin), authHandler.Register)
	v1.Get("/clients", authenticated, clientHandler.ListClients)

	// Catalog routes
	categories := v1.Group("/categories")
	categories.Get("/", categoryHandler.ListCategories)
	categories.Post("/", categoryHandler.CreateCategory)
	categories.Get("/:id", categoryHandler.GetCategory)
	categories.Put("/:id", categoryHandler.UpdateCategory)
	categories.Delete("/:id", categoryHandler.DeleteCategory)

	products := v1.Group("/products")
	productHandler.RegisterProductRoutes(products)

	return &Services{Auth: authService}
}
