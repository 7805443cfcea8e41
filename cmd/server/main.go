package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"factory-admin/internal/cache"
	"factory-admin/internal/catalog"
	"factory-admin/internal/config"
	"factory-admin/internal/costing"
	"factory-admin/internal/dashboard"
	"factory-admin/internal/database"
	"factory-admin/internal/feed"
	"factory-admin/internal/logging"
	"factory-admin/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := fiber.New(fiber.Config{
		Views:        web.Engine(),
		ErrorHandler: web.ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(logging.RequestID())
	app.Use(logging.Requests(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	mode := "ready"
	setupErr := cfg.Validate()
	if setupErr == nil {
		setupErr = database.Init(cfg, logger)
	}
	if setupErr != nil {
		mode = "setup"
		logger.Warn("Backing store unavailable, serving setup screen", zap.Error(setupErr))
	}

	// GET /health
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "mode": mode})
	})

	if setupErr != nil {
		web.Setup(app, cfg, setupErr)
	} else {
		registerRoutes(ctx, app, cfg, logger)
	}
	app.Use(web.NotFound())

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("Server forced to shutdown", zap.Error(err))
		}
	}()

	logger.Info("Server starting", zap.String("port", cfg.HTTPPort), zap.String("mode", mode))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	if err := database.Close(); err != nil {
		logger.Error("Closing database failed", zap.Error(err))
	}
	logger.Info("Server exited")
}

func registerRoutes(ctx context.Context, app *fiber.App, cfg *config.Config, logger *zap.Logger) {
	hub := feed.NewHub(logger)
	if cfg.RedisURL != "" {
		startRedisBridge(ctx, cfg.RedisURL, hub, logger)
	} else {
		logger.Warn("REDIS_URL not set, change feed and list cache are local to this instance")
	}

	queries := cache.New(logger)
	queries.Attach(hub)

	cat := catalog.New(database.DB, hub, queries, logger)

	api := app.Group("/api")
	for _, a := range cat.APIs {
		a.Register(api)
	}

	// Change feed
	api.Get("/changes", feed.StreamHandler(ctx, hub, logger))

	// Dashboard
	api.Get("/dashboard/stats", dashboard.StatsHandler(cat.APIs, logger))
	api.Get("/dashboard/defects", dashboard.DefectChartHandler(database.DB))
	api.Get("/analytics", dashboard.AnalyticsHandler())

	// Material costing
	api.Get("/material-prices", costing.PricesHandler())

	web.New(cat.Screens, cat.APIs, database.DB, cfg, logger).Register(app)
}

func startRedisBridge(ctx context.Context, url string, hub *feed.Hub, logger *zap.Logger) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Error("Invalid REDIS_URL, change feed stays local", zap.Error(err))
		return
	}
	client := redis.NewClient(opts)
	bridge := feed.NewRedisBridge(client, hub, logger)

	go func() {
		defer client.Close()
		if err := bridge.Run(ctx); err != nil {
			logger.Error("Redis bridge stopped, change feed stays local", zap.Error(err))
		}
	}()
}
