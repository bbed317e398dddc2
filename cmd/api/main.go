package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"cvscreener/internal/config"
	"cvscreener/internal/handlers"
	"cvscreener/internal/repositories"
	"cvscreener/internal/retry"
	"cvscreener/internal/services"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := newLogger(cfg.Server.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	generator, err := services.NewGeminiGenerator(ctx, cfg.Oracle.APIKey, cfg.Oracle.Model)
	if err != nil {
		logger.Fatal("failed to initialize oracle transport", zap.Error(err))
	}

	policy := retry.Policy{
		MaxAttempts:   cfg.Oracle.MaxRetries,
		BaseDelay:     cfg.Oracle.BaseDelay,
		MaxDelay:      cfg.Oracle.MaxDelay,
		JitterPercent: 10,
	}

	// One limiter gates every concurrent oracle call in the process.
	limiter := rate.NewLimiter(rate.Limit(cfg.Oracle.RatePerSecond), cfg.Oracle.RateBurst)

	oracle := services.NewOracleClient(generator, policy, limiter, cfg.Oracle.RequestTimeout, logger)

	analyzer := services.NewAnalyzerService(
		services.NewExtractorService(),
		services.NewSegmenterService(),
		oracle,
		cfg.Pipeline.DocumentConcurrency,
		logger,
	)

	runRepo := repositories.NewMemoryRunRepository()

	worker := services.NewWorker(runRepo, analyzer, cfg.Pipeline.WorkerConcurrency, logger)
	worker.Start(ctx)

	analyzeHandler := handlers.NewAnalyzeHandler(runRepo, worker, cfg.Storage.MaxFileSize)
	resultHandler := handlers.NewResultHandler(runRepo)

	app := fiber.New(fiber.Config{
		AppName:      "AI CV Screener API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) * 4,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/analyze", analyzeHandler.HandleAnalyze)
	api.Get("/result/:id", resultHandler.HandleGetResult)
	api.Get("/result/:id/report", resultHandler.HandleGetReport)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("shutting down server")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			logger.Error("forced shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server starting",
		zap.String("addr", addr),
		zap.String("model", cfg.Oracle.Model),
	)

	if err := app.Listen(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
