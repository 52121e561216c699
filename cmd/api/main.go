package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"interview-byte/internal/adapter"
	"interview-byte/internal/adapter/llm"
	"interview-byte/internal/cache"
	"interview-byte/internal/config"
	"interview-byte/internal/domain"
	"interview-byte/internal/handler"
	"interview-byte/internal/logger"
	"interview-byte/internal/middleware"
	"interview-byte/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Completion backend
	completer, err := llm.NewOllamaCompleter(cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create LLM completer", zap.Error(err))
	}
	appLogger.Info("LLM completer initialized",
		zap.String("server_url", cfg.LLM.ServerURL),
		zap.String("model", cfg.LLM.Model))

	// Optional evaluation cache. The service runs without it; only repeated
	// identical submissions then hit the backend again.
	var cacheAdapter domain.Cache
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Warn("Failed to connect to Redis, evaluation cache disabled", zap.Error(err))
		} else {
			cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
			appLogger.Info("Redis evaluation cache enabled", zap.String("address", cfg.Redis.Address))
		}
	}

	generator := service.NewQuestionSetGenerator(completer)
	evaluator := service.NewAnswerEvaluator(completer)
	var evalCache service.EvaluationCacheService
	if cacheAdapter != nil {
		evalCache = service.NewEvaluationCacheService(cacheAdapter, cfg.Interview.EvalCacheTTL)
	}
	sessions := service.NewSessionService(generator, evaluator, evalCache, cfg)

	interviewHandler := handler.NewInterviewHandler(sessions, generator, evaluator)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(requestLogger())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if cacheAdapter != nil {
			if err := cacheAdapter.Ping(c.Context()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status": "degraded",
					"cache":  err.Error(),
				})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	interviewHandler.RegisterRoutes(api)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		appLogger.Info("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			appLogger.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	appLogger.Info("Starting server", zap.String("address", addr))
	if err := app.Listen(addr); err != nil {
		appLogger.Fatal("Server failed", zap.Error(err))
	}

	appLogger.Info("Server stopped")
}
