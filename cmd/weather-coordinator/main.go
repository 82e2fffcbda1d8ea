package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-coordinator/internal/api/http"
	"github.com/i474232898/weather-coordinator/internal/app"
	"github.com/i474232898/weather-coordinator/internal/config"
	"github.com/i474232898/weather-coordinator/internal/scheduler"
)

func main() {
	// Load configuration (also reads .env).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	if cfg.EnvFileErr != nil {
		zl.Info("no .env file loaded", zap.Error(cfg.EnvFileErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to wire app", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			zl.Error("error closing store", zap.Error(err))
		}
	}()
	coord := a.Coordinator

	// Cold start: saved preferences first, then the first fetch.
	<-coord.Start(ctx)
	go func() {
		fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		coord.FetchWeatherByLocation(fetchCtx)
	}()

	// Scheduler that periodically refreshes the shown weather.
	sched := scheduler.New(coord, cfg.RefreshInterval, zl.Named("scheduler"))
	if err := sched.Start(); err != nil {
		zl.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	// Basic app configuration. No write timeout: the state stream is long lived.
	srv := fiber.New(fiber.Config{
		AppName:               "weather-coordinator",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	srv.Use(logger.New())
	srv.Use(recover.New())

	// Basic health endpoint
	srv.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-coordinator",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(ctx, srv, coord, a.History)

	go func() {
		zl.Info("listening", zap.String("port", cfg.Port))
		if err := srv.Listen(":" + cfg.Port); err != nil {
			zl.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
		zl.Error("error during shutdown", zap.Error(err))
	}
}
