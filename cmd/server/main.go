package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cityrunners/server/internal/api"
	"github.com/cityrunners/server/internal/api/handler"
	"github.com/cityrunners/server/internal/factory"
	"github.com/cityrunners/server/internal/services/auth"
	redisstorage "github.com/cityrunners/server/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	authCfg := auth.DefaultConfig()
	authCfg.GameCode = os.Getenv("GAME_CODE")
	if authCfg.GameCode == "" {
		logger.Warn("GAME_CODE not set; new player registration is disabled")
	}

	cfg := factory.Config{
		AuthConfig:  authCfg,
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Load the persisted roster into the live registry
	seeded, err := app.SeedRoster(context.Background())
	if err != nil {
		logger.Error("failed to seed roster", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("roster seeded", slog.Int("players", seeded))

	// Build the route table
	restHandler := handler.New(app.Registry, app.AuthService, app.Clock, app.Machine.Commands(), logger)
	router := api.NewRouter(restHandler, app.Sessions, app.AuthService, app.Registry, logger)

	serverConfig := api.DefaultConfig()
	if addr := os.Getenv("ADDR"); addr != "" {
		serverConfig.Addr = addr
	}
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// The phase machine runs for the process lifetime
	go app.Machine.Run(ctx)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
