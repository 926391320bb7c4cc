package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mahirjain10/image-resolution-worker/config"
	"github.com/mahirjain10/image-resolution-worker/internal/app"
	"github.com/mahirjain10/image-resolution-worker/internal/dedupe"
	"github.com/mahirjain10/image-resolution-worker/internal/logger"
	"github.com/mahirjain10/image-resolution-worker/internal/queue"
)

type App struct {
	config          *config.Config
	logger          zerolog.Logger
	redisClient     *redis.Client
	rabbitMqService *queue.RabbitMqService
}

// NewApp creates and initializes a new App instance with all dependencies
func NewApp(ctx context.Context) (*App, error) {
	envConfig, err := config.InitializeEnvs()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize environment config: %w", err)
	}
	if err := envConfig.RequireQueue(); err != nil {
		return nil, err
	}

	appLogger := logger.NewLogger(envConfig.AppEnv, envConfig.LogLevel)

	orchestrator, err := app.NewOrchestrator(ctx, envConfig, appLogger)
	if err != nil {
		return nil, err
	}

	var claimer dedupe.Claimer = dedupe.NoopClaimer{}
	var redisClient *redis.Client
	if envConfig.RedisAddr != "" {
		redisClient, err = dedupe.NewRedisClient(ctx, envConfig.RedisAddr, envConfig.RedisPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		claimer = dedupe.NewRedisClaimer(redisClient, envConfig.DedupeTTL)
		appLogger.Info().Str("addr", envConfig.RedisAddr).Dur("ttl", envConfig.DedupeTTL).Msg("event dedupe enabled")
	}

	conn, err := queue.NewRabbitMQClient(envConfig.RabbitMqURL)
	if err != nil {
		return nil, err
	}

	rabbitMqService := queue.NewRabbitMqService(conn, envConfig, orchestrator, claimer, nil, appLogger)

	return &App{
		config:          envConfig,
		logger:          appLogger,
		redisClient:     redisClient,
		rabbitMqService: rabbitMqService,
	}, nil
}

func (a *App) Close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("error closing redis client")
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := NewApp(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer application.Close()

	application.logger.Info().Msg("application initialized successfully")

	if err := application.rabbitMqService.Start(ctx); err != nil {
		application.logger.Fatal().Err(err).Msg("failed to start application")
	}
}
