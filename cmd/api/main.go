package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/siteintel-service/internal/config"
	httpDelivery "github.com/siteintel-service/internal/delivery/http"
	"github.com/siteintel-service/internal/delivery/http/handler"
	"github.com/siteintel-service/internal/infrastructure/places"
	"github.com/siteintel-service/internal/pkg/logger"
	"github.com/siteintel-service/internal/repository/cache"
	"github.com/siteintel-service/internal/repository/memcache"
	redisRepo "github.com/siteintel-service/internal/repository/redis"
	"github.com/siteintel-service/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting SiteIntel Microservice")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("places_strategy", cfg.Places.Strategy),
	)

	// Отсутствие ключа провайдера - не фатально: сервис поднимается,
	// но отвечает ошибкой конфигурации на границе
	providerReady := cfg.Places.APIKey != ""
	if !providerReady {
		log.Warn("PLACES_API_KEY is not set, intelligence endpoints will return 503")
	}

	// 3. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 4. Health check
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}

	log.Info("All connections healthy")

	// 5. Initialize repositories and infrastructure
	placesClient := places.NewPlacesClient(&cfg.Places, log)
	strategy := places.NewStrategy(cfg.Places.Strategy, placesClient, log)
	memCache := memcache.New(cfg.Cache.MemoryTTL, cfg.Cache.MemoryMaxEntries, log)
	intelCacheRepo := cache.NewIntelCacheRepository(redisClient, &cfg.Cache)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	log.Info("Repositories initialized")

	// 6. Initialize use cases
	searchUC := usecase.NewPOISearchUseCase(strategy, placesClient, memCache, log)

	intelUC := usecase.NewIntelligenceUseCase(
		searchUC,
		intelCacheRepo,
		streamRepo,
		cfg.Worker.Stream,
		cfg.Places.CategoryTimeout,
		log,
	)

	scoringUC := usecase.NewScoringUseCase()

	log.Info("Use cases initialized")

	// 7. Initialize HTTP handlers
	intelligenceHandler := handler.NewIntelligenceHandler(intelUC, scoringUC, providerReady, log)
	placesHandler := handler.NewPlacesHandler(searchUC, providerReady, log)

	// 8. Initialize HTTP server
	server := httpDelivery.NewServer(cfg, log, intelligenceHandler, placesHandler)

	log.Info("HTTP server initialized")

	// 9. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 10. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
