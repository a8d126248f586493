package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/siteintel-service/internal/config"
	"github.com/siteintel-service/internal/infrastructure/places"
	"github.com/siteintel-service/internal/pkg/logger"
	"github.com/siteintel-service/internal/repository/cache"
	"github.com/siteintel-service/internal/repository/memcache"
	redisRepo "github.com/siteintel-service/internal/repository/redis"
	"github.com/siteintel-service/internal/usecase"
	"github.com/siteintel-service/internal/worker"
	"github.com/siteintel-service/internal/worker/intel"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Intel Prewarm Worker")
	log.Info("Configuration loaded",
		zap.String("stream", cfg.Worker.Stream),
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries))

	if cfg.Places.APIKey == "" {
		log.Fatal("PLACES_API_KEY is required for the prewarm worker")
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

	// 4. Initialize repositories and infrastructure
	placesClient := places.NewPlacesClient(&cfg.Places, log)
	strategy := places.NewStrategy(cfg.Places.Strategy, placesClient, log)
	memCache := memcache.New(cfg.Cache.MemoryTTL, cfg.Cache.MemoryMaxEntries, log)
	intelCacheRepo := cache.NewIntelCacheRepository(redisClient, &cfg.Cache)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	// 5. Initialize use cases
	searchUC := usecase.NewPOISearchUseCase(strategy, placesClient, memCache, log)

	// Воркер не публикует прогрев сам себе - streamRepo в агрегаторе nil
	intelUC := usecase.NewIntelligenceUseCase(
		searchUC,
		intelCacheRepo,
		nil,
		"",
		cfg.Places.CategoryTimeout,
		log,
	)

	// 6. Initialize workers
	prewarmWorker := intel.NewPrewarmWorker(
		streamRepo,
		intelUC,
		cfg.Worker.Stream,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.MaxRetries,
		log,
	)

	// 7. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(prewarmWorker)

	// 8. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker stopped successfully")
}
