package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/siteintel-service/internal/config"
	"github.com/siteintel-service/internal/domain"
	"github.com/siteintel-service/internal/domain/repository"
)

// expiryIndexKey - ZSET с ward-ключами, score = unix-время истечения.
// Индекс дает вытеснение самой ранней по истечению записи при переполнении.
const expiryIndexKey = "ward:expiry_index"

type intelCacheRepository struct {
	client     *redis.Client
	logger     *zap.Logger
	ttl        time.Duration
	maxEntries int
}

// NewIntelCacheRepository создает ward-уровень кеша поверх Redis
func NewIntelCacheRepository(redis *Redis, cfg *config.CacheConfig) repository.IntelCacheRepository {
	return &intelCacheRepository{
		client:     redis.Client(),
		logger:     redis.logger,
		ttl:        cfg.WardTTL,
		maxEntries: cfg.WardMaxEntries,
	}
}

// GetWard возвращает агрегат по ward-ключу. Любая ошибка хранилища или
// поврежденная запись трактуется как промах.
func (r *intelCacheRepository) GetWard(ctx context.Context, wardKey string) (*domain.AggregatedIntel, error) {
	val, err := r.client.Get(ctx, wardKey).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Warn("Ward cache read failed, treating as miss",
			zap.String("key", wardKey), zap.Error(err))
		return nil, nil
	}

	var intel domain.AggregatedIntel
	if err := json.Unmarshal(val, &intel); err != nil {
		// Поврежденная запись - удаляем и считаем промахом
		r.logger.Warn("Malformed ward cache payload, dropping entry",
			zap.String("key", wardKey), zap.Error(err))
		r.client.Del(ctx, wardKey)
		r.client.ZRem(ctx, expiryIndexKey, wardKey)
		return nil, nil
	}

	r.logger.Debug("Ward cache hit", zap.String("key", wardKey))
	return &intel, nil
}

// SetWard сохраняет агрегат с TTL. Ошибки записи логируются и не всплывают:
// ward-кеш - оптимизация, а не источник корректности.
func (r *intelCacheRepository) SetWard(ctx context.Context, wardKey string, intel *domain.AggregatedIntel) error {
	data, err := json.Marshal(intel)
	if err != nil {
		r.logger.Error("Failed to marshal aggregated intel", zap.Error(err))
		return nil
	}

	if err := r.evictIfFull(ctx); err != nil {
		r.logger.Warn("Ward cache eviction failed", zap.Error(err))
	}

	expiresAt := time.Now().Add(r.ttl)

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, wardKey, data, r.ttl)
	pipe.ZAdd(ctx, expiryIndexKey, redis.Z{
		Score:  float64(expiresAt.Unix()),
		Member: wardKey,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Warn("Ward cache write failed, ignoring",
			zap.String("key", wardKey), zap.Error(err))
		return nil
	}

	r.logger.Debug("Ward cache set",
		zap.String("key", wardKey), zap.Duration("ttl", r.ttl))
	return nil
}

// evictIfFull вытесняет записи с самым ранним expiresAt, пока число записей
// не станет меньше лимита. Попутно чистит индекс от уже истекших ключей.
func (r *intelCacheRepository) evictIfFull(ctx context.Context) error {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	r.client.ZRemRangeByScore(ctx, expiryIndexKey, "-inf", "("+now)

	count, err := r.client.ZCard(ctx, expiryIndexKey).Result()
	if err != nil {
		return err
	}

	for count >= int64(r.maxEntries) {
		members, err := r.client.ZPopMin(ctx, expiryIndexKey, 1).Result()
		if err != nil || len(members) == 0 {
			return err
		}

		evicted, _ := members[0].Member.(string)
		if evicted != "" {
			r.client.Del(ctx, evicted)
			r.logger.Debug("Ward cache earliest-expiry eviction",
				zap.String("key", evicted))
		}
		count--
	}

	return nil
}
