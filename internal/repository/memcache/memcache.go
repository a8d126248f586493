package memcache

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/siteintel-service/internal/domain"
)

type entry struct {
	data         []domain.POIRecord
	expiresAt    time.Time
	lastAccessed time.Time
}

// Cache - внутрипроцессный кеш полных записей POI с коротким TTL.
// Емкость ограничена, вытеснение - по давности последнего обращения (LRU).
// Fetch дедуплицирует конкурентные промахи по одному ключу через singleflight.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	flight     singleflight.Group
	logger     *zap.Logger
}

// New создает кеш с заданным TTL и лимитом записей
func New(ttl time.Duration, maxEntries int, logger *zap.Logger) *Cache {
	return NewWithClock(ttl, maxEntries, logger, time.Now)
}

// NewWithClock создает кеш с инжектированными часами (для тестов)
func NewWithClock(ttl time.Duration, maxEntries int, logger *zap.Logger, now func() time.Time) *Cache {
	return &Cache{
		entries:    make(map[string]*entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        now,
		logger:     logger,
	}
}

// Get возвращает записи по ключу. Истекшая запись удаляется при чтении,
// попадание обновляет lastAccessed.
func (c *Cache) Get(key string) ([]domain.POIRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if !c.now().Before(e.expiresAt) {
		// Expired - evict on read
		delete(c.entries, key)
		c.logger.Debug("Memory cache entry expired", zap.String("key", key))
		return nil, false
	}

	e.lastAccessed = c.now()
	return e.data, true
}

// Set сохраняет записи с expiresAt = now + TTL. При достижении лимита
// вытесняется запись с самым старым lastAccessed, а не самая старая по
// времени вставки.
func (c *Cache) Set(key string, data []domain.POIRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLRU()
	}

	now := c.now()
	c.entries[key] = &entry{
		data:         data,
		expiresAt:    now.Add(c.ttl),
		lastAccessed: now,
	}
}

// evictLRU удаляет наименее недавно использованную запись. Вызывается под mu.
func (c *Cache) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time

	for key, e := range c.entries {
		if oldestKey == "" || e.lastAccessed.Before(oldestAccess) {
			oldestKey = key
			oldestAccess = e.lastAccessed
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.logger.Debug("Memory cache LRU eviction", zap.String("key", oldestKey))
	}
}

// Fetch возвращает значение из кеша или выполняет fn, дедуплицируя
// конкурентные запросы по одному ключу: пока запрос в полете, все
// вызывающие получают один и тот же результат одного вызова fn.
// Запись о полете снимается при завершении независимо от исхода.
func (c *Cache) Fetch(key string, fn func() ([]domain.POIRecord, error)) ([]domain.POIRecord, error) {
	if data, ok := c.Get(key); ok {
		return data, nil
	}

	v, err, shared := c.flight.Do(key, func() (interface{}, error) {
		// Повторная проверка: другой вызов мог успеть заполнить кеш
		if data, ok := c.Get(key); ok {
			return data, nil
		}

		data, err := fn()
		if err != nil {
			return nil, err
		}

		c.Set(key, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		c.logger.Debug("Deduplicated in-flight fetch", zap.String("key", key))
	}

	return v.([]domain.POIRecord), nil
}

// Len возвращает текущее число записей
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
