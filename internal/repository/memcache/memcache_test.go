package memcache

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/siteintel-service/internal/domain"
)

func testRecords(ids ...string) []domain.POIRecord {
	records := make([]domain.POIRecord, 0, len(ids))
	for _, id := range ids {
		records = append(records, domain.POIRecord{ID: id, DisplayName: "Place " + id})
	}
	return records
}

func TestCache_GetSet(t *testing.T) {
	logger := zap.NewNop()

	t.Run("miss on empty cache", func(t *testing.T) {
		c := New(10*time.Minute, 50, logger)
		_, ok := c.Get("missing")
		assert.False(t, ok)
	})

	t.Run("hit within TTL", func(t *testing.T) {
		c := New(10*time.Minute, 50, logger)
		c.Set("key", testRecords("a", "b"))

		data, ok := c.Get("key")
		require.True(t, ok)
		assert.Len(t, data, 2)
		assert.Equal(t, "a", data[0].ID)
	})

	t.Run("expired entry is evicted on read", func(t *testing.T) {
		now := time.Now()
		c := NewWithClock(5*time.Minute, 50, logger, func() time.Time { return now })

		c.Set("key", testRecords("a"))

		// Сдвигаем часы за TTL
		now = now.Add(6 * time.Minute)

		_, ok := c.Get("key")
		assert.False(t, ok)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("read at exact expiry is a miss", func(t *testing.T) {
		now := time.Now()
		c := NewWithClock(5*time.Minute, 50, logger, func() time.Time { return now })

		c.Set("key", testRecords("a"))
		now = now.Add(5 * time.Minute)

		_, ok := c.Get("key")
		assert.False(t, ok)
	})
}

func TestCache_LRUEviction(t *testing.T) {
	logger := zap.NewNop()

	t.Run("evicts least recently accessed, not oldest inserted", func(t *testing.T) {
		now := time.Now()
		c := NewWithClock(10*time.Minute, 3, logger, func() time.Time { return now })

		c.Set("a", testRecords("a"))
		now = now.Add(time.Second)
		c.Set("b", testRecords("b"))
		now = now.Add(time.Second)
		c.Set("c", testRecords("c"))
		now = now.Add(time.Second)

		// Трогаем старейшую по вставке запись - теперь LRU это "b"
		_, ok := c.Get("a")
		require.True(t, ok)
		now = now.Add(time.Second)

		c.Set("d", testRecords("d"))

		_, ok = c.Get("a")
		assert.True(t, ok, "recently read entry must survive")
		_, ok = c.Get("b")
		assert.False(t, ok, "least recently accessed entry must be evicted")
		_, ok = c.Get("c")
		assert.True(t, ok)
		_, ok = c.Get("d")
		assert.True(t, ok)
		assert.Equal(t, 3, c.Len())
	})

	t.Run("overwriting existing key does not evict", func(t *testing.T) {
		c := New(10*time.Minute, 2, zap.NewNop())
		c.Set("a", testRecords("a"))
		c.Set("b", testRecords("b"))
		c.Set("a", testRecords("a2"))

		assert.Equal(t, 2, c.Len())
		data, ok := c.Get("b")
		require.True(t, ok)
		assert.Equal(t, "b", data[0].ID)
	})
}

func TestCache_Fetch(t *testing.T) {
	logger := zap.NewNop()

	t.Run("concurrent fetches share one factory call", func(t *testing.T) {
		c := New(10*time.Minute, 50, logger)

		var calls atomic.Int32
		factory := func() ([]domain.POIRecord, error) {
			calls.Add(1)
			time.Sleep(300 * time.Millisecond)
			return testRecords("x", "y"), nil
		}

		var wg sync.WaitGroup
		results := make([][]domain.POIRecord, 2)
		errs := make([]error, 2)

		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = c.Fetch("shared", factory)
			}(i)
			// Второй вызов стартует, пока первый еще в полете
			time.Sleep(50 * time.Millisecond)
		}
		wg.Wait()

		require.NoError(t, errs[0])
		require.NoError(t, errs[1])
		assert.Equal(t, int32(1), calls.Load(), "factory must be invoked exactly once")

		// Оба вызывающих получают один и тот же результат
		require.NotEmpty(t, results[0])
		require.NotEmpty(t, results[1])
		assert.Same(t, &results[0][0], &results[1][0])
	})

	t.Run("factory error is not cached", func(t *testing.T) {
		c := New(10*time.Minute, 50, logger)

		var calls atomic.Int32
		failing := func() ([]domain.POIRecord, error) {
			calls.Add(1)
			return nil, fmt.Errorf("provider down")
		}

		_, err := c.Fetch("key", failing)
		require.Error(t, err)

		// После ошибки запись о полете снята - повторный вызов идет в фабрику
		_, err = c.Fetch("key", failing)
		require.Error(t, err)
		assert.Equal(t, int32(2), calls.Load())
		assert.Equal(t, 0, c.Len())
	})

	t.Run("cache hit skips factory", func(t *testing.T) {
		c := New(10*time.Minute, 50, logger)

		var calls atomic.Int32
		factory := func() ([]domain.POIRecord, error) {
			calls.Add(1)
			return testRecords("x"), nil
		}

		_, err := c.Fetch("key", factory)
		require.NoError(t, err)
		_, err = c.Fetch("key", factory)
		require.NoError(t, err)

		assert.Equal(t, int32(1), calls.Load())
	})
}
