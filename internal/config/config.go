package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	Redis  RedisConfig
	Places PlacesConfig
	Cache  CacheConfig
	Log    LogConfig
	Worker WorkerConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// PlacesConfig - настройки клиента внешнего провайдера POI
type PlacesConfig struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	CategoryTimeout time.Duration
	RatePerSecond   float64
	RateBurst       int
	Strategy        string // "single" или "multizone"
	MaxResultCount  int
}

// CacheConfig - настройки двухуровневого кеша POI
type CacheConfig struct {
	MemoryTTL        time.Duration
	MemoryMaxEntries int
	WardTTL          time.Duration
	WardMaxEntries   int
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled       bool
	ConsumerGroup string
	Stream        string
	MaxRetries    int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// .env не обязателен - конфигурация может прийти из окружения
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Places: PlacesConfig{
			APIKey:          viper.GetString("PLACES_API_KEY"),
			BaseURL:         viper.GetString("PLACES_BASE_URL"),
			RequestTimeout:  time.Duration(viper.GetInt("PLACES_REQUEST_TIMEOUT")) * time.Second,
			CategoryTimeout: time.Duration(viper.GetInt("PLACES_CATEGORY_TIMEOUT")) * time.Second,
			RatePerSecond:   viper.GetFloat64("PLACES_RATE_PER_SECOND"),
			RateBurst:       viper.GetInt("PLACES_RATE_BURST"),
			Strategy:        viper.GetString("PLACES_STRATEGY"),
			MaxResultCount:  viper.GetInt("PLACES_MAX_RESULT_COUNT"),
		},
		Cache: CacheConfig{
			MemoryTTL:        time.Duration(viper.GetInt("CACHE_MEMORY_TTL")) * time.Second,
			MemoryMaxEntries: viper.GetInt("CACHE_MEMORY_MAX_ENTRIES"),
			WardTTL:          time.Duration(viper.GetInt("CACHE_WARD_TTL")) * time.Second,
			WardMaxEntries:   viper.GetInt("CACHE_WARD_MAX_ENTRIES"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:       viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup: viper.GetString("WORKER_CONSUMER_GROUP"),
			Stream:        viper.GetString("WORKER_STREAM"),
			MaxRetries:    viper.GetInt("WORKER_MAX_RETRIES"),
		},
	}

	// Set default values if not provided
	if cfg.Places.BaseURL == "" {
		cfg.Places.BaseURL = "https://places.googleapis.com/v1"
	}
	if cfg.Places.RequestTimeout == 0 {
		cfg.Places.RequestTimeout = 10 * time.Second
	}
	if cfg.Places.CategoryTimeout == 0 {
		cfg.Places.CategoryTimeout = 8 * time.Second
	}
	if cfg.Places.RatePerSecond == 0 {
		cfg.Places.RatePerSecond = 10
	}
	if cfg.Places.RateBurst == 0 {
		cfg.Places.RateBurst = 10
	}
	if cfg.Places.Strategy == "" {
		cfg.Places.Strategy = "single"
	}
	if cfg.Places.MaxResultCount == 0 {
		cfg.Places.MaxResultCount = 20
	}
	if cfg.Cache.MemoryTTL == 0 {
		cfg.Cache.MemoryTTL = 10 * time.Minute
	}
	if cfg.Cache.MemoryMaxEntries == 0 {
		cfg.Cache.MemoryMaxEntries = 50
	}
	if cfg.Cache.WardTTL == 0 {
		cfg.Cache.WardTTL = 6 * time.Hour
	}
	if cfg.Cache.WardMaxEntries == 0 {
		cfg.Cache.WardMaxEntries = 200
	}
	if cfg.Worker.ConsumerGroup == "" {
		cfg.Worker.ConsumerGroup = "siteintel-prewarm-workers"
	}
	if cfg.Worker.Stream == "" {
		cfg.Worker.Stream = "siteintel:stream:prewarm"
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}

	return cfg, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
