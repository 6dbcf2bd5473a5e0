package config

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"todoapi/pkg/tracing"
)

// limiterStore counts requests per key inside a fixed window. Two backends
// exist: an in-process go-cache store and a Redis store for deployments
// with more than one instance.
type limiterStore interface {
	Incr(key string, window time.Duration) (count int, resetTime time.Time, err error)
}

type memoryStore struct {
	cache *cache.Cache
	mutex sync.Mutex
}

type memoryEntry struct {
	Count     int
	ResetTime time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{cache: cache.New(5*time.Minute, 10*time.Minute)}
}

func (s *memoryStore) Incr(key string, window time.Duration) (int, time.Time, error) {
	now := time.Now()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if raw, found := s.cache.Get(key); found {
		entry := raw.(memoryEntry)

		if now.Before(entry.ResetTime) {
			entry.Count++
			s.cache.Set(key, entry, time.Until(entry.ResetTime))
			return entry.Count, entry.ResetTime, nil
		}
	}

	entry := memoryEntry{Count: 1, ResetTime: now.Add(window)}
	s.cache.Set(key, entry, window)

	return 1, entry.ResetTime, nil
}

type redisStore struct {
	client *redis.Client
}

func newRedisStore(url string) (*redisStore, error) {
	opts, err := redis.ParseURL(url)

	if err != nil {
		return nil, err
	}

	return &redisStore{client: redis.NewClient(opts)}, nil
}

func (s *redisStore) Incr(key string, window time.Duration) (int, time.Time, error) {
	ctx := context.Background()

	count, err := s.client.Incr(ctx, key).Result()

	if err != nil {
		return 0, time.Time{}, err
	}

	if count == 1 {
		s.client.Expire(ctx, key, window)
	}

	ttl, err := s.client.TTL(ctx, key).Result()

	if err != nil || ttl < 0 {
		ttl = window
	}

	return int(count), time.Now().Add(ttl), nil
}

type RateLimiter struct {
	store   limiterStore
	config  map[string]RateLimitConfig
	logger  *zap.Logger
	metrics *tracing.AppMetrics
}

func NewRateLimiter(logger *zap.Logger, metrics *tracing.AppMetrics, appConfig *AppConfig) *RateLimiter {
	var store limiterStore

	if url := os.Getenv("REDIS_URL"); url != "" {
		redisBacked, err := newRedisStore(url)

		if err == nil {
			store = redisBacked
		} else {
			logger.Warn("Redis rate limit store unavailable, using in-process store", zap.Error(err))
		}
	}

	if store == nil {
		store = newMemoryStore()
	}

	configs := map[string]RateLimitConfig{
		"default": {
			Requests: 60,
			Window:   time.Minute,
		},
	}

	if appConfig != nil {
		for path, cfg := range appConfig.RateLimitConfigs {
			configs[path] = cfg
		}
	}

	return &RateLimiter{
		store:   store,
		config:  configs,
		logger:  logger,
		metrics: metrics,
	}
}

func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = rl.normalizePath(c.Request.URL.Path)
		}

		config, exists := rl.config[path]
		if !exists {
			config = rl.config["default"]
		}

		key, keyType := rl.generateKey(c, path)

		count, resetTime, err := rl.store.Incr(key, config.Window)
		if err != nil {
			rl.logger.Error("Rate limit check failed",
				zap.String("key", key),
				zap.String("path", path),
				zap.Error(err))
			c.Next()
			return
		}

		remaining := config.Requests - count
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if count > config.Requests {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(c.Request.Context(), path, keyType)
			}

			rl.logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.String("path", path),
				zap.Int("limit", config.Requests),
				zap.Duration("window", config.Window))

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"message":     fmt.Sprintf("Too many requests. Limit: %d per %v", config.Requests, config.Window),
				"retry_after": int(time.Until(resetTime).Seconds()),
			})
			c.Abort()
			return
		}

		if rl.metrics != nil {
			rl.metrics.RecordRateLimitAllowed(c.Request.Context(), path, keyType)
		}

		c.Next()
	}
}

func (rl *RateLimiter) normalizePath(path string) string {
	if strings.HasPrefix(path, "/todos/") {
		parts := strings.Split(path, "/")
		if len(parts) >= 3 && parts[2] != "completed" && parts[2] != "pending" {
			parts[2] = ":id"
			return strings.Join(parts, "/")
		}
	}
	return path
}

func (rl *RateLimiter) generateKey(c *gin.Context, path string) (string, string) {
	if ownerID := c.GetString("x-owner-id"); ownerID != "" {
		return fmt.Sprintf("rate_limit:%s:owner_%s", path, ownerID), "owner"
	}

	return fmt.Sprintf("rate_limit:%s:%s", path, c.ClientIP()), "ip"
}

func (rl *RateLimiter) SetConfig(path string, config RateLimitConfig) {
	rl.config[path] = config
}
