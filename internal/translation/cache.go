package translation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"virtual-doctor/internal/platform/monitoring"
)

const defaultCacheTTL = 24 * time.Hour

// ErrCacheMiss is returned by Cache.Get when nothing is stored under the key.
var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}

type redisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and checks the connection.
func NewRedisCache(addr, password string) (Cache, error) {
	if !strings.Contains(addr, ":") {
		addr += ":6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisCache{client: client}, nil
}

func (r *redisCache) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("failed to get value from Redis: %w", err)
	}
	return val, nil
}

func (r *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCache) Close() error {
	return r.client.Close()
}

// cachedBackend is a read-through cache in front of another Backend. Cache
// failures are logged and the call goes straight to the backend.
type cachedBackend struct {
	next   Backend
	cache  Cache
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewCachedBackend(next Backend, cache Cache, logger *zap.SugaredLogger) Backend {
	return &cachedBackend{next: next, cache: cache, ttl: defaultCacheTTL, logger: logger}
}

func (c *cachedBackend) Translate(ctx context.Context, text, source, target string) (string, error) {
	key := cacheKey(text, source, target)

	cached, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		monitoring.ObserveBackendCall("translation_cache", monitoring.OutcomeCacheHit, time.Time{})
		return cached, nil
	case !errors.Is(err, ErrCacheMiss):
		c.logger.Warnw("translation cache read failed", "error", err)
	}

	out, err := c.next.Translate(ctx, text, source, target)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) != "" {
		if err := c.cache.Set(ctx, key, out, c.ttl); err != nil {
			c.logger.Warnw("translation cache write failed", "error", err)
		}
	}
	return out, nil
}

func cacheKey(text, source, target string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("translation:%s:%s:%s", strings.ToLower(source), strings.ToLower(target), hex.EncodeToString(sum[:]))
}
