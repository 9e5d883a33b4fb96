package prices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/redis/go-redis/v9"
)

// Cache хранит последние полученные котировки. Нулевые цены не кэшируются.
type Cache interface {
	Get(ctx context.Context, key string) (float64, bool)
	Set(ctx context.Context, key string, price float64)
}

type NopCache struct{}

func (NopCache) Get(context.Context, string) (float64, bool) { return 0, false }

func (NopCache) Set(context.Context, string, float64) {}

// MemoryCache - кэш в памяти процесса на базе ristretto.
type MemoryCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewMemoryCache создает кэш котировок в памяти процесса.
func NewMemoryCache(ttl time.Duration) (*MemoryCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create price cache: %w", err)
	}

	return &MemoryCache{cache: cache, ttl: ttl}, nil
}

func (c *MemoryCache) Get(_ context.Context, key string) (float64, bool) {
	value, ok := c.cache.Get(key)
	if !ok {
		return 0, false
	}
	price, ok := value.(float64)
	return price, ok
}

func (c *MemoryCache) Set(_ context.Context, key string, price float64) {
	c.cache.SetWithTTL(key, price, 1, c.ttl)
	c.cache.Wait()
}

// Close освобождает ресурсы кэша.
func (c *MemoryCache) Close() {
	c.cache.Close()
}

// RedisCache делит котировки между несколькими экземплярами сервиса.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache подключается к Redis по URL вида redis://host:port/db.
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl, prefix: "finsight:price:"}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (float64, bool) {
	price, err := c.client.Get(ctx, c.prefix+key).Float64()
	if err != nil {
		return 0, false
	}
	return price, true
}

func (c *RedisCache) Set(ctx context.Context, key string, price float64) {
	_ = c.client.Set(ctx, c.prefix+key, price, c.ttl).Err()
}

// Close закрывает соединение с Redis.
func (c *RedisCache) Close() error {
	err := c.client.Close()
	if errors.Is(err, redis.ErrClosed) {
		return nil
	}
	return err
}
