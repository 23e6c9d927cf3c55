package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dradcheenko/weblarek/internal/domain/catalog"
)

const productListKey = "catalog:products"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisProductCache stores the product list as a JSON value with a TTL, so
// several storefront instances share one fallback copy.
type RedisProductCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisProductCache connects to Redis and checks the connection
func NewRedisProductCache(ctx context.Context, cfg RedisConfig, ttl time.Duration) (*RedisProductCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisProductCacheWithClient(client, cfg.KeyPrefix, ttl), nil
}

// NewRedisProductCacheWithClient wraps an existing client
func NewRedisProductCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisProductCache {
	return &RedisProductCache{
		client: client,
		key:    keyPrefix + productListKey,
		ttl:    ttl,
	}
}

// Load reads and decodes the cached list
func (c *RedisProductCache) Load(ctx context.Context) (catalog.ProductList, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return catalog.ProductList{}, false, nil
	}
	if err != nil {
		return catalog.ProductList{}, false, fmt.Errorf("failed to read cached products: %w", err)
	}

	var list catalog.ProductList
	if err := json.Unmarshal(data, &list); err != nil {
		return catalog.ProductList{}, false, fmt.Errorf("failed to decode cached products: %w", err)
	}
	if list.Items == nil {
		list.Items = []catalog.Product{}
	}
	return list, true, nil
}

// Store encodes the list and writes it with the configured TTL
func (c *RedisProductCache) Store(ctx context.Context, list catalog.ProductList) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode products: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache products: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisProductCache) Close() error {
	return c.client.Close()
}

var _ ProductCache = (*RedisProductCache)(nil)
