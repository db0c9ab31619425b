package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"roomstay/internal/config"
	"roomstay/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisPriceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	client := redis.NewClient(options)

	return client
}

func NewRedisPriceCache(client *redis.Client, ttl time.Duration) *RedisPriceCache {
	return &RedisPriceCache{
		client: client,
		ttl:    ttl,
	}
}

const cacheVersionKey = "price_quote_version"

// version namespaces every quote key. Clear bumps the version instead of
// scanning keys, so stale entries just age out via TTL.
func (r *RedisPriceCache) version(ctx context.Context) (int64, error) {
	val, err := r.client.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get cache version: %w", err)
	}
	return val, nil
}

func (r *RedisPriceCache) Get(ctx context.Context, roomID int64, date string) (*models.PriceQuote, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	ver, err := r.version(ctx)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("price_quote:%d:%d:%s", ver, roomID, date)
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get price quote from redis: %w", err)
	}

	var quote models.PriceQuote
	if err := json.Unmarshal([]byte(val), &quote); err != nil {
		return nil, fmt.Errorf("failed to unmarshal price quote: %w", err)
	}

	return &quote, nil
}

func (r *RedisPriceCache) Set(ctx context.Context, quote *models.PriceQuote) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	ver, err := r.version(ctx)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("price_quote:%d:%d:%s", ver, quote.RoomID, quote.Date)
	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("failed to marshal price quote: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set price quote in redis: %w", err)
	}

	return nil
}

func (r *RedisPriceCache) Clear(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Incr(ctx, cacheVersionKey).Err(); err != nil {
		return fmt.Errorf("failed to bump cache version: %w", err)
	}
	return nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
