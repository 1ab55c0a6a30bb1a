package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/storefront/internal/core/domain"
)

const (
	catalogKey            = "catalog:inventory"
	defaultCatalogTTL     = 30 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
)

type RedisAdapter struct {
	client         *redis.Client
	catalogTTL     time.Duration
	idempotencyTTL time.Duration
}

// NewRedisAdapter falls back to the default TTLs when a TTL is not positive.
func NewRedisAdapter(client *redis.Client, catalogTTL, idempotencyTTL time.Duration) *RedisAdapter {
	if catalogTTL <= 0 {
		catalogTTL = defaultCatalogTTL
	}
	if idempotencyTTL <= 0 {
		idempotencyTTL = defaultIdempotencyTTL
	}
	return &RedisAdapter{client: client, catalogTTL: catalogTTL, idempotencyTTL: idempotencyTTL}
}

func (r *RedisAdapter) GetCatalog(ctx context.Context) ([]domain.InventoryItem, bool, error) {
	data, err := r.client.Get(ctx, catalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, domain.NewStoreError("redis get catalog", err)
	}

	var items []domain.InventoryItem
	if err := json.Unmarshal(data, &items); err != nil {
		// A payload we cannot read is a miss; the next SetCatalog overwrites it.
		return nil, false, nil
	}
	return items, true, nil
}

func (r *RedisAdapter) SetCatalog(ctx context.Context, items []domain.InventoryItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, catalogKey, data, r.catalogTTL).Err(); err != nil {
		return domain.NewStoreError("redis set catalog", err)
	}
	return nil
}

func (r *RedisAdapter) InvalidateCatalog(ctx context.Context) error {
	if err := r.client.Del(ctx, catalogKey).Err(); err != nil {
		return domain.NewStoreError("redis invalidate catalog", err)
	}
	return nil
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, r.idempotencyTTL).Result()
	if err != nil {
		return false, domain.NewStoreError("redis setnx", err)
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return domain.NewStoreError("redis del", err)
	}
	return nil
}

func (r *RedisAdapter) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return domain.NewStoreError("redis ping", err)
	}
	return nil
}
