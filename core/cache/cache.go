package cache

import (
	"context"
	"encoding/json"

	"wedsync-api/core/config"
	"wedsync-api/core/constants"
	"wedsync-api/core/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache covers the redis-backed concerns shared across modules: the
// best-effort per-tenant sync-run lock and the cached sync status shown
// on the calendar status endpoint.
type Cache interface {
	AcquireSyncLock(ctx context.Context, tenantID uuid.UUID) (bool, error)
	ReleaseSyncLock(ctx context.Context, tenantID uuid.UUID) error
	SetSyncStatus(ctx context.Context, tenantID uuid.UUID, status any) error
	GetSyncStatus(ctx context.Context, tenantID uuid.UUID, dest any) (bool, error)
	Close() error
}

type redisCache struct {
	client *redis.Client
}

func NewCache(cfg config.RedisConfig) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	logger.Info("Cache:Init:Success", "addr", cfg.Addr)
	return &redisCache{client: client}, nil
}

// AcquireSyncLock is best-effort: overlapping runs are tolerated by the
// sync engine, the lock only cuts down redundant provider traffic.
func (c *redisCache) AcquireSyncLock(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	key := constants.RedisKeySyncLock + tenantID.String()
	return c.client.SetNX(ctx, key, "1", constants.SyncLockTTL).Result()
}

func (c *redisCache) ReleaseSyncLock(ctx context.Context, tenantID uuid.UUID) error {
	key := constants.RedisKeySyncLock + tenantID.String()
	return c.client.Del(ctx, key).Err()
}

func (c *redisCache) SetSyncStatus(ctx context.Context, tenantID uuid.UUID, status any) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return err
	}
	key := constants.RedisKeySyncStatus + tenantID.String()
	return c.client.Set(ctx, key, payload, constants.SyncStatusTTL).Err()
}

func (c *redisCache) GetSyncStatus(ctx context.Context, tenantID uuid.UUID, dest any) (bool, error) {
	key := constants.RedisKeySyncStatus + tenantID.String()
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(payload, dest)
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
