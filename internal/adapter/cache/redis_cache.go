package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/olyamironova/mbp-reconstructor/internal/domain"
	"github.com/olyamironova/mbp-reconstructor/internal/port"
)

var _ port.SnapshotCache = (*RedisCache)(nil)

// RedisCache keeps the latest emitted snapshot per symbol in Redis so
// other processes can read the current top of book without replaying
// the stream.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr string, password string, db int, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: rdb, ttl: ttl}
}

func (c *RedisCache) SetLatest(ctx context.Context, symbol string, snap *domain.Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(symbol), b, c.ttl).Err()
}

func (c *RedisCache) GetLatest(ctx context.Context, symbol string) (*domain.Snapshot, error) {
	data, err := c.client.Get(ctx, key(symbol)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func key(symbol string) string {
	return "mbp:latest:" + symbol
}
