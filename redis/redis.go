// Package redis caches the badge catalog in Redis. The catalog is small and
// changes only on seeding, so it is stored as a single JSON value with a TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hoed/wisata-ai/badge"
)

// Redis provides caching in Redis.
type Redis struct {
	cli *redis.Client
}

// Connect connects to the Redis server and pings the server to ensure the
// connection is working.
func Connect(ctx context.Context, addr string) (*Redis, error) {
	cli := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{
		cli: cli,
	}, nil
}

const (
	catalogKey = "badges:catalog"
	catalogTTL = 10 * time.Minute
)

// ListBadges returns the cached badge catalog. A cache miss yields an empty
// slice and no error; the caller falls back to the database.
func (r *Redis) ListBadges(ctx context.Context) ([]badge.Badge, error) {
	val, err := r.cli.Get(ctx, catalogKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}

	var rows []cacheBadge
	if err := json.Unmarshal([]byte(val), &rows); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	out := make([]badge.Badge, len(rows))
	for i, row := range rows {
		out[i] = row.Badge()
	}
	return out, nil
}

// SetBadges stores the badge catalog with a TTL, replacing any previous
// value.
func (r *Redis) SetBadges(ctx context.Context, badges []badge.Badge) error {
	rows := make([]cacheBadge, len(badges))
	for i, b := range badges {
		rows[i] = newCacheBadge(b)
	}

	val, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := r.cli.Set(ctx, catalogKey, val, catalogTTL).Err(); err != nil {
		return fmt.Errorf("set: %w", err)
	}
	return nil
}
