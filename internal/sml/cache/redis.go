package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"smpadmin/internal/sml/models"
	"smpadmin/pkg/platform/sentinel"
)

const capabilityKeyPrefix = "smp:capabilities:"

// Redis shares cached capabilities between instances. The client lifecycle
// is managed by the caller.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) (*models.Capabilities, bool, error) {
	raw, err := r.client.Get(ctx, capabilityKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached capabilities: %w: %w", sentinel.ErrUnavailable, err)
	}
	var caps models.Capabilities
	if err := json.Unmarshal(raw, &caps); err != nil {
		return nil, false, fmt.Errorf("decode cached capabilities: %w", err)
	}
	return &caps, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value models.Capabilities) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode capabilities: %w", err)
	}
	if err := r.client.Set(ctx, capabilityKeyPrefix+key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("cache capabilities: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

// Invalidate drops key, or every cached capability set when key is empty.
func (r *Redis) Invalidate(ctx context.Context, key string) error {
	if key != "" {
		return r.client.Del(ctx, capabilityKeyPrefix+key).Err()
	}
	iter := r.client.Scan(ctx, 0, capabilityKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cached capabilities: %w: %w", sentinel.ErrUnavailable, err)
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}
