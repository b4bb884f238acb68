package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultSnapshotKey = "coursework:ledger:snapshot"

// ConnectRedis configures a Redis client using the supplied URL.
func ConnectRedis(url string) (*redis.Client, error) {
	if url == "" {
		return nil, fmt.Errorf("redis url must not be empty")
	}

	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(options)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	}

	return client, nil
}

// RedisGateway stores snapshots under a single key. One SET replaces the
// whole value, which satisfies the single-process atomicity contract.
type RedisGateway struct {
	client *redis.Client
	key    string
}

// NewRedisGateway constructs a gateway using the given key, falling back to
// the default when empty.
func NewRedisGateway(client *redis.Client, key string) *RedisGateway {
	if key == "" {
		key = defaultSnapshotKey
	}
	return &RedisGateway{client: client, key: key}
}

// Load reads the durable snapshot, returning the initial empty state when
// the key does not exist.
func (g *RedisGateway) Load(ctx context.Context) (Snapshot, error) {
	data, err := g.client.Get(ctx, g.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return NewSnapshot(), nil
		}
		return Snapshot{}, fmt.Errorf("failed to load snapshot key: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot payload: %w", err)
	}
	snapshot.normalize()

	return snapshot, nil
}

// Save replaces the snapshot value.
func (g *RedisGateway) Save(ctx context.Context, snapshot Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := g.client.Set(ctx, g.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	return nil
}
