package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the settings record in Redis, for hosts that run the bridge
// server-side and share state between processes.
type RedisStore struct {
	client *redis.Client
	key    string // full redis key, namespaced per device
}

// NewRedisStore connects to redisURL (redis:// or rediss://) and verifies the connection.
// namespace separates devices sharing one Redis; it may be empty.
func NewRedisStore(redisURL, password, namespace string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisStore(rdb, namespace), nil
}

func newRedisStore(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{client: client, key: redisKey(namespace)}
}

func redisKey(namespace string) string {
	if namespace == "" {
		return "bridge:" + StorageKey
	}
	return fmt.Sprintf("bridge:%s:%s", namespace, StorageKey)
}

func (r *RedisStore) Load(ctx context.Context) (*Settings, error) {
	raw, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings from redis: %w", err)
	}
	return decode(raw)
}

func (r *RedisStore) Save(ctx context.Context, s Settings) error {
	raw, err := encode(s)
	if err != nil {
		return err
	}
	// no expiry: settings live as long as the device does
	if err := r.client.Set(ctx, r.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save settings to redis: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
