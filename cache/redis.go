package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 5 * time.Second

// Redis is a Cache backed by a Redis hash per key: the value and its
// generation timestamp live side by side so Get can report staleness.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to Redis and verifies connectivity.
func NewRedis(addr, password string, db int, prefix string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &Redis{client: client, prefix: prefix}, nil
}

func (r *Redis) Get(key string) (string, time.Time, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	fields, err := r.client.HGetAll(ctx, r.prefix+key).Result()
	if err != nil || len(fields) == 0 {
		return "", time.Time{}, false
	}

	value, ok := fields["value"]
	if !ok {
		return "", time.Time{}, false
	}
	generatedAt, err := time.Parse(time.RFC3339, fields["generated_at"])
	if err != nil {
		generatedAt = time.Time{}
	}
	return value, generatedAt, true
}

func (r *Redis) Put(key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	r.client.HSet(ctx, r.prefix+key, map[string]interface{}{
		"value":        value,
		"generated_at": time.Now().Format(time.RFC3339),
	})
}

// Close releases the underlying Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
