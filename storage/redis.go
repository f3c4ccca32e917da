package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 5 * time.Second

// Redis is a Backend that stores each document as a Redis hash, one hash
// field per document field.
type Redis struct {
	client *redis.Client
	prefix string
}

// RedisConfig configures the Redis backend connection.
type RedisConfig struct {
	Addr     string // e.g. localhost:6379
	Password string
	DB       int
	Prefix   string // optional key namespace
}

// NewRedis connects to Redis and verifies connectivity.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &Redis{client: client, prefix: cfg.Prefix}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (Document, bool, error) {
	fields, err := r.client.HGetAll(ctx, r.prefix+key).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if len(fields) == 0 {
		return nil, false, nil
	}
	return Document(fields), true, nil
}

func (r *Redis) Put(ctx context.Context, key string, doc Document, sizeLimit int) error {
	if err := checkFieldSizes(doc, sizeLimit); err != nil {
		return err
	}

	// Replace the whole hash so stale chunk fields from a previous,
	// larger write do not survive.
	fields := make(map[string]interface{}, len(doc))
	for field, value := range doc {
		fields[field] = value
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.prefix+key)
	pipe.HSet(ctx, r.prefix+key, fields)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis put %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
