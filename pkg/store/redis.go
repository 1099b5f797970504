package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces the per-record hashes.
const DefaultRedisPrefix = "metabox"

// Redis keeps each record in a hash named "<prefix>:<record id>".
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption customises the Redis store.
type RedisOption func(*Redis)

// WithRedisPrefix overrides the hash key prefix.
func WithRedisPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		if trimmed := strings.Trim(strings.TrimSpace(prefix), ":"); trimmed != "" {
			r.prefix = trimmed
		}
	}
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{client: client, prefix: DefaultRedisPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// OpenRedis parses a redis:// URL and connects.
func OpenRedis(ctx context.Context, rawURL string, opts ...RedisOption) (*Redis, error) {
	options, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("store: parse redis url: %w", err)
	}
	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("store: ping redis: %w", err)
	}
	return NewRedis(client, opts...), nil
}

func (r *Redis) hashKey(recordID string) string {
	return r.prefix + ":" + recordID
}

func (r *Redis) Get(ctx context.Context, recordID, key string) (string, bool, error) {
	if err := checkRecord(recordID); err != nil {
		return "", false, err
	}
	value, err := r.client.HGet(ctx, r.hashKey(recordID), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: redis get %q: %w", key, err)
	}
	return value, true, nil
}

func (r *Redis) GetAll(ctx context.Context, recordID string, keys []string) (map[string]string, error) {
	if err := checkRecord(recordID); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	values, err := r.client.HMGet(ctx, r.hashKey(recordID), keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("store: redis get all: %w", err)
	}
	for idx, raw := range values {
		if raw == nil || idx >= len(keys) {
			continue
		}
		out[keys[idx]] = fmt.Sprint(raw)
	}
	return out, nil
}

// SetMany writes the batch inside MULTI/EXEC.
func (r *Redis) SetMany(ctx context.Context, recordID string, values map[string]string) error {
	if err := checkRecord(recordID); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	fields := make(map[string]any, len(values))
	for key, value := range values {
		fields[key] = value
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.hashKey(recordID), fields)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: redis set many: %w", err)
	}
	return nil
}
