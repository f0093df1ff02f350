package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on top of a go-redis client. The client
// multiplexes over an internal connection pool, so sharing one RedisStore
// across hundreds of workers is the intended usage.
type RedisStore struct {
	client *redis.Client
}

// OpenRedis parses a redis:// URL, connects, and verifies the connection
// with a ping.
func OpenRedis(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL %q: %w", url, err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cannot connect to redis at %s: %w", opts.Addr, err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) GetFields(ctx context.Context, key string) (map[string]string, error) {
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}
	return fields, nil
}

func (s *RedisStore) GetValue(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return val, true, nil
}

func (s *RedisStore) SetValue(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) SetFields(ctx context.Context, key string, fields map[string]string) error {
	if err := s.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Pipeline exposes batched writes for the seeder. Wrapping the go-redis
// pipeliner keeps the redis import contained to this package.
func (s *RedisStore) Pipeline(ctx context.Context, fn func(p Pipeliner) error) error {
	pipe := s.client.Pipeline()
	if err := fn(redisPipeliner{ctx: ctx, pipe: pipe}); err != nil {
		return err
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline exec: %w", err)
	}
	return nil
}

type redisPipeliner struct {
	ctx  context.Context
	pipe redis.Pipeliner
}

func (p redisPipeliner) SetFields(key string, fields map[string]string) {
	p.pipe.HSet(p.ctx, key, fields)
}

func (p redisPipeliner) SetValue(key, value string, ttl time.Duration) {
	p.pipe.Set(p.ctx, key, value, ttl)
}
