package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisSlot stores values as plain redis strings.
type RedisSlot struct {
	client *redis.Client
}

// RedisOptions configures a RedisSlot.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration
}

// OpenRedisSlot connects to redis and verifies the connection with PING.
func OpenRedisSlot(ctx context.Context, opts RedisOptions) (*RedisSlot, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.Timeout,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisSlot{client: client}, nil
}

func (s *RedisSlot) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read slot: %w", err)
	}
	return v, nil
}

func (s *RedisSlot) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write slot: %w", err)
	}
	return nil
}

// CompareAndSwap uses WATCH/MULTI so the write aborts if another client
// touches key between the comparison and EXEC.
func (s *RedisSlot) CompareAndSwap(ctx context.Context, key string, old *string, value string) error {
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		found := true
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				return err
			}
			found = false
		}
		if !matches(current, found, old) {
			return ErrConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, value, 0)
			return nil
		})
		return err
	}, key)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrConflict), errors.Is(err, redis.TxFailedErr):
		return ErrConflict
	default:
		return fmt.Errorf("failed to swap slot: %w", err)
	}
}

func (s *RedisSlot) Close() error {
	return s.client.Close()
}
