package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "jobsignal:seen:"

// RedisOptions configures the shared ledger.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// TTL expires ledger keys; zero keeps them forever.
	TTL time.Duration
}

// RedisStore keeps the ledger in Redis so several hosts can share it. Each
// job_uid is a key holding its source; expiry replaces Cleanup.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", opts.Addr, err)
	}
	return newRedisStore(client, opts.TTL), nil
}

func newRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) HasSeen(ctx context.Context, jobUID string) (bool, error) {
	_, err := s.client.Get(ctx, redisKeyPrefix+jobUID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking seen status for %s: %w", jobUID, err)
	}
	return true, nil
}

// MarkSeen sets the key only if absent, so the first writer's TTL stands.
func (s *RedisStore) MarkSeen(ctx context.Context, jobUID, source string) error {
	if err := s.client.SetNX(ctx, redisKeyPrefix+jobUID, source, s.ttl).Err(); err != nil {
		return fmt.Errorf("marking %s as seen: %w", jobUID, err)
	}
	return nil
}

// Cleanup is a no-op: keys expire on their own TTL.
func (s *RedisStore) Cleanup(context.Context, time.Duration) error { return nil }

func (s *RedisStore) Close() error {
	return s.client.Close()
}
