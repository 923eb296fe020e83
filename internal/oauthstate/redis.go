package oauthstate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const statePrefix = "oauth:state:"

// RedisStore keeps states in Redis so every instance behind a load
// balancer accepts the callback.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis state store
func NewRedisStore(addr string, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Save stores the state with an expiry
func (s *RedisStore) Save(ctx context.Context, state string, ttl time.Duration) error {
	return s.client.Set(ctx, statePrefix+state, "1", ttl).Err()
}

// Consume deletes the state. Redis expires keys itself, so a successful
// delete means the state was valid.
func (s *RedisStore) Consume(ctx context.Context, state string) (bool, error) {
	n, err := s.client.Del(ctx, statePrefix+state).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Close releases the Redis connection pool
func (s *RedisStore) Close() error {
	return s.client.Close()
}
