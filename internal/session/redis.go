package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const cartKeyPrefix = "cart:"

// RedisStore keeps in-progress orders in Redis as JSON values, so carts
// survive a service restart. The per-session lock stays in-process: this
// backend assumes one dispatcher instance handles a given session at a time.
type RedisStore struct {
	client *redis.Client
	locks  *keyedMutex
}

// NewRedisStore creates a session store backed by the given Redis client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		locks:  newKeyedMutex(),
	}
}

func cartKey(sessionID string) string {
	return cartKeyPrefix + sessionID
}

// Get loads the session's order from Redis
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Order, bool, error) {
	value, err := s.client.Get(ctx, cartKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get session order: %w", err)
	}

	var order Order
	if err := json.Unmarshal([]byte(value), &order); err != nil {
		return nil, false, fmt.Errorf("failed to decode session order: %w", err)
	}
	return &order, true, nil
}

// Put stores the session's order in Redis. Carts have no expiry.
func (s *RedisStore) Put(ctx context.Context, sessionID string, order *Order) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to encode session order: %w", err)
	}

	if err := s.client.Set(ctx, cartKey(sessionID), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to store session order: %w", err)
	}
	return nil
}

// Delete removes the session's order from Redis
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session order: %w", err)
	}
	return nil
}

// Lock acquires the per-session mutex
func (s *RedisStore) Lock(sessionID string) func() {
	return s.locks.lock(sessionID)
}
