// README: Cart store backed by Redis (JSON blob per session, TTL).
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pronto/internal/types"
)

const cartTTL = 48 * time.Hour

type RedisStore struct {
	redis *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{redis: client}
}

func (s *RedisStore) Get(ctx context.Context, sessionID types.ID) (*Cart, error) {
	data, err := s.redis.Get(ctx, cartKey(sessionID)).Bytes()
	if err == redis.Nil {
		return &Cart{SessionID: sessionID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return &c, nil
}

func (s *RedisStore) Put(ctx context.Context, c *Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.redis.Set(ctx, cartKey(c.SessionID), data, cartTTL).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID types.ID) error {
	if err := s.redis.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}

func cartKey(sessionID types.ID) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

// MemoryStore is an in-process Store used by tests and local runs
// without Redis.
type MemoryStore struct {
	carts map[types.ID]*Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[types.ID]*Cart)}
}

func (s *MemoryStore) Get(_ context.Context, sessionID types.ID) (*Cart, error) {
	if c, ok := s.carts[sessionID]; ok {
		clone := *c
		clone.Items = append([]Item(nil), c.Items...)
		return &clone, nil
	}
	return &Cart{SessionID: sessionID}, nil
}

func (s *MemoryStore) Put(_ context.Context, c *Cart) error {
	clone := *c
	clone.Items = append([]Item(nil), c.Items...)
	s.carts[c.SessionID] = &clone
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID types.ID) error {
	delete(s.carts, sessionID)
	return nil
}
