// README: Checkout session store backed by Redis.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pronto/internal/types"
)

var ErrNoSession = errors.New("checkout: no session")

const sessionTTL = 24 * time.Hour

type Store interface {
	Get(ctx context.Context, sessionID types.ID) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, sessionID types.ID) error
}

type RedisStore struct {
	redis *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{redis: client}
}

func (s *RedisStore) Get(ctx context.Context, sessionID types.ID) (*Session, error) {
	data, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Put(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sess.ID), data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID types.ID) error {
	if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}

func sessionKey(id types.ID) string {
	return fmt.Sprintf("checkout:%s", id)
}

// MemoryStore is the in-process Store used by tests.
type MemoryStore struct {
	sessions map[types.ID]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[types.ID]*Session)}
}

func (s *MemoryStore) Get(_ context.Context, sessionID types.ID) (*Session, error) {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNoSession
	}
	clone := *sess
	return &clone, nil
}

func (s *MemoryStore) Put(_ context.Context, sess *Session) error {
	clone := *sess
	s.sessions[sess.ID] = &clone
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID types.ID) error {
	delete(s.sessions, sessionID)
	return nil
}
