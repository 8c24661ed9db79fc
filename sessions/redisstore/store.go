// Package redisstore provides the Redis-backed session store.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/jrsteele09/go-assistant-auth/internal/errors"
	"github.com/jrsteele09/go-assistant-auth/sessions"
)

const keyPrefix = "assistant:session:"

var _ sessions.Store = (*Store)(nil)

// Store persists sessions as JSON values with a rolling TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a Redis-backed session store. Sessions expire ttl after their
// last write.
func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) Get(ctx context.Context, id string) (*sessions.Session, error) {
	payload, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if apperrors.Is(err, redis.Nil) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis session get failed: %w", err)
	}

	var sess sessions.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("redis session decode failed: %w", err)
	}
	return &sess, nil
}

func (s *Store) Set(ctx context.Context, id string, session *sessions.Session) error {
	session.ID = id
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis session encode failed: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+id, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis session set failed: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis session delete failed: %w", err)
	}
	return nil
}
