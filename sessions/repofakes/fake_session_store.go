package repofakes

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-assistant-auth/internal/errors"
	"github.com/jrsteele09/go-assistant-auth/sessions"
)

var _ sessions.Store = (*FakeSessionStore)(nil)

// FakeSessionStore is a thread-safe in-memory implementation of the session
// store for tests.
type FakeSessionStore struct {
	mu    sync.RWMutex
	items map[string]sessions.Session
}

func NewFakeSessionStore() *FakeSessionStore {
	return &FakeSessionStore{
		items: make(map[string]sessions.Session),
	}
}

func (s *FakeSessionStore) Get(_ context.Context, id string) (*sessions.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.items[id]
	if !ok {
		return nil, errors.ErrSessionNotFound
	}

	// Return a copy to prevent external modifications
	out := sess
	return &out, nil
}

func (s *FakeSessionStore) Set(_ context.Context, id string, session *sessions.Session) error {
	if session == nil {
		return errors.ErrInternal
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session.ID = id
	s.items[id] = *session
	return nil
}

func (s *FakeSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, id)
	return nil
}
