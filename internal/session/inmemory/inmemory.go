package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/commercekit/shopchat/internal/session"
)

type entry struct {
	sess      session.Session
	expiresAt time.Time
}

// Store is a process-local session.Store for development and tests. It honours
// the same TTL semantics as the Redis store: the TTL is refreshed on every
// write and an expired session reads back as a brand-new one.
type Store struct {
	sessions map[string]entry
	ttl      time.Duration
	mu       sync.RWMutex
}

func NewStore(ttl time.Duration) *Store {
	return &Store{sessions: make(map[string]entry), ttl: ttl}
}

func (s *Store) Get(ctx context.Context, userID string) (session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[userID]
	if !ok || time.Now().After(e.expiresAt) {
		return session.Session{}, nil
	}
	return e.sess, nil
}

func (s *Store) Save(ctx context.Context, userID string, sess session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = entry{sess: sess, expiresAt: time.Now().Add(s.ttl)}
	return nil
}
