package redis_session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/commercekit/shopchat/internal/session"
)

const sessionKeyPrefix = "session:"

// Store implements session.Store on Redis. Values are JSON documents at
// "session:{userID}" with the configured TTL applied on every write.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// Conn opens and verifies a Redis connection
func Conn(ctx context.Context, host, port, pass string, db int, timeout time.Duration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%s", host, port),
		DialTimeout: timeout,
		Password:    pass,
		DB:          db,
	})

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	if pong != "PONG" {
		return nil, fmt.Errorf("expected PONG, got %s", pong)
	}

	return client, nil
}

// NewStore creates a Redis-backed session store
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) Get(ctx context.Context, userID string) (session.Session, error) {
	val, err := s.client.Get(ctx, sessionKeyPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// expired or never seen: a brand-new session
			return session.Session{}, nil
		}
		return session.Session{}, err
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return session.Session{}, fmt.Errorf("corrupt session for %s: %w", userID, err)
	}
	return sess, nil
}

func (s *Store) Save(ctx context.Context, userID string, sess session.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+userID, data, s.ttl).Err()
}
