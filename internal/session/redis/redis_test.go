package redis_session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/commercekit/shopchat/internal/session"
	"github.com/commercekit/shopchat/models"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, ttl), mr
}

func TestRoundTrip(t *testing.T) {
	s, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	want := session.Session{
		ContinuationHandle: "conv-1",
		History: []models.Exchange{
			{Message: "What is the return policy?", Response: "30 days."},
		},
	}
	if err := s.Save(ctx, "user-1", want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ContinuationHandle != want.ContinuationHandle {
		t.Fatalf("handle mismatch: %q", got.ContinuationHandle)
	}
	if len(got.History) != 1 || got.History[0] != want.History[0] {
		t.Fatalf("history mismatch: %+v", got.History)
	}
}

func TestKeyAndTTL(t *testing.T) {
	s, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	if err := s.Save(ctx, "user-1", session.Session{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !mr.Exists("session:user-1") {
		t.Fatalf("expected key session:user-1")
	}
	if ttl := mr.TTL("session:user-1"); ttl != time.Hour {
		t.Fatalf("expected TTL refreshed to 1h, got %v", ttl)
	}
}

func TestMissingUserReadsAsZero(t *testing.T) {
	s, _ := newTestStore(t, time.Hour)
	got, err := s.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ContinuationHandle != "" || len(got.History) != 0 {
		t.Fatalf("expected zero session, got %+v", got)
	}
}

func TestExpiredSessionReadsAsZero(t *testing.T) {
	s, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	if err := s.Save(ctx, "user-1", session.Session{ContinuationHandle: "conv-1"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	got, err := s.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ContinuationHandle != "" {
		t.Fatalf("expired session must read as new, got %+v", got)
	}
}

func TestCorruptValueReturnsError(t *testing.T) {
	s, mr := newTestStore(t, time.Hour)
	mr.Set("session:user-1", "{not json")

	if _, err := s.Get(context.Background(), "user-1"); err == nil {
		t.Fatalf("expected error for corrupt session payload")
	}
}
