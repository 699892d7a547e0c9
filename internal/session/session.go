package session

import (
	"context"

	"github.com/commercekit/shopchat/models"
)

// Session is the durable per-user conversation state. A missing or expired
// session is indistinguishable from a brand-new user: both are the zero value
// (empty history, no continuation handle).
type Session struct {
	ContinuationHandle string            `json:"continuation_handle,omitempty"`
	History            []models.Exchange `json:"history"`
}

// Store persists sessions keyed by user id. Save refreshes the TTL on every
// write. There is no delete operation; sessions expire.
type Store interface {
	Get(ctx context.Context, userID string) (Session, error)
	Save(ctx context.Context, userID string, sess Session) error
}

// Append records one completed exchange and drops the oldest entries once the
// bound is exceeded. Truncation happens on write, not read.
func (s *Session) Append(ex models.Exchange, limit int) {
	s.History = append(s.History, ex)
	if limit > 0 && len(s.History) > limit {
		s.History = s.History[len(s.History)-limit:]
	}
}

// Window returns up to the last n exchanges, most-recent-last.
func (s Session) Window(n int) []models.Exchange {
	if n <= 0 || len(s.History) == 0 {
		return nil
	}
	if len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}
