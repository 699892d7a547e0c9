package session

import (
	"fmt"
	"testing"

	"github.com/commercekit/shopchat/models"
)

func TestAppendTruncatesOldest(t *testing.T) {
	var s Session
	for i := 0; i < 20; i++ {
		s.Append(models.Exchange{Message: fmt.Sprintf("q%d", i), Response: fmt.Sprintf("a%d", i)}, 15)
	}
	if len(s.History) != 15 {
		t.Fatalf("expected 15 exchanges, got %d", len(s.History))
	}
	if s.History[0].Message != "q5" {
		t.Fatalf("expected oldest surviving exchange q5, got %q", s.History[0].Message)
	}
	if s.History[14].Message != "q19" {
		t.Fatalf("expected newest exchange last, got %q", s.History[14].Message)
	}
}

func TestAppendNoLimit(t *testing.T) {
	var s Session
	for i := 0; i < 5; i++ {
		s.Append(models.Exchange{Message: "q"}, 0)
	}
	if len(s.History) != 5 {
		t.Fatalf("limit 0 must not truncate, got %d", len(s.History))
	}
}

func TestWindow(t *testing.T) {
	var s Session
	for i := 0; i < 5; i++ {
		s.Append(models.Exchange{Message: fmt.Sprintf("q%d", i)}, 15)
	}

	if got := s.Window(3); len(got) != 3 || got[0].Message != "q2" {
		t.Fatalf("unexpected window: %+v", got)
	}
	if got := s.Window(10); len(got) != 5 {
		t.Fatalf("window larger than history must return everything, got %d", len(got))
	}
	if got := s.Window(0); got != nil {
		t.Fatalf("window 0 must be nil, got %+v", got)
	}
	if got := (Session{}).Window(3); got != nil {
		t.Fatalf("empty session window must be nil, got %+v", got)
	}
}
