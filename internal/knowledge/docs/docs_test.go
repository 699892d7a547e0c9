package docs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func testDocuments() []Document {
	return []Document{
		{ID: "returns", Title: "Return policy", Text: "Return policy\nItems can be returned within 30 days of delivery for a full refund."},
		{ID: "shipping", Title: "Shipping", Text: "Shipping\nStandard shipping takes 3-5 business days. Express shipping is available."},
		{ID: "warranty", Title: "Warranty", Text: "Warranty\nAll products carry a one-year manufacturer warranty."},
	}
}

func TestSearchRanksRelevantDocumentFirst(t *testing.T) {
	s, err := NewSource("support", testDocuments())
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}

	got, err := s.Search(context.Background(), "return refund", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) == 0 {
		t.Fatalf("expected at least one hit")
	}
	if got[0].ID != "returns" {
		t.Fatalf("expected returns first, got %q", got[0].ID)
	}
	if got[0].Score != 1.0 {
		t.Fatalf("top hit must normalize to 1.0, got %v", got[0].Score)
	}
	for _, r := range got {
		if r.Score < 0 || r.Score > 1 {
			t.Fatalf("score out of range: %+v", r)
		}
	}
}

func TestSearchNoMatchesReturnsNothing(t *testing.T) {
	s, err := NewSource("support", testDocuments())
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	got, err := s.Search(context.Background(), "quantum chromodynamics", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no hits, got %+v", got)
	}
}

func TestSearchHonoursLimit(t *testing.T) {
	s, err := NewSource("support", testDocuments())
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	got, err := s.Search(context.Background(), "shipping warranty returned", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) > 1 {
		t.Fatalf("expected at most 1 hit, got %d", len(got))
	}
}

func TestNewSourceFromDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"returns.md":  "Return policy\nItems can be returned within 30 days.",
		"shipping.txt": "Shipping\nStandard shipping takes 3-5 business days.",
		"ignored.json": `{"not": "indexed"}`,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	s, err := NewSourceFromDir("support", dir)
	if err != nil {
		t.Fatalf("NewSourceFromDir: %v", err)
	}
	if s.Name() != "support" {
		t.Fatalf("unexpected name %q", s.Name())
	}

	got, err := s.Search(context.Background(), "returned 30 days", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) == 0 || got[0].ID != "returns" {
		t.Fatalf("expected returns doc indexed from dir, got %+v", got)
	}
	for _, r := range got {
		if r.ID == "ignored" {
			t.Fatalf("non-text file must not be indexed")
		}
	}
}

func TestSnippetTruncates(t *testing.T) {
	long := strings.Repeat("a", 400)
	got := snippet(long)
	if len(got) != 300+len("…") {
		t.Fatalf("unexpected snippet length %d", len(got))
	}
	if snippet("short") != "short" {
		t.Fatalf("short text must pass through unchanged")
	}
}

func TestSnippetNeverSplitsRunes(t *testing.T) {
	// three-byte runes guarantee the 300-byte mark lands mid-rune
	long := strings.Repeat("日", 200)
	got := snippet(long)
	if !utf8.ValidString(got) {
		t.Fatalf("snippet produced invalid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("long text must be truncated: %q", got)
	}
	if len(got) > 300+len("…") {
		t.Fatalf("snippet too long: %d bytes", len(got))
	}
}
