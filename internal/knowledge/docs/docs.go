package docs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/blevesearch/bleve"

	"github.com/commercekit/shopchat/models"
)

// Document is one support/policy article held in the in-process index.
type Document struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Source is a knowledge source over support documents, backed by an in-memory
// bleve BM25 index. Documents are indexed once at construction; reads are
// concurrent-safe.
type Source struct {
	name  string
	index bleve.Index
	docs  map[string]Document
	mu    sync.RWMutex
}

// NewSource builds the index from the given documents
func NewSource(name string, documents []Document) (*Source, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}
	s := &Source{name: name, index: index, docs: make(map[string]Document, len(documents))}
	for _, d := range documents {
		if d.ID == "" {
			continue
		}
		s.docs[d.ID] = d
		if err := index.Index(d.ID, d); err != nil {
			return nil, fmt.Errorf("index %s: %w", d.ID, err)
		}
	}
	return s, nil
}

// NewSourceFromDir indexes every .txt and .md file under dir. The file name
// (without extension) becomes the document id, the first line its title.
func NewSourceFromDir(name, dir string) (*Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var documents []Document
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".txt" && ext != ".md" {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		text := strings.TrimSpace(string(b))
		if text == "" {
			continue
		}
		title, _, _ := strings.Cut(text, "\n")
		documents = append(documents, Document{
			ID:    strings.TrimSuffix(e.Name(), ext),
			Title: strings.TrimSpace(title),
			Text:  text,
		})
	}
	return NewSource(name, documents)
}

func (s *Source) Name() string { return s.name }

// Search runs a BM25 query over the indexed documents. Scores are normalized
// against the best hit so they land in [0,1].
func (s *Source) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)

	s.mu.RLock()
	res, err := s.index.SearchInContext(ctx, req)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if len(res.Hits) == 0 {
		return nil, nil
	}

	top := res.Hits[0].Score
	var out []models.SearchResult
	for _, hit := range res.Hits {
		doc, ok := s.docs[hit.ID]
		if !ok {
			continue
		}
		score := 0.0
		if top > 0 {
			score = hit.Score / top
		}
		out = append(out, models.SearchResult{
			ID:    hit.ID,
			Text:  snippet(doc.Text),
			Score: score,
		})
	}
	return out, nil
}

func snippet(s string) string {
	if len(s) <= 300 {
		return s
	}
	cut := 300
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
