package knowledge

import (
	"context"

	"github.com/commercekit/shopchat/models"
)

// Source is the uniform contract for one independent searchable collection.
// Search returns ranked short-text snippets, best first. An empty result means
// the source was queried and found nothing relevant; that is distinct from an
// error, which means the source could not answer at all.
type Source interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error)
}

// Searcher is the slice of the knowledge store a category source needs.
type Searcher interface {
	SearchEntries(ctx context.Context, category, query string, limit int) ([]models.SearchResult, error)
}

// StoreSource exposes one knowledge-store category as a Source
type StoreSource struct {
	store    Searcher
	category string
}

func NewStoreSource(store Searcher, category string) *StoreSource {
	return &StoreSource{store: store, category: category}
}

func (s *StoreSource) Name() string { return s.category }

func (s *StoreSource) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	return s.store.SearchEntries(ctx, s.category, query, limit)
}
