package news

import (
	"context"

	"github.com/newsgpt/newsgpt/internal/domain"
)

// Store is the document store contract the query service needs.
type Store interface {
	Search(ctx context.Context, query domain.SearchQuery, from, size int) ([]domain.NewsArticle, error)
	GetByID(ctx context.Context, id string) (domain.NewsArticle, error)
	Delete(ctx context.Context, id string) error
}

// Embedder vectorizes query text for the similarity rerank. May be nil.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
