// Package news builds filtered queries against the news index and exposes
// get/delete pass-throughs.
package news

import (
	"context"
	"errors"
	"fmt"

	"github.com/newsgpt/newsgpt/internal/domain"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Service is the news query service.
type Service struct {
	store    Store
	embedder Embedder
}

// New creates a query service. embedder may be nil; text searches then run
// without the similarity rerank.
func New(store Store, embedder Embedder) *Service {
	return &Service{store: store, embedder: embedder}
}

// Search runs a filtered search with offset pagination. An empty result is
// not an error; callers decide whether that maps to 404.
func (s *Service) Search(ctx context.Context, f domain.SearchFilters, from, size int) ([]domain.NewsArticle, error) {
	if from < 0 {
		from = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	query, err := s.buildQuery(ctx, f)
	if err != nil {
		return nil, err
	}

	items, err := s.store.Search(ctx, query, from, size)
	if err != nil {
		return nil, fmt.Errorf("search news: %w", err)
	}
	return items, nil
}

// buildQuery translates filters into the boolean query. Query text becomes
// a multi_match over title and summary plus, when an embedder is configured,
// an additive cosine-similarity rerank against the stored embeddings (the
// lexical and similarity scores sum; full-text relevance stays primary).
func (s *Service) buildQuery(ctx context.Context, f domain.SearchFilters) (domain.SearchQuery, error) {
	var query domain.SearchQuery

	if f.Text != "" {
		query.Must = append(query.Must, domain.TextMatch{
			Query:  f.Text,
			Fields: []string{"summary", "title"},
		})

		if s.embedder != nil {
			vector, err := s.embedder.Embed(ctx, f.Text)
			if err != nil {
				return domain.SearchQuery{}, fmt.Errorf("embed query text: %w", err)
			}
			query.Must = append(query.Must, domain.VectorRerank{
				Field:  "embedding",
				Vector: vector,
			})
		}
	}

	if f.Topic != "" {
		query.Filter = append(query.Filter, domain.NestedFilter{
			Path:  "topics",
			Field: "topics.topic",
			Value: f.Topic,
		})
	}

	if f.Ticker != "" {
		query.Filter = append(query.Filter, domain.NestedFilter{
			Path:  "ticker_sentiment",
			Field: "ticker_sentiment.ticker",
			Value: f.Ticker,
		})
	}

	return query, nil
}

// GetByID fetches one article; absent IDs surface domain.ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (domain.NewsArticle, error) {
	article, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.NewsArticle{}, fmt.Errorf("get news article: %w", err)
	}
	return article, nil
}

// DeleteByID removes one article. Deleting an absent article is a no-op.
func (s *Service) DeleteByID(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete news article: %w", err)
	}
	return nil
}
