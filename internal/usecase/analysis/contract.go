package analysis

import (
	"context"

	"github.com/newsgpt/newsgpt/internal/domain"
)

// Searcher finds the articles the analysis is grounded on.
type Searcher interface {
	Search(ctx context.Context, f domain.SearchFilters, from, size int) ([]domain.NewsArticle, error)
}

// Generator streams a chat completion for the composed prompt.
type Generator interface {
	StreamCompletion(ctx context.Context, req domain.GenerationRequest, h domain.StreamHandler) error
}
