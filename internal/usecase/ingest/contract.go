package ingest

import (
	"context"

	"github.com/newsgpt/newsgpt/internal/domain"
)

// Store is the document store contract ingestion needs.
type Store interface {
	Exists(ctx context.Context, id string) (bool, error)
	Index(ctx context.Context, id string, article domain.NewsArticle) error
}

// FeedQuery narrows a market-data feed pull.
type FeedQuery struct {
	Tickers  string
	Topics   string
	TimeFrom string
	TimeTo   string
	Sort     string
	Limit    int
}

// MarketData pulls the latest news feed from the market-data provider.
type MarketData interface {
	FetchLatest(ctx context.Context, q FeedQuery) ([]domain.NewsArticle, error)
}

// Embedder vectorizes article text on the fetch-and-ingest path. May be nil.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
