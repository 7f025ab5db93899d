// Package ingest writes news articles into the index, deduplicating by the
// URL-derived document ID.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/newsgpt/newsgpt/internal/domain"
	"github.com/newsgpt/newsgpt/internal/transport/alphavantage"
)

const (
	defaultFetchLimit = 50
	lookbackWindow    = 24 * time.Hour
)

// Report counts the per-article outcomes of one ingestion batch.
// Batches are best-effort: a partially failed batch leaves the written
// subset indexed, and the report is how callers observe that.
type Report struct {
	Written int `json:"written"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Service ingests news articles.
type Service struct {
	store    Store
	market   MarketData
	embedder Embedder
	logger   *zap.Logger
}

// New creates an ingestion service. embedder may be nil; the fetch path then
// indexes articles without embeddings.
func New(store Store, market MarketData, embedder Embedder, logger *zap.Logger) *Service {
	return &Service{store: store, market: market, embedder: embedder, logger: logger}
}

// Ingest writes each article that is not already present, in input order.
// Ingestion is insert-if-absent: an existing document is skipped, never
// updated. The returned error is non-nil when any article failed; the
// report is always populated.
func (s *Service) Ingest(ctx context.Context, articles []domain.NewsArticle) (Report, error) {
	var report Report
	var errs []error

	for _, article := range articles {
		if article.URL == "" {
			report.Failed++
			errs = append(errs, fmt.Errorf("article %q has no url: %w", article.Title, domain.ErrValidation))
			continue
		}

		id := domain.DeriveID(article.URL)

		exists, err := s.store.Exists(ctx, id)
		if err != nil {
			// An unknown existence state risks a duplicate write, so the
			// article counts as failed rather than being retried blindly.
			report.Failed++
			errs = append(errs, fmt.Errorf("check article %s: %w", id, err))
			continue
		}
		if exists {
			report.Skipped++
			continue
		}

		if err := s.store.Index(ctx, id, article); err != nil {
			report.Failed++
			errs = append(errs, fmt.Errorf("index article %s: %w", id, err))
			continue
		}
		report.Written++
	}

	s.logger.Info("Ingested news batch",
		zap.Int("written", report.Written),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)

	return report, errors.Join(errs...)
}

// LatestParams narrow a fetch-and-ingest pull. TimeFrom/TimeTo accept
// ISO-8601 or the provider's compact form; when either is missing the
// window defaults to the last 24 hours.
type LatestParams struct {
	Tickers  string
	Topics   string
	TimeFrom string
	TimeTo   string
	Limit    int
}

// FetchAndIngestLatest pulls the latest feed from the market-data provider,
// enriches each article with an embedding, and delegates to Ingest.
// At least one of tickers/topics is required; that is validated before any
// network call.
func (s *Service) FetchAndIngestLatest(ctx context.Context, p LatestParams) (Report, error) {
	if p.Tickers == "" && p.Topics == "" {
		return Report{}, fmt.Errorf("either tickers or topics must be specified: %w", domain.ErrValidation)
	}

	timeFrom, timeTo := resolveWindow(p.TimeFrom, p.TimeTo)

	limit := p.Limit
	if limit <= 0 {
		limit = defaultFetchLimit
	}

	articles, err := s.market.FetchLatest(ctx, FeedQuery{
		Tickers:  p.Tickers,
		Topics:   p.Topics,
		TimeFrom: timeFrom,
		TimeTo:   timeTo,
		Sort:     "LATEST",
		Limit:    limit,
	})
	if err != nil {
		return Report{}, fmt.Errorf("fetch latest news: %w", err)
	}

	if s.embedder != nil {
		for i := range articles {
			vector, err := s.embedder.Embed(ctx, articles[i].EmbeddingText())
			if err != nil {
				return Report{}, fmt.Errorf("embed article %q: %w", articles[i].URL, err)
			}
			articles[i].Embedding = vector
		}
	}

	return s.Ingest(ctx, articles)
}

var timestampSeparators = regexp.MustCompile(`[-:.TZ]`)

// resolveWindow normalizes an explicit time range to the provider's compact
// form, or falls back to the last 24 hours when the range is incomplete.
func resolveWindow(rawFrom, rawTo string) (string, string) {
	if rawFrom != "" && rawTo != "" {
		return compactTimestamp(rawFrom), compactTimestamp(rawTo)
	}
	now := time.Now()
	return alphavantage.FormatTimestamp(now.Add(-lookbackWindow)), alphavantage.FormatTimestamp(now)
}

func compactTimestamp(raw string) string {
	// "T" doubles as the provider's date/time separator, so strip the other
	// separators first and re-insert it after the date digits.
	digits := timestampSeparators.ReplaceAllString(raw, "")
	if len(digits) > 12 {
		digits = digits[:12]
	}
	if len(digits) <= 8 {
		return digits
	}
	return digits[:8] + "T" + digits[8:]
}
