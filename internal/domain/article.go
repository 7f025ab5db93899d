package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Topic is a topic tag with its relevance to the article.
type Topic struct {
	Topic          string  `json:"topic"`
	RelevanceScore float64 `json:"relevance_score"`
}

// TickerSentiment carries per-ticker sentiment for an article. A single
// article may reference several tickers.
type TickerSentiment struct {
	Ticker         string  `json:"ticker"`
	RelevanceScore float64 `json:"relevance_score"`
	SentimentScore float64 `json:"ticker_sentiment_score"`
	SentimentLabel string  `json:"ticker_sentiment_label"`
}

// NewsArticle is the document stored in the news index. Field names follow
// the Alpha Vantage wire format, which doubles as the index schema.
type NewsArticle struct {
	Title                 string            `json:"title"`
	URL                   string            `json:"url"`
	Summary               string            `json:"summary"`
	TimePublished         string            `json:"time_published,omitempty"`
	PublishedAt           time.Time         `json:"published_at,omitzero"`
	Authors               []string          `json:"authors"`
	Source                string            `json:"source"`
	Topics                []Topic           `json:"topics,omitempty"`
	OverallSentimentScore float64           `json:"overall_sentiment_score"`
	OverallSentimentLabel string            `json:"overall_sentiment_label"`
	TickerSentiment       []TickerSentiment `json:"ticker_sentiment,omitempty"`
	Embedding             []float32         `json:"embedding,omitempty"`
}

// EmbeddingText is the text an article embedding is computed over.
func (a NewsArticle) EmbeddingText() string {
	return a.Title + ". " + a.Summary
}

// DeriveID maps an article URL to its document ID: hex-encoded SHA-256 of
// the URL. The same URL always yields the same ID, which is what makes
// ingestion idempotent.
func DeriveID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}
