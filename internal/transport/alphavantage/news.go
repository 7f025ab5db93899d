package alphavantage

import (
	"context"
	"net/url"
	"strconv"

	"github.com/newsgpt/newsgpt/internal/domain"
)

// NewsQuery narrows a NEWS_SENTIMENT call. Tickers and Topics are
// comma-separated lists as the provider expects them.
type NewsQuery struct {
	Tickers  string
	Topics   string
	TimeFrom string // compact provider timestamp, see FormatTimestamp
	TimeTo   string
	Sort     string
	Limit    int
}

// FetchNewsSentiment pulls the news feed and converts it to domain articles.
// PublishedAt is decoded from the provider's compact timestamp; articles
// with an unparseable timestamp keep the raw string only.
func (c *Client) FetchNewsSentiment(ctx context.Context, q NewsQuery) ([]domain.NewsArticle, error) {
	params := url.Values{}
	if q.Tickers != "" {
		params.Set("tickers", q.Tickers)
	}
	if q.Topics != "" {
		params.Set("topics", q.Topics)
	}
	if q.TimeFrom != "" {
		params.Set("time_from", q.TimeFrom)
	}
	if q.TimeTo != "" {
		params.Set("time_to", q.TimeTo)
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var resp feedResponse
	if err := c.Fetch(ctx, "NEWS_SENTIMENT", params, &resp); err != nil {
		return nil, err
	}

	articles := make([]domain.NewsArticle, 0, len(resp.Feed))
	for _, item := range resp.Feed {
		articles = append(articles, item.toDomain())
	}

	return articles, nil
}

// feedResponse mirrors the NEWS_SENTIMENT payload. Numeric scores arrive as
// JSON strings on the wire and are converted to floats here.
type feedResponse struct {
	Feed []feedItem `json:"feed"`
}

type feedItem struct {
	Title                 string            `json:"title"`
	URL                   string            `json:"url"`
	TimePublished         string            `json:"time_published"`
	Authors               []string          `json:"authors"`
	Summary               string            `json:"summary"`
	Source                string            `json:"source"`
	Topics                []feedTopic       `json:"topics"`
	OverallSentimentScore float64           `json:"overall_sentiment_score"`
	OverallSentimentLabel string            `json:"overall_sentiment_label"`
	TickerSentiment       []feedTickerEntry `json:"ticker_sentiment"`
}

type feedTopic struct {
	Topic          string `json:"topic"`
	RelevanceScore string `json:"relevance_score"`
}

type feedTickerEntry struct {
	Ticker         string `json:"ticker"`
	RelevanceScore string `json:"relevance_score"`
	SentimentScore string `json:"ticker_sentiment_score"`
	SentimentLabel string `json:"ticker_sentiment_label"`
}

func (f feedItem) toDomain() domain.NewsArticle {
	article := domain.NewsArticle{
		Title:                 f.Title,
		URL:                   f.URL,
		Summary:               f.Summary,
		TimePublished:         f.TimePublished,
		Authors:               f.Authors,
		Source:                f.Source,
		OverallSentimentScore: f.OverallSentimentScore,
		OverallSentimentLabel: f.OverallSentimentLabel,
	}

	if ts, err := ParseTimestamp(f.TimePublished); err == nil {
		article.PublishedAt = ts
	}

	for _, t := range f.Topics {
		article.Topics = append(article.Topics, domain.Topic{
			Topic:          t.Topic,
			RelevanceScore: parseScore(t.RelevanceScore),
		})
	}
	for _, ts := range f.TickerSentiment {
		article.TickerSentiment = append(article.TickerSentiment, domain.TickerSentiment{
			Ticker:         ts.Ticker,
			RelevanceScore: parseScore(ts.RelevanceScore),
			SentimentScore: parseScore(ts.SentimentScore),
			SentimentLabel: ts.SentimentLabel,
		})
	}

	return article
}

func parseScore(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
