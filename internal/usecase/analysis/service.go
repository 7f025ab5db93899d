// Package analysis streams an LLM-generated analysis of matching news
// articles to a waiting client.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/newsgpt/newsgpt/internal/domain"
	"github.com/newsgpt/newsgpt/internal/metrics"
	"github.com/newsgpt/newsgpt/internal/prompt"
)

const defaultPageSize = 10

// Service orchestrates search → prompt → generation stream.
type Service struct {
	searcher  Searcher
	generator Generator
	logger    *zap.Logger
}

// New creates an analysis service.
func New(searcher Searcher, generator Generator, logger *zap.Logger) *Service {
	return &Service{searcher: searcher, generator: generator, logger: logger}
}

// Params describe one analysis stream request.
type Params struct {
	Filters     domain.SearchFilters
	Page        int
	Size        int
	Model       string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// StreamAnalysis searches for matching articles, composes the analysis
// prompt, and relays the generation stream through h. Fragments reach h in
// upstream order, one at a time; exactly one terminal callback fires unless
// the client goes away mid-stream. Fragments are also accumulated into a
// whitespace-normalized transcript that is logged on completion; the
// transcript never affects what the client receives.
//
// When no articles match, domain.ErrNotFound is returned before any
// generation call so the boundary can still answer 404.
func (s *Service) StreamAnalysis(ctx context.Context, p Params, h domain.StreamHandler) error {
	page := p.Page
	if page <= 0 {
		page = 1
	}
	size := p.Size
	if size <= 0 {
		size = defaultPageSize
	}
	from := (page - 1) * size

	articles, err := s.searcher.Search(ctx, p.Filters, from, size)
	if err != nil {
		return err
	}
	if len(articles) == 0 {
		return fmt.Errorf("no relevant news found for the provided filters: %w", domain.ErrNotFound)
	}

	req := domain.GenerationRequest{
		Prompt:      prompt.Compose(articles, p.Filters.Ticker),
		Model:       p.Model,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
		TopP:        p.TopP,
	}.WithDefaults()

	s.logger.Debug("Composed analysis prompt",
		zap.Int("articles", len(articles)),
		zap.String("ticker", p.Filters.Ticker),
		zap.Int("prompt_len", len(req.Prompt)),
	)

	var transcript strings.Builder
	terminal := false
	start := time.Now()

	relay := domain.StreamHandler{
		OnFragment: func(fragment string) error {
			transcript.WriteString(fragment)
			metrics.GenerationFragmentsTotal.WithLabelValues(req.Model).Inc()
			return h.OnFragment(fragment)
		},
		OnComplete: func() {
			terminal = true
			metrics.GenerationStreamsTotal.WithLabelValues(req.Model, "completed").Inc()
			s.logger.Info("Generation stream completed",
				zap.String("model", req.Model),
				zap.String("transcript", normalizeTranscript(transcript.String())),
			)
			h.OnComplete()
		},
		OnError: func(err error) {
			terminal = true
			metrics.GenerationStreamsTotal.WithLabelValues(req.Model, "failed").Inc()
			s.logger.Error("Generation stream failed", zap.String("model", req.Model), zap.Error(err))
			h.OnError(err)
		},
	}

	err = s.generator.StreamCompletion(ctx, req, relay)
	metrics.GenerationStreamDuration.WithLabelValues(req.Model).Observe(time.Since(start).Seconds())

	if err != nil && !terminal {
		// Fragment write failed: the client disconnected before a terminal
		// event could be delivered.
		metrics.GenerationStreamsTotal.WithLabelValues(req.Model, "canceled").Inc()
	}
	return err
}

// normalizeTranscript collapses runs of whitespace so the logged transcript
// reads as one line.
func normalizeTranscript(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
