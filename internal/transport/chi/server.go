// Package chi is the HTTP boundary: it translates requests into service
// calls and maps taxonomy errors to statuses.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/newsgpt/newsgpt/internal/domain"
	analysisuc "github.com/newsgpt/newsgpt/internal/usecase/analysis"
	ingestuc "github.com/newsgpt/newsgpt/internal/usecase/ingest"
	newsuc "github.com/newsgpt/newsgpt/internal/usecase/news"
)

// Pinger checks document store connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the request handlers.
type Server struct {
	ingest   *ingestuc.Service
	news     *newsuc.Service
	analysis *analysisuc.Service
	store    Pinger
	logger   *zap.Logger
}

// NewServer creates the HTTP API server.
func NewServer(
	ingest *ingestuc.Service,
	news *newsuc.Service,
	analysis *analysisuc.Service,
	store Pinger,
	logger *zap.Logger,
) *Server {
	return &Server{
		ingest:   ingest,
		news:     news,
		analysis: analysis,
		store:    store,
		logger:   logger,
	}
}

// Routes mounts the API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/news", func(r chi.Router) {
		r.Post("/ingest", s.IngestNews)
		r.Post("/fetch-ingest-latest", s.FetchIngestLatest)
		r.Get("/search", s.SearchNews)
		r.Get("/{id}", s.GetNewsByID)
		r.Delete("/{id}", s.DeleteNewsByID)
	})
	r.Get("/gpt/chatgpt/stream", s.StreamAnalysis)
	r.Get("/health", s.Health)
}

// IngestNews handles POST /news/ingest.
func (s *Server) IngestNews(w http.ResponseWriter, r *http.Request) {
	var articles []domain.NewsArticle
	if err := json.NewDecoder(r.Body).Decode(&articles); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid news data provided")
		return
	}

	report, err := s.ingest.Ingest(r.Context(), articles)
	if err != nil {
		// Best-effort batch: part of it may be indexed. Surface the counts
		// alongside the error instead of hiding the partial write.
		writeJSON(w, statusForError(err), map[string]any{
			"error":  err.Error(),
			"report": report,
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "News articles ingested successfully",
		"report":  report,
	})
}

// FetchIngestLatest handles POST /news/fetch-ingest-latest.
func (s *Server) FetchIngestLatest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	report, err := s.ingest.FetchAndIngestLatest(r.Context(), ingestuc.LatestParams{
		Tickers:  q.Get("tickers"),
		Topics:   q.Get("topics"),
		TimeFrom: q.Get("time_from"),
		TimeTo:   q.Get("time_to"),
		Limit:    intParam(q.Get("limit"), 0),
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Latest news ingested successfully",
		"report":  report,
	})
}

// SearchNews handles GET /news/search.
func (s *Server) SearchNews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	results, err := s.news.Search(r.Context(), domain.SearchFilters{
		Text:   q.Get("query"),
		Topic:  q.Get("topic"),
		Ticker: q.Get("ticker"),
	}, 0, intParam(q.Get("size"), 0))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":    results,
		"message": "Search results retrieved successfully",
	})
}

// GetNewsByID handles GET /news/{id}.
func (s *Server) GetNewsByID(w http.ResponseWriter, r *http.Request) {
	article, err := s.news.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":    article,
		"message": "News article retrieved successfully",
	})
}

// DeleteNewsByID handles DELETE /news/{id}.
func (s *Server) DeleteNewsByID(w http.ResponseWriter, r *http.Request) {
	if err := s.news.DeleteByID(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "News article deleted successfully",
	})
}

// StreamAnalysis handles GET /gpt/chatgpt/stream.
//
// The response is an SSE stream: one `data:` line per fragment, then a
// terminal `[DONE]` or error event. Failures before the first event (no
// matching news, bad parameters) still answer with a JSON status because
// the sink commits headers lazily.
func (s *Server) StreamAnalysis(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sink, err := newEventSink(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	params := analysisuc.Params{
		Filters: domain.SearchFilters{
			Ticker: q.Get("ticker"),
			Topic:  q.Get("topic"),
			Text:   q.Get("text"),
		},
		Page:        intParam(q.Get("page"), 0),
		Size:        intParam(q.Get("size"), 0),
		Model:       q.Get("model"),
		MaxTokens:   intParam(q.Get("maxTokens"), 0),
		Temperature: floatParam(q.Get("temperature"), 0),
		TopP:        floatParam(q.Get("topP"), 0),
	}

	if err := s.analysis.StreamAnalysis(r.Context(), params, sink.Handler()); err != nil {
		if !sink.Started() {
			s.handleDomainError(w, err)
		}
		// After headers the terminal event already went out in-band.
	}
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("Unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func floatParam(raw string, fallback float32) float32 {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return fallback
	}
	return float32(v)
}
