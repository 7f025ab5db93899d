package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chiRouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/newsgpt/newsgpt/internal/domain"
	analysisuc "github.com/newsgpt/newsgpt/internal/usecase/analysis"
	ingestuc "github.com/newsgpt/newsgpt/internal/usecase/ingest"
	newsuc "github.com/newsgpt/newsgpt/internal/usecase/news"
)

type fakeDocStore struct {
	articles map[string]domain.NewsArticle
	results  []domain.NewsArticle
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{articles: make(map[string]domain.NewsArticle)}
}

func (f *fakeDocStore) Exists(_ context.Context, id string) (bool, error) {
	_, ok := f.articles[id]
	return ok, nil
}

func (f *fakeDocStore) Index(_ context.Context, id string, article domain.NewsArticle) error {
	f.articles[id] = article
	return nil
}

func (f *fakeDocStore) Search(_ context.Context, _ domain.SearchQuery, _, _ int) ([]domain.NewsArticle, error) {
	return f.results, nil
}

func (f *fakeDocStore) GetByID(_ context.Context, id string) (domain.NewsArticle, error) {
	article, ok := f.articles[id]
	if !ok {
		return domain.NewsArticle{}, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return article, nil
}

func (f *fakeDocStore) Delete(_ context.Context, id string) error {
	if _, ok := f.articles[id]; !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	delete(f.articles, id)
	return nil
}

func (f *fakeDocStore) Ping(_ context.Context) error { return nil }

type fakeGenerator struct {
	fragments []string
}

func (g *fakeGenerator) StreamCompletion(_ context.Context, _ domain.GenerationRequest, h domain.StreamHandler) error {
	for _, f := range g.fragments {
		if err := h.OnFragment(f); err != nil {
			return err
		}
	}
	h.OnComplete()
	return nil
}

func newTestRouter(store *fakeDocStore, gen *fakeGenerator) http.Handler {
	logger := zap.NewNop()
	newsSvc := newsuc.New(store, nil)
	ingestSvc := ingestuc.New(store, nil, nil, logger)
	analysisSvc := analysisuc.New(newsSvc, gen, logger)

	server := NewServer(ingestSvc, newsSvc, analysisSvc, store, logger)
	r := chiRouter.NewRouter()
	server.Routes(r)
	return r
}

func TestIngestNews_InvalidBody(t *testing.T) {
	router := newTestRouter(newFakeDocStore(), &fakeGenerator{})

	req := httptest.NewRequest(http.MethodPost, "/news/ingest", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "Invalid news data provided" {
		t.Errorf("unexpected error message %q", body["error"])
	}
}

func TestIngestNews_Success(t *testing.T) {
	store := newFakeDocStore()
	router := newTestRouter(store, &fakeGenerator{})

	payload := `[{"title":"a","url":"https://example.com/a"}]`
	req := httptest.NewRequest(http.MethodPost, "/news/ingest", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Report struct {
			Written int `json:"written"`
		} `json:"report"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Report.Written != 1 {
		t.Errorf("written = %d, want 1", body.Report.Written)
	}
	if len(store.articles) != 1 {
		t.Errorf("expected 1 stored article, got %d", len(store.articles))
	}
}

func TestGetNewsByID_NotFound(t *testing.T) {
	router := newTestRouter(newFakeDocStore(), &fakeGenerator{})

	req := httptest.NewRequest(http.MethodGet, "/news/deadbeef", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestDeleteNewsByID_AbsentIsOK(t *testing.T) {
	router := newTestRouter(newFakeDocStore(), &fakeGenerator{})

	req := httptest.NewRequest(http.MethodDelete, "/news/deadbeef", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestSearchNews_OK(t *testing.T) {
	store := newFakeDocStore()
	store.results = []domain.NewsArticle{{Title: "hit", URL: "https://example.com/hit"}}
	router := newTestRouter(store, &fakeGenerator{})

	req := httptest.NewRequest(http.MethodGet, "/news/search?ticker=MSFT", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data []domain.NewsArticle `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].Title != "hit" {
		t.Errorf("unexpected data: %+v", body.Data)
	}
}

func TestStreamAnalysis_NoMatchesAnswers404(t *testing.T) {
	router := newTestRouter(newFakeDocStore(), &fakeGenerator{fragments: []string{"x"}})

	req := httptest.NewRequest(http.MethodGet, "/gpt/chatgpt/stream?ticker=MSFT", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("failure before the first event should stay JSON, got %q", ct)
	}
}

func TestStreamAnalysis_StreamsEvents(t *testing.T) {
	store := newFakeDocStore()
	store.results = []domain.NewsArticle{{Title: "t", URL: "https://example.com/t"}}
	router := newTestRouter(store, &fakeGenerator{fragments: []string{"Hello", " world"}})

	req := httptest.NewRequest(http.MethodGet, "/gpt/chatgpt/stream?ticker=MSFT", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "data: \"Hello\"\n\n") {
		t.Errorf("missing first fragment, body %q", body)
	}
	if !strings.HasSuffix(body, "data: [DONE]\n\n") {
		t.Errorf("stream must end with the done frame, body %q", body)
	}
}

func TestHealth_OK(t *testing.T) {
	router := newTestRouter(newFakeDocStore(), &fakeGenerator{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
