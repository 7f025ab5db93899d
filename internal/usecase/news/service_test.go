package news

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/newsgpt/newsgpt/internal/domain"
)

type mockStore struct {
	searchResults []domain.NewsArticle
	searchErr     error
	lastQuery     domain.SearchQuery
	lastFrom      int
	lastSize      int

	article domain.NewsArticle
	getErr  error

	deleteErr error
	deleted   []string
}

func (m *mockStore) Search(_ context.Context, query domain.SearchQuery, from, size int) ([]domain.NewsArticle, error) {
	m.lastQuery = query
	m.lastFrom = from
	m.lastSize = size
	return m.searchResults, m.searchErr
}

func (m *mockStore) GetByID(_ context.Context, id string) (domain.NewsArticle, error) {
	return m.article, m.getErr
}

func (m *mockStore) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return m.deleteErr
}

type mockEmbedder struct {
	vector []float32
	err    error
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return m.vector, m.err
}

func TestSearch_PaginationDefaults(t *testing.T) {
	store := &mockStore{}
	svc := New(store, nil)

	if _, err := svc.Search(context.Background(), domain.SearchFilters{}, -3, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.lastFrom != 0 {
		t.Errorf("negative from should clamp to 0, got %d", store.lastFrom)
	}
	if store.lastSize != 10 {
		t.Errorf("zero size should default to 10, got %d", store.lastSize)
	}
}

func TestSearch_SizeCap(t *testing.T) {
	store := &mockStore{}
	svc := New(store, nil)

	if _, err := svc.Search(context.Background(), domain.SearchFilters{}, 20, 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.lastFrom != 20 {
		t.Errorf("from = %d, want 20", store.lastFrom)
	}
	if store.lastSize != 100 {
		t.Errorf("size should cap at 100, got %d", store.lastSize)
	}
}

func TestSearch_TickerFilterBuildsOneNestedClause(t *testing.T) {
	store := &mockStore{}
	svc := New(store, nil)

	if _, err := svc.Search(context.Background(), domain.SearchFilters{Ticker: "MSFT"}, 0, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.lastQuery.Must) != 0 {
		t.Errorf("ticker-only search should have no scoring clauses, got %d", len(store.lastQuery.Must))
	}
	if len(store.lastQuery.Filter) != 1 {
		t.Fatalf("expected one filter, got %d", len(store.lastQuery.Filter))
	}
	f := store.lastQuery.Filter[0]
	if f.Path != "ticker_sentiment" || f.Field != "ticker_sentiment.ticker" || f.Value != "MSFT" {
		t.Errorf("unexpected filter: %+v", f)
	}
}

func TestSearch_TextWithoutEmbedderIsLexicalOnly(t *testing.T) {
	store := &mockStore{}
	svc := New(store, nil)

	if _, err := svc.Search(context.Background(), domain.SearchFilters{Text: "ai chips"}, 0, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.lastQuery.Must) != 1 {
		t.Fatalf("expected one must clause, got %d", len(store.lastQuery.Must))
	}
	if _, ok := store.lastQuery.Must[0].(domain.TextMatch); !ok {
		t.Errorf("expected TextMatch, got %T", store.lastQuery.Must[0])
	}
}

func TestSearch_TextWithEmbedderAddsRerank(t *testing.T) {
	store := &mockStore{}
	svc := New(store, &mockEmbedder{vector: []float32{0.5}})

	if _, err := svc.Search(context.Background(), domain.SearchFilters{Text: "ai chips", Topic: "technology"}, 0, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.lastQuery.Must) != 2 {
		t.Fatalf("expected text + rerank clauses, got %d", len(store.lastQuery.Must))
	}
	rerank, ok := store.lastQuery.Must[1].(domain.VectorRerank)
	if !ok {
		t.Fatalf("expected VectorRerank second, got %T", store.lastQuery.Must[1])
	}
	if rerank.Field != "embedding" {
		t.Errorf("rerank field = %q, want embedding", rerank.Field)
	}
	if len(store.lastQuery.Filter) != 1 || store.lastQuery.Filter[0].Path != "topics" {
		t.Errorf("unexpected filters: %+v", store.lastQuery.Filter)
	}
}

func TestSearch_EmbedErrorPropagates(t *testing.T) {
	svc := New(&mockStore{}, &mockEmbedder{err: errors.New("embed boom")})

	_, err := svc.Search(context.Background(), domain.SearchFilters{Text: "ai"}, 0, 10)
	if err == nil {
		t.Fatal("expected error when query embedding fails")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	store := &mockStore{getErr: fmt.Errorf("document: %w", domain.ErrNotFound)}
	svc := New(store, nil)

	_, err := svc.GetByID(context.Background(), "abc")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteByID_AbsentIsNoop(t *testing.T) {
	store := &mockStore{deleteErr: fmt.Errorf("document: %w", domain.ErrNotFound)}
	svc := New(store, nil)

	if err := svc.DeleteByID(context.Background(), "abc"); err != nil {
		t.Fatalf("deleting an absent article should be a no-op, got %v", err)
	}
}

func TestDeleteByID_StoreErrorPropagates(t *testing.T) {
	store := &mockStore{deleteErr: fmt.Errorf("delete: %w", domain.ErrStore)}
	svc := New(store, nil)

	if err := svc.DeleteByID(context.Background(), "abc"); !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
}
