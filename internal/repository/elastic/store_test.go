package elastic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/newsgpt/newsgpt/internal/domain"
)

// newTestStore points the store at a fake engine. The product header is
// required or the client refuses to talk to the server.
func newTestStore(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	store, err := New(srv.URL, "news", zap.NewNop())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return store
}

func TestExists(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		switch r.URL.Path {
		case "/news/_doc/present":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	exists, err := store.Exists(context.Background(), "present")
	if err != nil || !exists {
		t.Errorf("Exists(present) = %v, %v; want true, nil", exists, err)
	}

	exists, err = store.Exists(context.Background(), "absent")
	if err != nil {
		t.Fatalf("absent document should not be an error: %v", err)
	}
	if exists {
		t.Error("Exists(absent) = true, want false")
	}
}

func TestIndex(t *testing.T) {
	var gotPath string
	var gotDoc domain.NewsArticle
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotDoc)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	article := domain.NewsArticle{Title: "t", URL: "https://example.com/t"}
	if err := store.Index(context.Background(), "abc123", article); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/news/_doc/abc123" {
		t.Errorf("path = %q", gotPath)
	}
	if gotDoc.Title != "t" {
		t.Errorf("indexed doc = %+v", gotDoc)
	}
}

func TestIndex_EngineErrorIsStoreError(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})

	err := store.Index(context.Background(), "abc", domain.NewsArticle{})
	if !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
}

func TestSearch_PreservesEngineOrder(t *testing.T) {
	var gotBody map[string]any
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"hits": {"hits": [
				{"_source": {"title": "first"}},
				{"_source": {"title": "second"}}
			]}
		}`))
	})

	query := domain.SearchQuery{
		Filter: []domain.NestedFilter{
			{Path: "ticker_sentiment", Field: "ticker_sentiment.ticker", Value: "MSFT"},
		},
	}
	items, err := store.Search(context.Background(), query, 20, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(items) != 2 || items[0].Title != "first" || items[1].Title != "second" {
		t.Errorf("hits out of order: %+v", items)
	}
	if gotBody["from"] != float64(20) || gotBody["size"] != float64(10) {
		t.Errorf("pagination not forwarded: %v", gotBody)
	}
	if _, ok := gotBody["query"].(map[string]any)["bool"]; !ok {
		t.Errorf("query body missing bool query: %v", gotBody["query"])
	}
}

func TestGetByID_NotFound(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"found":false}`))
	})

	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetByID_DecodesSource(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/_doc/abc") {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"found":true,"_source":{"title":"hit","url":"https://example.com/hit"}}`))
	})

	article, err := store.GetByID(context.Background(), "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if article.Title != "hit" {
		t.Errorf("article = %+v", article)
	}
}

func TestDelete_NotFound(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	})

	err := store.Delete(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
