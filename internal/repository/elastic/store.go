// Package elastic wraps go-elasticsearch behind the narrow document store
// interface the services use.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"github.com/newsgpt/newsgpt/internal/domain"
)

// Store wraps an Elasticsearch client scoped to one index.
type Store struct {
	es    *elasticsearch.Client
	index string
	log   *zap.Logger
}

// New instantiates the Elasticsearch store.
func New(addr, index string, logger *zap.Logger) (*Store, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{addr},
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{es: es, index: index, log: logger}, nil
}

// Ping checks if Elasticsearch is available.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.es.Ping(s.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}

	return nil
}

// Index writes an article under the given document ID (upsert-by-id). The
// document becomes queryable after the engine's own refresh interval; this
// adapter does not wait it out.
func (s *Store) Index(ctx context.Context, id string, article domain.NewsArticle) error {
	payload, err := json.Marshal(article)
	if err != nil {
		return fmt.Errorf("marshal article: %w: %w", err, domain.ErrStore)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: id,
		Body:       bytes.NewReader(payload),
	}

	res, err := req.Do(ctx, s.es)
	if err != nil {
		return fmt.Errorf("index document: %w: %w", err, domain.ErrStore)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index document failed: %s: %w", readBody(res), domain.ErrStore)
	}

	return nil
}

// Exists reports whether a document with the given ID is present.
// An absent document is false, not an error.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	req := esapi.ExistsRequest{
		Index:      s.index,
		DocumentID: id,
	}

	res, err := req.Do(ctx, s.es)
	if err != nil {
		return false, fmt.Errorf("check document existence: %w: %w", err, domain.ErrStore)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("check document existence failed: %s: %w", res.Status(), domain.ErrStore)
	}
}

// Search runs the query with offset-based pagination and returns articles in
// the engine's relevance order.
func (s *Store) Search(ctx context.Context, query domain.SearchQuery, from, size int) ([]domain.NewsArticle, error) {
	body := map[string]any{
		"from":  from,
		"size":  size,
		"query": query.Body(),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w: %w", err, domain.ErrStore)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w: %w", err, domain.ErrStore)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search failed: %s: %w", readBody(res), domain.ErrStore)
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source domain.NewsArticle `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w: %w", err, domain.ErrStore)
	}

	items := make([]domain.NewsArticle, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		items = append(items, hit.Source)
	}

	return items, nil
}

// GetByID fetches one article. Absent documents map to domain.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (domain.NewsArticle, error) {
	req := esapi.GetRequest{
		Index:      s.index,
		DocumentID: id,
	}

	res, err := req.Do(ctx, s.es)
	if err != nil {
		return domain.NewsArticle{}, fmt.Errorf("get document: %w: %w", err, domain.ErrStore)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return domain.NewsArticle{}, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	if res.IsError() {
		return domain.NewsArticle{}, fmt.Errorf("get document failed: %s: %w", readBody(res), domain.ErrStore)
	}

	var parsed struct {
		Source domain.NewsArticle `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return domain.NewsArticle{}, fmt.Errorf("decode get response: %w: %w", err, domain.ErrStore)
	}

	return parsed.Source, nil
}

// Delete removes a document. Deleting an absent document returns
// domain.ErrNotFound; callers decide whether that matters.
func (s *Store) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{
		Index:      s.index,
		DocumentID: id,
	}

	res, err := req.Do(ctx, s.es)
	if err != nil {
		return fmt.Errorf("delete document: %w: %w", err, domain.ErrStore)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	if res.IsError() {
		return fmt.Errorf("delete document failed: %s: %w", readBody(res), domain.ErrStore)
	}

	return nil
}

// EnsureIndex creates the index with the given mapping when it does not
// exist yet. It is a startup convenience: failures are logged, never
// propagated, and it must not be called on the request path.
func (s *Store) EnsureIndex(ctx context.Context, mapping []byte) {
	existsRes, err := s.es.Indices.Exists(
		[]string{s.index},
		s.es.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		s.log.Error("Failed to check index existence", zap.String("index", s.index), zap.Error(err))
		return
	}
	existsRes.Body.Close()

	if existsRes.StatusCode == http.StatusOK {
		s.log.Info("Index already exists", zap.String("index", s.index))
		return
	}

	s.log.Info("Index does not exist, creating with mappings", zap.String("index", s.index))

	res, err := s.es.Indices.Create(
		s.index,
		s.es.Indices.Create.WithContext(ctx),
		s.es.Indices.Create.WithBody(bytes.NewReader(mapping)),
	)
	if err != nil {
		s.log.Error("Failed to create index", zap.String("index", s.index), zap.Error(err))
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		s.log.Error("Index creation failed",
			zap.String("index", s.index),
			zap.String("response", readBody(res)),
		)
		return
	}

	s.log.Info("Index created", zap.String("index", s.index))
}

func readBody(res *esapi.Response) string {
	data, _ := io.ReadAll(res.Body)
	return strings.TrimSpace(string(data))
}
