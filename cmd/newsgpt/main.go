package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/newsgpt/newsgpt/internal/config"
	"github.com/newsgpt/newsgpt/internal/domain"
	logpkg "github.com/newsgpt/newsgpt/internal/logger"
	"github.com/newsgpt/newsgpt/internal/metrics"
	"github.com/newsgpt/newsgpt/internal/repository/elastic"
	"github.com/newsgpt/newsgpt/internal/repository/embcache"
	redisrepo "github.com/newsgpt/newsgpt/internal/repository/redis"
	"github.com/newsgpt/newsgpt/internal/transport/alphavantage"
	chiTransport "github.com/newsgpt/newsgpt/internal/transport/chi"
	openaiTransport "github.com/newsgpt/newsgpt/internal/transport/openai"
	"github.com/newsgpt/newsgpt/internal/version"
	analysisuc "github.com/newsgpt/newsgpt/internal/usecase/analysis"
	ingestuc "github.com/newsgpt/newsgpt/internal/usecase/ingest"
	newsuc "github.com/newsgpt/newsgpt/internal/usecase/news"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting newsgpt API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("elasticsearch_url", cfg.Elasticsearch.URL),
		zap.String("index", cfg.Elasticsearch.Index),
	)

	store, err := elastic.New(cfg.Elasticsearch.URL, cfg.Elasticsearch.Index, logger)
	if err != nil {
		logger.Fatal("Failed to create document store", zap.Error(err))
	}

	// Startup convenience: create the index with mappings when missing.
	// Failures are logged inside, never fatal.
	ensureCtx, cancelEnsure := context.WithTimeout(context.Background(), 10*time.Second)
	store.EnsureIndex(ensureCtx, elastic.NewsMapping(cfg.Embedding.Dimensions))
	cancelEnsure()

	// Register provider metrics explicitly (no init())
	metrics.RegisterProviderMetrics()

	embedder := buildEmbedder(cfg, logger)

	chatClient := openaiTransport.NewChatClient(&openaiTransport.ChatConfig{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Logger:  logger,
	})

	market := &marketDataSource{client: alphavantage.NewClient(&alphavantage.Config{
		APIKey:  cfg.AlphaVantage.APIKey,
		BaseURL: cfg.AlphaVantage.BaseURL,
		Logger:  logger,
	})}

	// Pass nil interfaces (not typed nil pointers!) when embeddings are
	// disabled. Go gotcha: a typed nil wrapped in an interface != nil.
	var ingestEmbedder ingestuc.Embedder
	var queryEmbedder newsuc.Embedder
	if embedder != nil {
		ingestEmbedder = embedder
		queryEmbedder = embedder
	}

	ingestSvc := ingestuc.New(store, market, ingestEmbedder, logger)
	newsSvc := newsuc.New(store, queryEmbedder)
	analysisSvc := analysisuc.New(newsSvc, chatClient, logger)

	server := chiTransport.NewServer(ingestSvc, newsSvc, analysisSvc, store, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		// No write timeout: the event stream endpoint holds the connection
		// open for as long as the model keeps generating.
		WriteTimeout: 0,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the embedding chain: OpenAI -> cache (when Redis
// is configured). Returns nil when no embedding model is configured.
func buildEmbedder(cfg config.Config, logger *zap.Logger) embcache.Embedder {
	if cfg.Embedding.Model == "" {
		logger.Info("Embeddings disabled, search runs without similarity rerank")
		return nil
	}

	var embedder embcache.Embedder = openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	if len(cfg.Cache.Addrs) > 0 {
		kv, err := redisrepo.NewStore(redisrepo.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create embedding cache store", zap.Error(err))
		}
		if err := kv.WaitForReady(context.Background(), 10*time.Second); err != nil {
			logger.Fatal("Embedding cache not ready", zap.Error(err))
		}
		embedder = embcache.New(embedder, kv, metrics.EmbeddingCacheTotal, logger)
		logger.Info("Embedding cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)
	return embedder
}

// marketDataSource adapts the Alpha Vantage client to the ingestion contract.
type marketDataSource struct {
	client *alphavantage.Client
}

func (m *marketDataSource) FetchLatest(ctx context.Context, q ingestuc.FeedQuery) ([]domain.NewsArticle, error) {
	return m.client.FetchNewsSentiment(ctx, alphavantage.NewsQuery{
		Tickers:  q.Tickers,
		Topics:   q.Topics,
		TimeFrom: q.TimeFrom,
		TimeTo:   q.TimeTo,
		Sort:     q.Sort,
		Limit:    q.Limit,
	})
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
