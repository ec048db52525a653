// Command server wires every collaborator described in spec §6 into the
// HTTP surface: configuration, the relational store, the search engine,
// the embedding model, the chosen language-model provider, and the
// orchestrator that strings pipeline stages together per request.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/driftwell/discoveryengine/internal/canonicalize"
	"github.com/driftwell/discoveryengine/internal/config"
	"github.com/driftwell/discoveryengine/internal/embeddings"
	"github.com/driftwell/discoveryengine/internal/explain"
	"github.com/driftwell/discoveryengine/internal/httpapi"
	"github.com/driftwell/discoveryengine/internal/llm"
	"github.com/driftwell/discoveryengine/internal/llm/anthropicchat"
	"github.com/driftwell/discoveryengine/internal/llm/geminichat"
	"github.com/driftwell/discoveryengine/internal/llm/openaichat"
	"github.com/driftwell/discoveryengine/internal/logging"
	"github.com/driftwell/discoveryengine/internal/orchestrator"
	"github.com/driftwell/discoveryengine/internal/relational"
	"github.com/driftwell/discoveryengine/internal/searchengine"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "discoveryengine:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := relational.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("relational: %w", err)
	}
	defer db.Close()

	engine, err := searchengine.New(&searchengine.Config{
		URL:    cfg.SearchEngineURL,
		APIKey: cfg.SearchEngineAPIKey,
	})
	if err != nil {
		return fmt.Errorf("searchengine: %w", err)
	}

	model, err := buildChatModel(ctx, cfg)
	if err != nil {
		return fmt.Errorf("llm: %w", err)
	}

	embedder, err := embeddings.New(&embeddings.Config{
		APIKey:     cfg.LLMAPIKey,
		BaseURL:    cfg.LLMBaseURL,
		Model:      cfg.EmbeddingModel,
		Dimensions: cfg.EmbeddingDimensions,
	})
	if err != nil {
		return fmt.Errorf("embeddings: %w", err)
	}

	var cache *explain.Cache
	if cfg.CacheEnabled {
		cache = explain.NewCache(cfg.CacheMaxSize, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	}

	orch := &orchestrator.Orchestrator{
		Model:                      model,
		Embedder:                   embedder,
		Engine:                     engine,
		DB:                         db,
		Canon:                      canonicalize.New(engine),
		Vocab:                      db,
		Cache:                      cache,
		SearchLog:                  db,
		Logger:                     logger,
		ConceptualExpansionEnabled: cfg.ConceptualExpansionEnabled,
	}

	handler := &httpapi.Handler{
		Search: orch,
		Vocab:  db,
		Admin:  db,
		Logger: logger,
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           httpapi.Router(handler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("address", cfg.ServerAddress), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

func buildChatModel(ctx context.Context, cfg *config.Config) (llm.ChatModel, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return openaichat.New(&openaichat.Config{APIKey: cfg.LLMAPIKey, BaseURL: cfg.LLMBaseURL, Model: cfg.LLMModel})
	case config.ProviderAnthropic:
		return anthropicchat.New(&anthropicchat.Config{APIKey: cfg.LLMAPIKey, Model: cfg.LLMModel, MaxTokens: 4096})
	case config.ProviderGemini:
		return geminichat.New(ctx, &geminichat.Config{APIKey: cfg.LLMAPIKey, Model: cfg.LLMModel})
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}
