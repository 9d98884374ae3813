// ABOUTME: Main entry point for the document QA HTTP server
// ABOUTME: Wires storage, cache, LLM gateway, and the answering engine
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"docqa/internal/answer"
	"docqa/internal/blobstore"
	"docqa/internal/cache"
	"docqa/internal/config"
	"docqa/internal/extract"
	"docqa/internal/ingest"
	"docqa/internal/llm"
	"docqa/internal/orchestrator"
	"docqa/internal/retrieval"
	"docqa/internal/server"
	"docqa/internal/util"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.AuthToken == "" {
		log.Fatal("AUTH_TOKEN must be set, every API route requires bearer auth")
	}

	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	client, err := llm.NewClient(llm.ClientConfig{
		APIKey:         cfg.OpenAIKey,
		ChatModel:      cfg.ChatModel,
		EmbeddingModel: cfg.EmbeddingModel,
		EmbedBatchSize: cfg.EmbedBatchSize,
		RequestsPerSec: cfg.UpstreamRPS,
		Retry:          util.RetryPolicy{MaxAttempts: cfg.MaxRetries, BaseDelay: cfg.RetryDelay},
	})
	if err != nil {
		log.Fatalf("Failed to initialize OpenAI client: %v", err)
	}

	cacheMgr := cache.NewManager(store, cfg.CacheRefreshMode)
	pipeline := ingest.NewPipeline(store, cacheMgr, client, extract.PlainText{}, cfg.ChunkSize, cfg.ChunkOverlap)
	synth := answer.NewSynthesizer(client, cfg.MaxContextChars, cfg.ConfidenceHigh, cfg.ConfidenceMedium)
	orch := orchestrator.New(cacheMgr, retrieval.NewEngine(cacheMgr), synth, client, cfg.TopK, cfg.MaxConcurrentQuestions)

	srv := server.New(cfg, pipeline, orch, cacheMgr)

	// Shut down cleanly on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received %v, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// newStore builds the durable blob store named by STORAGE_BACKEND
func newStore(cfg *config.Config) (blobstore.Store, error) {
	switch cfg.StorageBackend {
	case config.StorageMinio:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return blobstore.NewMinioStore(ctx, blobstore.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	case config.StorageSQLite:
		return blobstore.NewSQLiteStore(cfg.SQLitePath)
	case config.StorageMemory:
		log.Println("Warning: using in-memory storage, documents will not survive restarts")
		return blobstore.NewMemoryStore(), nil
	default:
		return blobstore.NewLocalStore(cfg.StorageDir)
	}
}
