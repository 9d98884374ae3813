// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents to query ingested documents via stdio
package commands

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"docqa/internal/answer"
	"docqa/internal/blobstore"
	"docqa/internal/cache"
	"docqa/internal/config"
	"docqa/internal/llm"
	"docqa/internal/mcp"
	"docqa/internal/orchestrator"
	"docqa/internal/retrieval"
	"docqa/internal/util"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs docqa as an MCP (Model Context Protocol) server over stdio,
exposing document question answering and similarity search as tools.

Unlike the other commands this wires the engine locally against the
configured storage backend, it does not need a running HTTP server.`,
		RunE: runMCP,
	}

	return cmd
}

func runMCP(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var store blobstore.Store
	switch cfg.StorageBackend {
	case config.StorageMinio:
		store, err = blobstore.NewMinioStore(cmd.Context(), blobstore.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	case config.StorageSQLite:
		store, err = blobstore.NewSQLiteStore(cfg.SQLitePath)
	case config.StorageMemory:
		store = blobstore.NewMemoryStore()
	default:
		store, err = blobstore.NewLocalStore(cfg.StorageDir)
	}
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
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
		return fmt.Errorf("initializing OpenAI client: %w", err)
	}

	cacheMgr := cache.NewManager(store, cfg.CacheRefreshMode)
	retriever := retrieval.NewEngine(cacheMgr)
	synth := answer.NewSynthesizer(client, cfg.MaxContextChars, cfg.ConfidenceHigh, cfg.ConfidenceMedium)
	orch := orchestrator.New(cacheMgr, retriever, synth, client, cfg.TopK, cfg.MaxConcurrentQuestions)

	server := mcpserver.NewMCPServer("docqa", versionInfo.Version)
	mcp.RegisterTools(server, orch, cacheMgr, retriever, client)

	log.Println("docqa MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
