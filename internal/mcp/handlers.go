// ABOUTME: MCP tool handler implementations for the document QA engine
// ABOUTME: Thin adapters marshaling engine results to JSON tool responses
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"docqa/internal/cache"
	"docqa/internal/models"
	"docqa/internal/orchestrator"
	"docqa/internal/retrieval"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	orch      *orchestrator.Orchestrator
	cache     *cache.Manager
	retriever *retrieval.Engine
	embedder  orchestrator.Embedder
}

// AskDocument handles the ask_document tool
func (h *Handlers) AskDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError("document_id argument is required and must be a string"), nil
	}
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question argument is required and must be a string"), nil
	}

	result, err := h.orch.AnswerAll(ctx, []string{documentID}, []string{question})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("answering failed: %v", err)), nil
	}

	responseJSON, err := json.MarshalIndent(result.Answers[0], "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// SearchDocuments handles the search_documents tool
func (h *Handlers) SearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	documentID := request.GetString("document_id", "")
	maxResults := request.GetInt("max_results", 5)

	scope := []string{documentID}
	if documentID == "" {
		known, err := h.cache.KnownIDs(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing documents failed: %v", err)), nil
		}
		if len(known) == 0 {
			return mcp.NewToolResultError("no documents have been ingested"), nil
		}
		scope = known
	}

	vectors, err := h.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("embedding query failed: %v", err)), nil
	}

	ranked, err := h.retriever.Retrieve(ctx, vectors[0], scope, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	type match struct {
		DocumentID string  `json:"document_id"`
		ChunkID    int     `json:"chunk_id"`
		Score      float64 `json:"similarity_score"`
		Text       string  `json:"text"`
	}
	matches := make([]match, len(ranked))
	for i, sc := range ranked {
		matches[i] = match{
			DocumentID: sc.DocumentID,
			ChunkID:    sc.Chunk.ChunkID,
			Score:      sc.Score,
			Text:       sc.Chunk.Text,
		}
	}

	responseJSON, err := json.MarshalIndent(map[string]interface{}{
		"query":   query,
		"matches": matches,
	}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// ListDocuments handles the list_documents tool
func (h *Handlers) ListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := h.cache.ListDocuments(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing documents failed: %v", err)), nil
	}
	if docs == nil {
		docs = []models.Document{}
	}

	responseJSON, err := json.MarshalIndent(map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
	}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// CacheStats handles the cache_stats tool
func (h *Handlers) CacheStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	responseJSON, err := json.MarshalIndent(h.cache.Stats(), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
