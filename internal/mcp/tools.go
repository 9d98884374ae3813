// ABOUTME: MCP tool definitions and registration for the document QA engine
// ABOUTME: Defines JSON schemas for the four tools exposed over stdio
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"docqa/internal/cache"
	"docqa/internal/orchestrator"
	"docqa/internal/retrieval"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, orch *orchestrator.Orchestrator, cacheMgr *cache.Manager, retriever *retrieval.Engine, embedder orchestrator.Embedder) *Handlers {
	handlers := &Handlers{
		orch:      orch,
		cache:     cacheMgr,
		retriever: retriever,
		embedder:  embedder,
	}

	// 1. ask_document - Answer a question against one ingested document
	server.AddTool(mcp.Tool{
		Name:        "ask_document",
		Description: "Answer a question against one ingested document. Returns the answer with confidence and source citations.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"document_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the document to answer against",
				},
				"question": map[string]interface{}{
					"type":        "string",
					"description": "Question to answer",
				},
			},
			Required: []string{"document_id", "question"},
		},
	}, handlers.AskDocument)

	// 2. search_documents - Raw similarity search without answer synthesis
	server.AddTool(mcp.Tool{
		Name:        "search_documents",
		Description: "Run a similarity search over ingested documents and return the matching chunks with scores, without generating an answer.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"document_id": map[string]interface{}{
					"type":        "string",
					"description": "Optional document ID to restrict the search to",
				},
				"max_results": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of chunks to return (default: 5)",
					"default":     5,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchDocuments)

	// 3. list_documents - Enumerate ingested documents
	server.AddTool(mcp.Tool{
		Name:        "list_documents",
		Description: "List all ingested documents with their status and chunk counts.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ListDocuments)

	// 4. cache_stats - Vector cache metrics
	server.AddTool(mcp.Tool{
		Name:        "cache_stats",
		Description: "Report vector cache metrics: resident documents, chunk and vector counts, approximate memory use, and refresh mode.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.CacheStats)

	return handlers
}
