// ABOUTME: Route table for the JSON API
// ABOUTME: Method-scoped mux patterns, health endpoint exempt from auth
package server

import "net/http"

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Document lifecycle
	mux.HandleFunc("GET /documents", s.handleListDocuments)
	mux.HandleFunc("POST /documents/upload", s.handleUpload)
	mux.HandleFunc("DELETE /documents/{id}", s.handleDeleteDocument)

	// Question answering
	mux.HandleFunc("POST /hackrx/run", s.handleRun)
	mux.HandleFunc("POST /query/global", s.handleGlobalQuery)

	// Cache administration
	mux.HandleFunc("GET /cache/stats", s.handleCacheStats)
	mux.HandleFunc("POST /cache/refresh", s.handleCacheRefresh)
	mux.HandleFunc("POST /cache/clear", s.handleCacheClear)

	// Liveness, no auth
	mux.HandleFunc("GET /health", s.handleHealth)
}
