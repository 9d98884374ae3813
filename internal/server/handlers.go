// ABOUTME: HTTP handlers for documents, question answering, and cache admin
// ABOUTME: Thin JSON adapters over the ingest pipeline and orchestrator
package server

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"docqa/internal/ingest"
	"docqa/internal/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.cache.ListDocuments(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}
	writeJSON(w, http.StatusOK, listDocumentsResponse{Documents: docs})
}

// handleUpload ingests a multipart file. The caller may pin the document id
// with a document_id form field, otherwise a fresh one is minted.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, fmt.Errorf("%w: parsing multipart form: %v", models.ErrValidation, err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, fmt.Errorf("%w: missing file field", models.ErrValidation))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, fmt.Errorf("%w: reading upload: %v", models.ErrValidation, err))
		return
	}

	id := r.FormValue("document_id")
	if id == "" {
		id = ingest.NewDocumentID()
	}

	result, err := s.pipeline.Ingest(r.Context(), id, header.Filename, data)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		DocumentID:    result.Document.ID,
		Status:        string(result.Document.Status),
		ChunksCreated: result.ChunksCreated,
		SupabasePath:  result.Document.StoragePath,
	})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, fmt.Errorf("%w: missing document id", models.ErrValidation))
		return
	}
	if err := s.pipeline.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "deleted", DocumentID: id})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.orch.AnswerAll(r.Context(), []string{req.DocumentID}, req.Questions)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, runResponse{
		Answers:    result.Answers,
		CacheHit:   result.CacheHit,
		DocumentID: req.DocumentID,
	})
}

func (s *Server) handleGlobalQuery(w http.ResponseWriter, r *http.Request) {
	var req globalQueryRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.orch.GlobalQuery(r.Context(), req.Query, req.TopK, req.MaxDocs, req.DocumentIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, globalQueryResponse{
		Answer:            result.Answer.Answer,
		Confidence:        result.Answer.Confidence,
		ConfidenceLabel:   string(result.Answer.ConfidenceLabel),
		Sources:           result.Answer.Sources,
		ChunksSearched:    result.ChunksSearched,
		DocumentsSearched: result.DocumentsSearched,
		CacheHit:          result.CacheHit,
	})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

func (s *Server) handleCacheRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.cache.Refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	log.Printf("[Server] Cache refreshed (%s mode)", s.cache.RefreshMode())
	writeJSON(w, http.StatusOK, statusResponse{Status: "refreshed", Mode: s.cache.RefreshMode()})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	dropped := s.cache.Clear()
	log.Printf("[Server] Cache cleared, %d documents dropped", dropped)
	writeJSON(w, http.StatusOK, statusResponse{Status: "cleared", Dropped: dropped})
}
