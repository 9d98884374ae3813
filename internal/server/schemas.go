// ABOUTME: Request/response schemas and the JSON error envelope
// ABOUTME: Strict decoding with unknown fields rejected, validator/v10 tags
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"docqa/internal/models"
)

type runRequest struct {
	DocumentID string   `json:"document_id" validate:"required"`
	Questions  []string `json:"questions" validate:"required,min=1,dive,required"`
}

type runResponse struct {
	Answers    []models.AnswerRecord `json:"answers"`
	CacheHit   bool                  `json:"cache_hit"`
	DocumentID string                `json:"document_id"`
}

type globalQueryRequest struct {
	Query       string   `json:"query" validate:"required"`
	TopK        int      `json:"top_k" validate:"omitempty,min=1,max=50"`
	MaxDocs     int      `json:"max_docs" validate:"omitempty,min=1,max=100"`
	DocumentIDs []string `json:"document_ids" validate:"omitempty,dive,required"`
}

type globalQueryResponse struct {
	Answer            string            `json:"answer"`
	Confidence        float64           `json:"confidence"`
	ConfidenceLabel   string            `json:"confidence_label"`
	Sources           []models.Citation `json:"sources"`
	ChunksSearched    int               `json:"chunks_searched"`
	DocumentsSearched int               `json:"documents_searched"`
	CacheHit          bool              `json:"cache_hit"`
}

type uploadResponse struct {
	DocumentID    string `json:"document_id"`
	Status        string `json:"status"`
	ChunksCreated int    `json:"chunks_created"`
	SupabasePath  string `json:"supabase_path"`
}

type listDocumentsResponse struct {
	Documents []models.Document `json:"documents"`
}

type statusResponse struct {
	Status     string `json:"status"`
	DocumentID string `json:"document_id,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Dropped    int    `json:"documents_dropped,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// decodeJSON parses and validates a request body. Unknown fields are a
// validation error, matching the strict contract of the API.
func (s *Server) decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", models.ErrValidation, err)
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: field %s failed %s validation", models.ErrValidation, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already out, nothing left to do but log
		log.Printf("[Server] Failed to encode response: %v", err)
	}
}

func writeErrorEnvelope(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Kind: kind, Message: message}})
}

// writeError maps an engine error to its HTTP status via the error kind
func writeError(w http.ResponseWriter, err error) {
	kind := models.ErrorKind(err)
	status := http.StatusInternalServerError
	switch kind {
	case "validation_error":
		status = http.StatusBadRequest
	case "not_found":
		status = http.StatusNotFound
	case "upstream_error":
		status = http.StatusBadGateway
	case "conflict":
		status = http.StatusConflict
	}
	writeErrorEnvelope(w, status, kind, err.Error())
}
