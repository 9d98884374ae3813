// ABOUTME: Document metadata persisted alongside the vector record
// ABOUTME: Tracks ingestion lifecycle status from upload through processed
package models

import "time"

// DocumentStatus tracks where a document is in its ingestion lifecycle
type DocumentStatus string

const (
	StatusUploading  DocumentStatus = "uploading"
	StatusProcessing DocumentStatus = "processing"
	StatusProcessed  DocumentStatus = "processed"
	StatusFailed     DocumentStatus = "failed"
)

// Document is the durable metadata record for one ingested file
type Document struct {
	ID              string         `json:"id"`
	Filename        string         `json:"filename"`
	Status          DocumentStatus `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	ChunkCount      int            `json:"chunk_count"`
	TotalCharacters int            `json:"total_characters"`
	EmbeddingModel  string         `json:"embedding_model"`
	StoragePath     string         `json:"storage_path"`
}
