// ABOUTME: Answer models for synthesized responses with citations
// ABOUTME: AnswerRecord is ephemeral per-question output, never persisted
package models

// ConfidenceLabel buckets the scalar confidence for display
type ConfidenceLabel string

const (
	ConfidenceHigh   ConfidenceLabel = "high"
	ConfidenceMedium ConfidenceLabel = "medium"
	ConfidenceLow    ConfidenceLabel = "low"
)

// Citation references a chunk that contributed to an answer
type Citation struct {
	DocumentID string  `json:"document_id"`
	ChunkID    int     `json:"chunk_id"`
	Rank       int     `json:"rank"`
	Score      float64 `json:"similarity_score"`
	Preview    string  `json:"preview"`
}

// AnswerRecord is the result of answering one question
type AnswerRecord struct {
	Question           string          `json:"question"`
	Answer             string          `json:"answer"`
	Confidence         float64         `json:"confidence"`
	ConfidenceLabel    ConfidenceLabel `json:"confidence_label"`
	TopSimilarityScore float64         `json:"top_similarity_score"`
	AvgSimilarityScore float64         `json:"avg_similarity_score"`
	Sources            []Citation      `json:"sources"`
	Error              string          `json:"error,omitempty"`
}

// EntryStats describes one resident cache entry
type EntryStats struct {
	DocumentID   string `json:"document_id"`
	ChunkCount   int    `json:"chunk_count"`
	LastAccessed string `json:"last_accessed"`
}

// CacheStats is a snapshot of cache residency and memory use
type CacheStats struct {
	TotalDocuments int          `json:"total_documents"`
	TotalChunks    int          `json:"total_chunks"`
	TotalVectors   int          `json:"total_vectors"`
	ApproxBytes    int64        `json:"approx_bytes"`
	RefreshMode    string       `json:"refresh_mode"`
	LastRefresh    string       `json:"last_refresh,omitempty"`
	Entries        []EntryStats `json:"entries"`
}
