// ABOUTME: Chunk represents one overlapping character window of a document
// ABOUTME: The unit of embedding, retrieval, and citation
package models

// Chunk is a contiguous rune-range slice of a document's extracted text.
// CharStart and CharEnd are rune offsets forming a half-open range.
type Chunk struct {
	ChunkID   int       `json:"chunk_id"`
	Text      string    `json:"text"`
	CharStart int       `json:"char_start"`
	CharEnd   int       `json:"char_end"`
	Embedding []float64 `json:"embedding,omitempty"`
}

// ScoredChunk is a retrieval result: a chunk, the document it came from,
// and its cosine similarity to the query
type ScoredChunk struct {
	DocumentID string  `json:"document_id"`
	Chunk      Chunk   `json:"chunk"`
	Score      float64 `json:"similarity_score"`
}
