// ABOUTME: Ingestion pipeline: extract -> chunk -> embed -> persist -> cache
// ABOUTME: Single-flight per document id so duplicate uploads never double-embed
package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"docqa/internal/blobstore"
	"docqa/internal/cache"
	"docqa/internal/chunker"
	"docqa/internal/extract"
	"docqa/internal/models"
)

// Embedder is the slice of the LLM gateway the pipeline needs
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
	EmbeddingModel() string
}

// Pipeline ingests uploaded documents into durable storage and the cache
type Pipeline struct {
	store     blobstore.Store
	cache     *cache.Manager
	embedder  Embedder
	extractor extract.Extractor

	chunkSize int
	overlap   int

	ingests singleflight.Group
}

// NewPipeline wires the ingestion pipeline
func NewPipeline(store blobstore.Store, cacheMgr *cache.Manager, embedder Embedder, extractor extract.Extractor, chunkSize, overlap int) *Pipeline {
	return &Pipeline{
		store:     store,
		cache:     cacheMgr,
		embedder:  embedder,
		extractor: extractor,
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// NewDocumentID mints a fresh document id
func NewDocumentID() string {
	return uuid.New().String()
}

// Result reports what an ingestion produced
type Result struct {
	Document      models.Document
	ChunksCreated int
}

// Ingest processes one uploaded file. Concurrent calls for the same id
// collapse into a single chunk/embed/persist operation whose result every
// caller receives; the durable record is written exactly once.
func (p *Pipeline) Ingest(ctx context.Context, id, filename string, data []byte) (*Result, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty document id", models.ErrValidation)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", models.ErrValidation)
	}

	v, err, shared := p.ingests.Do(id, func() (interface{}, error) {
		return p.ingest(ctx, id, filename, data)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Printf("[Ingest] Collapsed duplicate ingestion of document %s", id)
	}
	return v.(*Result), nil
}

func (p *Pipeline) ingest(ctx context.Context, id, filename string, data []byte) (*Result, error) {
	doc := models.Document{
		ID:             id,
		Filename:       filename,
		Status:         models.StatusUploading,
		CreatedAt:      time.Now().UTC(),
		EmbeddingModel: p.embedder.EmbeddingModel(),
		StoragePath:    cache.RawFilePath(id, filename),
	}

	text, err := p.extractor.Extract(filename, data)
	if err != nil {
		return nil, err
	}

	doc.Status = models.StatusProcessing
	doc.TotalCharacters = len([]rune(text))

	chunks, err := chunker.Chunk(text, p.chunkSize, p.overlap)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		// Degenerate input: no durable write, document reported failed
		doc.Status = models.StatusFailed
		return nil, fmt.Errorf("%w: document %s contains no text", models.ErrValidation, id)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		doc.Status = models.StatusFailed
		return nil, fmt.Errorf("embedding document %s: %w", id, err)
	}
	if len(vectors) != len(chunks) {
		doc.Status = models.StatusFailed
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks", models.ErrUpstream, len(vectors), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	// Keep the original upload alongside the vector record
	if err := p.store.Put(ctx, doc.StoragePath, data); err != nil {
		return nil, fmt.Errorf("%w: storing raw file for %s: %v", models.ErrUpstream, id, err)
	}

	doc.Status = models.StatusProcessed
	doc.ChunkCount = len(chunks)
	if _, err := p.cache.Put(ctx, doc, chunks); err != nil {
		// Roll back the raw upload so a failed ingest leaves no orphan
		// in durable storage
		_ = p.store.Delete(ctx, doc.StoragePath)
		return nil, err
	}

	log.Printf("[Ingest] Processed document %s (%s): %d chars, %d chunks",
		id, filename, doc.TotalCharacters, len(chunks))
	return &Result{Document: doc, ChunksCreated: len(chunks)}, nil
}

// Delete removes a document from durable storage and the cache.
// Unknown ids fail with a not-found error before anything is touched.
func (p *Pipeline) Delete(ctx context.Context, id string) error {
	ids, err := p.cache.KnownIDs(ctx)
	if err != nil {
		return err
	}
	known := false
	for _, k := range ids {
		if k == id {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: document %s", models.ErrNotFound, id)
	}
	return p.cache.Remove(ctx, id)
}
