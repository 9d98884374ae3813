// ABOUTME: Retrieval engine: resolves a document scope and ranks chunks by similarity
// ABOUTME: Missing scope documents are collected and reported together
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docqa/internal/cache"
	"docqa/internal/models"
	"docqa/internal/vectorindex"
)

// Engine ranks chunks against query vectors through the cache manager
type Engine struct {
	cache *cache.Manager
}

// NewEngine creates a retrieval engine over the cache
func NewEngine(cacheMgr *cache.Manager) *Engine {
	return &Engine{cache: cacheMgr}
}

// Retrieve returns up to k chunks from the scoped documents, ranked by
// cosine similarity to the query vector. Fewer than k chunks is not an
// error; unknown document ids are, reported together in one error.
func (e *Engine) Retrieve(ctx context.Context, queryVec []float64, docIDs []string, k int) ([]models.ScoredChunk, error) {
	if len(docIDs) == 0 {
		return nil, fmt.Errorf("%w: empty document scope", models.ErrValidation)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", models.ErrValidation, k)
	}

	entries := make(map[string]*cache.Entry, len(docIDs))
	indexes := make(map[string]*vectorindex.Index, len(docIDs))
	var missing []string
	for _, id := range docIDs {
		if _, ok := entries[id]; ok {
			continue // duplicate id in scope
		}
		entry, err := e.cache.Get(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			missing = append(missing, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		entries[id] = entry
		indexes[id] = entry.Index
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: documents not found: %s", models.ErrNotFound, strings.Join(missing, ", "))
	}

	hits, err := vectorindex.SearchAll(indexes, queryVec, k)
	if err != nil {
		return nil, err
	}

	results := make([]models.ScoredChunk, len(hits))
	for i, h := range hits {
		results[i] = models.ScoredChunk{
			DocumentID: h.DocumentID,
			Chunk:      entries[h.DocumentID].Chunks[h.ChunkIndex],
			Score:      h.Score,
		}
	}
	return results, nil
}

// ChunksInScope returns the total chunk count across the scoped documents
func (e *Engine) ChunksInScope(ctx context.Context, docIDs []string) (int, error) {
	total := 0
	seen := make(map[string]bool, len(docIDs))
	for _, id := range docIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		entry, err := e.cache.Get(ctx, id)
		if err != nil {
			return 0, err
		}
		total += len(entry.Chunks)
	}
	return total, nil
}
