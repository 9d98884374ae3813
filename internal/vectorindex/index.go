// ABOUTME: Flat exact-search vector index using cosine similarity
// ABOUTME: Vectors are L2-normalized at build time so scoring is a dot product
package vectorindex

import (
	"fmt"
	"math"
	"sort"

	"docqa/internal/models"
)

// Hit is one search result: the position of the vector in build order
// and its cosine similarity to the query
type Hit struct {
	ChunkIndex int
	Score      float64
}

// DocHit is a merged-search result across multiple documents
type DocHit struct {
	DocumentID string
	ChunkIndex int
	Score      float64
}

// Index holds L2-normalized vectors for one document.
// Immutable after Build; safe for concurrent searches.
type Index struct {
	dim     int
	vectors [][]float64
}

// Build creates an index from vectors. All vectors must share one dimension.
func Build(vectors [][]float64) (*Index, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: cannot build index with no vectors", models.ErrValidation)
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: zero-dimension vector", models.ErrValidation)
	}

	normalized := make([][]float64, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, want %d",
				models.ErrValidation, i, len(v), dim)
		}
		normalized[i] = normalize(v)
	}

	return &Index{dim: dim, vectors: normalized}, nil
}

// Dimension returns the vector dimension the index was built with
func (idx *Index) Dimension() int {
	return idx.dim
}

// Size returns the number of indexed vectors
func (idx *Index) Size() int {
	return len(idx.vectors)
}

// Search returns up to k hits ordered by descending similarity.
// Ties break by ascending chunk index so results are deterministic.
func (idx *Index) Search(query []float64, k int) ([]Hit, error) {
	if len(query) != idx.dim {
		return nil, fmt.Errorf("%w: query dimension %d, index dimension %d",
			models.ErrValidation, len(query), idx.dim)
	}
	if k <= 0 {
		return nil, nil
	}

	q := normalize(query)
	hits := make([]Hit, len(idx.vectors))
	for i, v := range idx.vectors {
		var dot float64
		for j := range v {
			dot += v[j] * q[j]
		}
		hits[i] = Hit{ChunkIndex: i, Score: dot}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].ChunkIndex < hits[b].ChunkIndex
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// SearchAll queries each document's index independently and merges the
// candidates by a global sort on score, truncating to k. No combined
// structure is built, so per-document indices stay independently evictable.
func SearchAll(indexes map[string]*Index, query []float64, k int) ([]DocHit, error) {
	if k <= 0 || len(indexes) == 0 {
		return nil, nil
	}

	var merged []DocHit
	for docID, idx := range indexes {
		hits, err := idx.Search(query, k)
		if err != nil {
			return nil, fmt.Errorf("search in document %s: %w", docID, err)
		}
		for _, h := range hits {
			merged = append(merged, DocHit{DocumentID: docID, ChunkIndex: h.ChunkIndex, Score: h.Score})
		}
	}

	sort.SliceStable(merged, func(a, b int) bool {
		if merged[a].Score != merged[b].Score {
			return merged[a].Score > merged[b].Score
		}
		if merged[a].DocumentID != merged[b].DocumentID {
			return merged[a].DocumentID < merged[b].DocumentID
		}
		return merged[a].ChunkIndex < merged[b].ChunkIndex
	})

	if len(merged) > k {
		merged = merged[:k]
	}
	return merged, nil
}

// normalize returns a unit-length copy of v. Zero vectors are returned
// as zero copies so their similarity to everything is 0.
func normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	out := make([]float64, len(v))
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}
