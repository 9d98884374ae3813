// ABOUTME: Tests for the flat cosine index and merged multi-document search
// ABOUTME: Verifies ordering, determinism, tie-breaking, and dimension checks
package vectorindex

import (
	"errors"
	"testing"

	"docqa/internal/models"
)

func TestBuild_Validation(t *testing.T) {
	if _, err := Build(nil); !errors.Is(err, models.ErrValidation) {
		t.Errorf("Build(nil) error = %v, want validation error", err)
	}

	_, err := Build([][]float64{{1, 0}, {1, 0, 0}})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("Build(mixed dims) error = %v, want validation error", err)
	}
}

func TestSearch_OrdersByDescendingScore(t *testing.T) {
	idx, err := Build([][]float64{
		{0, 1},  // orthogonal to query
		{1, 0},  // identical to query
		{1, 1},  // 45 degrees
		{-1, 0}, // opposite
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	hits, err := idx.Search([]float64{1, 0}, 4)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	wantOrder := []int{1, 2, 0, 3}
	if len(hits) != 4 {
		t.Fatalf("len(hits) = %d, want 4", len(hits))
	}
	for i, want := range wantOrder {
		if hits[i].ChunkIndex != want {
			t.Errorf("hits[%d].ChunkIndex = %d, want %d", i, hits[i].ChunkIndex, want)
		}
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("scores not non-increasing at %d: %f > %f", i, hits[i].Score, hits[i-1].Score)
		}
	}
	if hits[0].Score < 0.999 {
		t.Errorf("identical vector score = %f, want ~1.0", hits[0].Score)
	}
}

func TestSearch_TieBreaksByChunkIndex(t *testing.T) {
	// Three identical vectors: scores tie exactly
	idx, err := Build([][]float64{{2, 0}, {3, 0}, {5, 0}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for trial := 0; trial < 5; trial++ {
		hits, err := idx.Search([]float64{1, 0}, 3)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		for i, h := range hits {
			if h.ChunkIndex != i {
				t.Fatalf("trial %d: hits[%d].ChunkIndex = %d, want %d", trial, i, h.ChunkIndex, i)
			}
		}
	}
}

func TestSearch_TruncatesToK(t *testing.T) {
	idx, err := Build([][]float64{{1, 0}, {0, 1}, {1, 1}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	hits, err := idx.Search([]float64{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("len(hits) = %d, want 2", len(hits))
	}

	// Fewer vectors than k is fine
	hits, err = idx.Search([]float64{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 3 {
		t.Errorf("len(hits) = %d, want 3", len(hits))
	}
}

func TestSearch_DimensionMismatch(t *testing.T) {
	idx, err := Build([][]float64{{1, 0, 0}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, err := idx.Search([]float64{1, 0}, 1); !errors.Is(err, models.ErrValidation) {
		t.Errorf("Search(wrong dim) error = %v, want validation error", err)
	}
}

func TestSearchAll_MergesGlobally(t *testing.T) {
	docA, err := Build([][]float64{{1, 0}, {0.9, 0.1}})
	if err != nil {
		t.Fatalf("Build(docA) error = %v", err)
	}
	docB, err := Build([][]float64{{0, 1}, {0.95, 0.05}})
	if err != nil {
		t.Fatalf("Build(docB) error = %v", err)
	}

	indexes := map[string]*Index{"a": docA, "b": docB}
	hits, err := SearchAll(indexes, []float64{1, 0}, 3)
	if err != nil {
		t.Fatalf("SearchAll() error = %v", err)
	}

	if len(hits) != 3 {
		t.Fatalf("len(hits) = %d, want 3", len(hits))
	}
	// Global best is a/0 (exact match), then b/1, then a/1
	want := []DocHit{
		{DocumentID: "a", ChunkIndex: 0},
		{DocumentID: "b", ChunkIndex: 1},
		{DocumentID: "a", ChunkIndex: 1},
	}
	for i, w := range want {
		if hits[i].DocumentID != w.DocumentID || hits[i].ChunkIndex != w.ChunkIndex {
			t.Errorf("hits[%d] = %s/%d, want %s/%d",
				i, hits[i].DocumentID, hits[i].ChunkIndex, w.DocumentID, w.ChunkIndex)
		}
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("merged scores not non-increasing at %d", i)
		}
	}
}

func TestSearchAll_Deterministic(t *testing.T) {
	// Identical vectors across documents: ties break by document id then index
	docA, _ := Build([][]float64{{1, 0}})
	docB, _ := Build([][]float64{{1, 0}})
	indexes := map[string]*Index{"b": docB, "a": docA}

	for trial := 0; trial < 5; trial++ {
		hits, err := SearchAll(indexes, []float64{1, 0}, 2)
		if err != nil {
			t.Fatalf("SearchAll() error = %v", err)
		}
		if hits[0].DocumentID != "a" || hits[1].DocumentID != "b" {
			t.Fatalf("trial %d: order = %s,%s, want a,b", trial, hits[0].DocumentID, hits[1].DocumentID)
		}
	}
}

func TestNormalize_ZeroVector(t *testing.T) {
	idx, err := Build([][]float64{{0, 0}, {1, 0}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	hits, err := idx.Search([]float64{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if hits[0].ChunkIndex != 1 {
		t.Errorf("best hit = %d, want 1", hits[0].ChunkIndex)
	}
	if hits[1].Score != 0 {
		t.Errorf("zero vector score = %f, want 0", hits[1].Score)
	}
}
