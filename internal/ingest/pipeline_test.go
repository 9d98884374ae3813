// ABOUTME: Tests for the ingestion pipeline
// ABOUTME: Uses a fake embedder to verify dedup, failure isolation, and persistence
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"docqa/internal/blobstore"
	"docqa/internal/cache"
	"docqa/internal/config"
	"docqa/internal/extract"
	"docqa/internal/models"
)

// fakeEmbedder produces deterministic vectors and counts upstream calls
type fakeEmbedder struct {
	calls atomic.Int64
	fail  error
	block chan struct{} // if set, EmbedTexts waits until closed
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	if f.fail != nil {
		return nil, f.fail
	}
	vectors := make([][]float64, len(texts))
	for i, t := range texts {
		vectors[i] = []float64{float64(len(t)), float64(i + 1), 1}
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbeddingModel() string { return "fake-embedding-model" }

func newTestPipeline(store *blobstore.MemoryStore, emb *fakeEmbedder) (*Pipeline, *cache.Manager) {
	mgr := cache.NewManager(store, config.RefreshLazy)
	return NewPipeline(store, mgr, emb, extract.PlainText{}, 100, 20), mgr
}

func TestIngest_HappyPath(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	emb := &fakeEmbedder{}
	p, mgr := newTestPipeline(store, emb)

	text := strings.Repeat("the quick brown fox ", 20) // 400 chars
	res, err := p.Ingest(ctx, "d1", "report.txt", []byte(text))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if res.Document.Status != models.StatusProcessed {
		t.Errorf("Status = %q, want processed", res.Document.Status)
	}
	if res.ChunksCreated == 0 {
		t.Error("ChunksCreated = 0, want > 0")
	}
	if res.Document.ChunkCount != res.ChunksCreated {
		t.Errorf("ChunkCount = %d, want %d", res.Document.ChunkCount, res.ChunksCreated)
	}
	if res.Document.TotalCharacters != 400 {
		t.Errorf("TotalCharacters = %d, want 400", res.Document.TotalCharacters)
	}
	if res.Document.EmbeddingModel != "fake-embedding-model" {
		t.Errorf("EmbeddingModel = %q", res.Document.EmbeddingModel)
	}

	if !mgr.Resident("d1") {
		t.Error("document not cached after ingest")
	}
	if _, err := store.Get(ctx, cache.RawFilePath("d1", "report.txt")); err != nil {
		t.Errorf("raw file not stored: %v", err)
	}
	if _, err := store.Get(ctx, cache.VectorsPath("d1")); err != nil {
		t.Errorf("vector record not stored: %v", err)
	}
}

func TestIngest_EmptyDocumentFails(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	p, mgr := newTestPipeline(store, &fakeEmbedder{})

	_, err := p.Ingest(ctx, "d2", "empty.txt", nil)
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("Ingest(empty) error = %v, want validation error", err)
	}
	if mgr.Resident("d2") {
		t.Error("empty document cached")
	}
	if store.Len() != 0 && mgr.Resident("d2") {
		t.Error("empty document left durable state")
	}
}

func TestIngest_UnsupportedType(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPipeline(blobstore.NewMemoryStore(), &fakeEmbedder{})

	_, err := p.Ingest(ctx, "d1", "image.png", []byte("bytes"))
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("Ingest(png) error = %v, want validation error", err)
	}
}

func TestIngest_EmbeddingFailureLeavesNoState(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	emb := &fakeEmbedder{fail: fmt.Errorf("rate limited: %w", models.ErrUpstream)}
	p, mgr := newTestPipeline(store, emb)

	_, err := p.Ingest(ctx, "d1", "doc.txt", []byte(strings.Repeat("x", 200)))
	if !errors.Is(err, models.ErrUpstream) {
		t.Fatalf("Ingest() error = %v, want upstream error", err)
	}
	if mgr.Resident("d1") {
		t.Error("failed ingest left a cache entry")
	}
	if store.Len() != 0 {
		t.Errorf("failed ingest left %d durable objects, want 0", store.Len())
	}
}

func TestIngest_ConcurrentDuplicatesCollapse(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	emb := &fakeEmbedder{block: make(chan struct{})}
	p, mgr := newTestPipeline(store, emb)

	data := []byte(strings.Repeat("shared content ", 30))

	var wg, started sync.WaitGroup
	results := make([]*Result, 8)
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		started.Add(1)
		go func(i int) {
			defer wg.Done()
			started.Done()
			results[i], errs[i] = p.Ingest(ctx, "same-id", "doc.txt", data)
		}(i)
	}

	// Let the duplicate callers pile up behind the in-flight embed
	started.Wait()
	time.Sleep(50 * time.Millisecond)
	close(emb.block)
	wg.Wait()

	for i := range errs {
		if errs[i] != nil {
			t.Fatalf("caller %d error = %v", i, errs[i])
		}
		if results[i].Document.ID != "same-id" {
			t.Errorf("caller %d got document %s", i, results[i].Document.ID)
		}
	}

	if got := emb.calls.Load(); got != 1 {
		t.Errorf("embedder calls = %d, want 1 (single-flight)", got)
	}
	if !mgr.Resident("same-id") {
		t.Error("document not cached")
	}
	// Exactly one durable record set: raw file + vectors + meta
	if store.Len() != 3 {
		t.Errorf("store has %d objects, want 3", store.Len())
	}
}

func TestDelete_UnknownDocument(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPipeline(blobstore.NewMemoryStore(), &fakeEmbedder{})

	err := p.Delete(ctx, "ghost")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Delete(ghost) error = %v, want not found", err)
	}
}

func TestDelete_RemovesEverything(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	p, mgr := newTestPipeline(store, &fakeEmbedder{})

	if _, err := p.Ingest(ctx, "d1", "doc.txt", []byte(strings.Repeat("y", 150))); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if err := p.Delete(ctx, "d1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if mgr.Resident("d1") {
		t.Error("entry resident after delete")
	}
	if store.Len() != 0 {
		t.Errorf("store has %d objects after delete, want 0", store.Len())
	}
}

// failingStore rejects puts to paths containing a substring
type failingStore struct {
	blobstore.Store
	failPath string
}

func (f *failingStore) Put(ctx context.Context, path string, data []byte) error {
	if strings.Contains(path, f.failPath) {
		return errors.New("disk full")
	}
	return f.Store.Put(ctx, path, data)
}

func TestIngest_FailedPersistLeavesNothingDurable(t *testing.T) {
	ctx := context.Background()
	inner := blobstore.NewMemoryStore()
	store := &failingStore{Store: inner, failPath: "vectors.json"}
	mgr := cache.NewManager(store, config.RefreshLazy)
	p := NewPipeline(store, mgr, &fakeEmbedder{}, extract.PlainText{}, 100, 20)

	_, err := p.Ingest(ctx, "d1", "doc.txt", []byte(strings.Repeat("z", 150)))
	if !errors.Is(err, models.ErrUpstream) {
		t.Fatalf("Ingest() error = %v, want upstream", err)
	}

	if mgr.Resident("d1") {
		t.Error("entry resident after failed ingest")
	}
	paths, listErr := inner.List(ctx, "")
	if listErr != nil {
		t.Fatalf("List() error = %v", listErr)
	}
	if len(paths) != 0 {
		t.Errorf("durable store holds %v after failed ingest, want nothing", paths)
	}
}
