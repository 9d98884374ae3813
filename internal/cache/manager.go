// ABOUTME: In-memory vector cache backed by durable object storage
// ABOUTME: Per-document entries with single-flight lazy loads and wholesale replacement
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"docqa/internal/blobstore"
	"docqa/internal/config"
	"docqa/internal/models"
	"docqa/internal/vectorindex"
)

// Object layout under the durable store
const (
	documentsPrefix = "documents/"
	filesPrefix     = "files/"
)

// MetaPath returns the storage path of a document's metadata object
func MetaPath(id string) string {
	return path.Join(documentsPrefix+id, "meta.json")
}

// VectorsPath returns the storage path of a document's chunk+vector record
func VectorsPath(id string) string {
	return path.Join(documentsPrefix+id, "vectors.json")
}

// RawFilePath returns the storage path of the originally uploaded file
func RawFilePath(id, filename string) string {
	return path.Join(filesPrefix+id, filename)
}

// Entry is the resident state for one document. Chunks, Index, and Document
// are immutable once the entry is published; entries are replaced wholesale,
// never patched, so readers can never observe a mixed chunk/vector pairing.
type Entry struct {
	Document models.Document
	Chunks   []models.Chunk
	Index    *vectorindex.Index

	lastAccessed atomic.Int64 // unix nanos
}

// LastAccessed returns when the entry was last returned from Get
func (e *Entry) LastAccessed() time.Time {
	return time.Unix(0, e.lastAccessed.Load())
}

func (e *Entry) touch() {
	e.lastAccessed.Store(time.Now().UnixNano())
}

// approxBytes estimates the resident footprint of the entry
func (e *Entry) approxBytes() int64 {
	var total int64
	for _, c := range e.Chunks {
		total += int64(len(c.Text))
		// embedding plus the normalized copy inside the index
		total += int64(len(c.Embedding)) * 8 * 2
	}
	return total
}

// Manager owns the document -> Entry map. The map lock only guards the map
// itself; loads and ingests for one document are collapsed by the
// single-flight group, so unrelated documents never wait on each other.
type Manager struct {
	store       blobstore.Store
	refreshMode string

	mu          sync.RWMutex
	entries     map[string]*Entry
	lastRefresh time.Time

	loads singleflight.Group
}

// NewManager creates a cache over the given durable store.
// refreshMode is config.RefreshLazy or config.RefreshEager.
func NewManager(store blobstore.Store, refreshMode string) *Manager {
	if refreshMode == "" {
		refreshMode = config.RefreshLazy
	}
	return &Manager{
		store:       store,
		refreshMode: refreshMode,
		entries:     make(map[string]*Entry),
	}
}

// RefreshMode reports the active refresh policy
func (m *Manager) RefreshMode() string {
	return m.refreshMode
}

// Resident reports whether the document is currently in memory
func (m *Manager) Resident(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[id]
	return ok
}

// Get returns the entry for a document, lazily loading it from durable
// storage if not resident. Concurrent callers for the same id share one
// in-flight load.
func (m *Manager) Get(ctx context.Context, id string) (*Entry, error) {
	m.mu.RLock()
	entry, ok := m.entries[id]
	m.mu.RUnlock()
	if ok {
		entry.touch()
		return entry, nil
	}

	v, err, _ := m.loads.Do(id, func() (interface{}, error) {
		// Re-check residency: another caller may have finished a load or
		// an ingest between our miss and this closure running.
		m.mu.RLock()
		e, ok := m.entries[id]
		m.mu.RUnlock()
		if ok {
			return e, nil
		}

		loaded, err := m.load(ctx, id)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.entries[id] = loaded
		m.mu.Unlock()
		log.Printf("[Cache] Loaded document %s (%d chunks)", id, len(loaded.Chunks))
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	entry = v.(*Entry)
	entry.touch()
	return entry, nil
}

// load reads a document's persisted record and rebuilds its index
func (m *Manager) load(ctx context.Context, id string) (*Entry, error) {
	metaData, err := m.store.Get(ctx, MetaPath(id))
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: document %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: loading metadata for %s: %v", models.ErrUpstream, id, err)
	}

	var doc models.Document
	if err := json.Unmarshal(metaData, &doc); err != nil {
		return nil, fmt.Errorf("corrupt metadata for %s: %w", id, err)
	}

	vecData, err := m.store.Get(ctx, VectorsPath(id))
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: document %s has no vector record", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: loading vectors for %s: %v", models.ErrUpstream, id, err)
	}

	var chunks []models.Chunk
	if err := json.Unmarshal(vecData, &chunks); err != nil {
		return nil, fmt.Errorf("corrupt vector record for %s: %w", id, err)
	}

	return newEntry(doc, chunks)
}

func newEntry(doc models.Document, chunks []models.Chunk) (*Entry, error) {
	vectors := make([][]float64, len(chunks))
	for i, c := range chunks {
		vectors[i] = c.Embedding
	}
	idx, err := vectorindex.Build(vectors)
	if err != nil {
		return nil, fmt.Errorf("building index for %s: %w", doc.ID, err)
	}

	entry := &Entry{Document: doc, Chunks: chunks, Index: idx}
	entry.touch()
	return entry, nil
}

// Put persists the chunks and metadata to durable storage, then swaps the
// in-memory entry wholesale. A failed persist leaves no cache entry, so the
// cache never holds state durable storage cannot reproduce.
func (m *Manager) Put(ctx context.Context, doc models.Document, chunks []models.Chunk) (*Entry, error) {
	entry, err := newEntry(doc, chunks)
	if err != nil {
		return nil, err
	}

	vecData, err := json.Marshal(chunks)
	if err != nil {
		return nil, fmt.Errorf("marshaling vector record for %s: %w", doc.ID, err)
	}
	metaData, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling metadata for %s: %w", doc.ID, err)
	}

	if err := m.store.Put(ctx, VectorsPath(doc.ID), vecData); err != nil {
		return nil, fmt.Errorf("%w: persisting vectors for %s: %v", models.ErrUpstream, doc.ID, err)
	}
	if err := m.store.Put(ctx, MetaPath(doc.ID), metaData); err != nil {
		// Roll back the half-written record so enumeration stays consistent
		_ = m.store.Delete(ctx, VectorsPath(doc.ID))
		return nil, fmt.Errorf("%w: persisting metadata for %s: %v", models.ErrUpstream, doc.ID, err)
	}

	m.mu.Lock()
	m.entries[doc.ID] = entry
	m.mu.Unlock()

	log.Printf("[Cache] Cached document %s (%d chunks, %d vectors)", doc.ID, len(chunks), len(chunks))
	return entry, nil
}

// Remove deletes a document from durable storage, then drops the resident
// entry. The durable delete must succeed for the removal to be final.
func (m *Manager) Remove(ctx context.Context, id string) error {
	filePaths, err := m.store.List(ctx, filesPrefix+id+"/")
	if err != nil {
		return fmt.Errorf("%w: listing files for %s: %v", models.ErrUpstream, id, err)
	}
	for _, p := range filePaths {
		if err := m.store.Delete(ctx, p); err != nil {
			return fmt.Errorf("%w: deleting %s: %v", models.ErrUpstream, p, err)
		}
	}
	if err := m.store.Delete(ctx, VectorsPath(id)); err != nil {
		return fmt.Errorf("%w: deleting vectors for %s: %v", models.ErrUpstream, id, err)
	}
	if err := m.store.Delete(ctx, MetaPath(id)); err != nil {
		return fmt.Errorf("%w: deleting metadata for %s: %v", models.ErrUpstream, id, err)
	}

	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()

	log.Printf("[Cache] Removed document %s", id)
	return nil
}

// Clear drops all resident entries without touching durable storage
func (m *Manager) Clear() int {
	m.mu.Lock()
	count := len(m.entries)
	m.entries = make(map[string]*Entry)
	m.mu.Unlock()

	log.Printf("[Cache] Cleared %d entries", count)
	return count
}

// Refresh drops all entries and reloads known documents per the active
// policy: lazy drops only (reload on next access), eager blocks until every
// document enumerated from durable storage is resident again.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]*Entry)
	m.lastRefresh = time.Now()
	m.mu.Unlock()

	if m.refreshMode == config.RefreshLazy {
		log.Printf("[Cache] Lazy refresh: entries dropped, reload on next access")
		return nil
	}

	ids, err := m.KnownIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := m.Get(ctx, id); err != nil {
			return fmt.Errorf("eager refresh of %s: %w", id, err)
		}
	}
	log.Printf("[Cache] Eager refresh: reloaded %d documents", len(ids))
	return nil
}

// KnownIDs enumerates every document id present in durable storage
func (m *Manager) KnownIDs(ctx context.Context) ([]string, error) {
	paths, err := m.store.List(ctx, documentsPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: enumerating documents: %v", models.ErrUpstream, err)
	}

	var ids []string
	for _, p := range paths {
		rest, ok := strings.CutPrefix(p, documentsPrefix)
		if !ok {
			continue
		}
		id, file, ok := strings.Cut(rest, "/")
		if !ok || file != "meta.json" {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ListDocuments returns metadata for every known document, preferring the
// resident copy when available
func (m *Manager) ListDocuments(ctx context.Context) ([]models.Document, error) {
	ids, err := m.KnownIDs(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]models.Document, 0, len(ids))
	for _, id := range ids {
		m.mu.RLock()
		entry, ok := m.entries[id]
		m.mu.RUnlock()
		if ok {
			docs = append(docs, entry.Document)
			continue
		}

		data, err := m.store.Get(ctx, MetaPath(id))
		if errors.Is(err, blobstore.ErrNotFound) {
			continue // deleted between list and read
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading metadata for %s: %v", models.ErrUpstream, id, err)
		}
		var doc models.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("corrupt metadata for %s: %w", id, err)
		}
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(a, b int) bool {
		if !docs[a].CreatedAt.Equal(docs[b].CreatedAt) {
			return docs[a].CreatedAt.After(docs[b].CreatedAt)
		}
		return docs[a].ID < docs[b].ID
	})
	return docs, nil
}

// Stats returns a snapshot of cache residency
func (m *Manager) Stats() models.CacheStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := models.CacheStats{
		TotalDocuments: len(m.entries),
		RefreshMode:    m.refreshMode,
		Entries:        make([]models.EntryStats, 0, len(m.entries)),
	}
	if !m.lastRefresh.IsZero() {
		stats.LastRefresh = m.lastRefresh.UTC().Format(time.RFC3339)
	}

	for id, entry := range m.entries {
		stats.TotalChunks += len(entry.Chunks)
		stats.TotalVectors += entry.Index.Size()
		stats.ApproxBytes += entry.approxBytes()
		stats.Entries = append(stats.Entries, models.EntryStats{
			DocumentID:   id,
			ChunkCount:   len(entry.Chunks),
			LastAccessed: entry.LastAccessed().UTC().Format(time.RFC3339),
		})
	}
	sort.Slice(stats.Entries, func(a, b int) bool {
		return stats.Entries[a].DocumentID < stats.Entries[b].DocumentID
	})
	return stats
}
