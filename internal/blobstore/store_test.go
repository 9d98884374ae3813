// ABOUTME: Tests for memory, local, and sqlite blob stores
// ABOUTME: Runs the same contract checks against every implementation
package blobstore

import (
	"context"
	"errors"
	"testing"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()

	local, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	sqlite, err := NewSQLiteStoreInMemory()
	if err != nil {
		t.Fatalf("NewSQLiteStoreInMemory() error = %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"local":  local,
		"sqlite": sqlite,
	}
}

func TestStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Put(ctx, "documents/d1/meta.json", []byte(`{"id":"d1"}`)); err != nil {
				t.Fatalf("Put() error = %v", err)
			}

			data, err := store.Get(ctx, "documents/d1/meta.json")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(data) != `{"id":"d1"}` {
				t.Errorf("Get() = %q, want %q", data, `{"id":"d1"}`)
			}

			if err := store.Delete(ctx, "documents/d1/meta.json"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, err := store.Get(ctx, "documents/d1/meta.json"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_GetMissing(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_DeleteMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Delete(ctx, "never/existed"); err != nil {
				t.Errorf("Delete(missing) error = %v, want nil", err)
			}
		})
	}
}

func TestStore_ListByPrefix(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			objects := map[string]string{
				"documents/d1/meta.json":    "a",
				"documents/d1/vectors.json": "b",
				"documents/d2/meta.json":    "c",
				"files/d1/report.pdf":       "d",
			}
			for p, v := range objects {
				if err := store.Put(ctx, p, []byte(v)); err != nil {
					t.Fatalf("Put(%s) error = %v", p, err)
				}
			}

			paths, err := store.List(ctx, "documents/d1/")
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			want := []string{"documents/d1/meta.json", "documents/d1/vectors.json"}
			if len(paths) != len(want) {
				t.Fatalf("List() = %v, want %v", paths, want)
			}
			for i := range want {
				if paths[i] != want[i] {
					t.Errorf("List()[%d] = %q, want %q", i, paths[i], want[i])
				}
			}
		})
	}
}

func TestStore_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Put(ctx, "k", []byte("v1")); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			if err := store.Put(ctx, "k", []byte("v2")); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			data, err := store.Get(ctx, "k")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(data) != "v2" {
				t.Errorf("Get() = %q, want %q", data, "v2")
			}
		})
	}
}

func TestLocalStore_RejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	local, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	for _, p := range []string{"../outside", "/abs/path", "a/../../b"} {
		if err := local.Put(ctx, p, []byte("x")); err == nil {
			t.Errorf("Put(%q) succeeded, want error", p)
		}
	}
}
