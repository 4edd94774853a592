package keyvalue_test

import (
	"path/filepath"
	"testing"

	"github.com/counslerai/counslerai/pkg/keyvalue"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := keyvalue.NewMemoryStore()

	if _, ok := store.Get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	if err := store.Set("k", "v"); err != nil {
		t.Fatalf("Set err: %v", err)
	}
	value, ok := store.Get("k")
	if !ok || value != "v" {
		t.Fatalf("Get returned %q, %v", value, ok)
	}

	if err := store.Delete("k"); err != nil {
		t.Fatalf("Delete err: %v", err)
	}
	if _, ok := store.Get("k"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "kv.json")

	store, err := keyvalue.NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore err: %v", err)
	}
	if err := store.Set("guest", "g1"); err != nil {
		t.Fatalf("Set err: %v", err)
	}

	reopened, err := keyvalue.NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen err: %v", err)
	}
	value, ok := reopened.Get("guest")
	if !ok || value != "g1" {
		t.Fatalf("expected persisted value, got %q, %v", value, ok)
	}
}

func TestFileStoreDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.json")

	store, err := keyvalue.NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore err: %v", err)
	}
	if err := store.Set("k", "v"); err != nil {
		t.Fatalf("Set err: %v", err)
	}
	if err := store.Delete("k"); err != nil {
		t.Fatalf("Delete err: %v", err)
	}

	reopened, err := keyvalue.NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen err: %v", err)
	}
	if _, ok := reopened.Get("k"); ok {
		t.Fatal("expected delete to persist")
	}
}
