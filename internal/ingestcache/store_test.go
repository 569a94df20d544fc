package ingestcache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vidingest/internal/ingestspec"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewDiskStore(filepath.Join(t.TempDir(), "video-ingest"))

	if _, found, err := store.Get(ctx, "abc"); err != nil || found {
		t.Fatalf("expected clean miss, got found=%v err=%v", found, err)
	}

	manifest := ingestspec.NewManifest(ingestspec.DefaultOptions(), ingestspec.Result{
		CacheKey:  "abc",
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	if err := store.Put(ctx, "abc", manifest); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if _, err := os.Stat(store.ManifestPath("abc")); err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	if filepath.Base(store.ManifestPath("abc")) != "manifest.json" || filepath.Base(filepath.Dir(store.ManifestPath("abc"))) != "abc" {
		t.Fatalf("unexpected layout %s", store.ManifestPath("abc"))
	}

	got, found, err := store.Get(ctx, "abc")
	if err != nil || !found {
		t.Fatalf("expected hit, got found=%v err=%v", found, err)
	}
	if got.Version != ingestspec.SchemaVersion || !got.Result.CreatedAt.Equal(manifest.Result.CreatedAt) {
		t.Fatalf("unexpected manifest %+v", got)
	}

	entries, err := os.ReadDir(store.EntryDir("abc"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestDiskStoreCorruptManifest(t *testing.T) {
	store := NewDiskStore(t.TempDir())
	if err := os.MkdirAll(store.EntryDir("bad"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.ManifestPath("bad"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, found, err := store.Get(context.Background(), "bad")
	if found || !errors.Is(err, ErrCacheRead) {
		t.Fatalf("expected ErrCacheRead, got found=%v err=%v", found, err)
	}
}

func TestLayoutLockExcludesSecondHolder(t *testing.T) {
	layout := Layout{Root: t.TempDir()}
	unlock, err := layout.Lock(context.Background(), "key")
	if err != nil {
		t.Fatalf("Lock returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if _, err := layout.Lock(ctx, "key"); err == nil {
		t.Fatal("expected second lock attempt to fail while held")
	}

	if err := unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	unlock2, err := layout.Lock(context.Background(), "key")
	if err != nil {
		t.Fatalf("expected lock after release: %v", err)
	}
	_ = unlock2()
}
