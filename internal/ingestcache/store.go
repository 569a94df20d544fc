package ingestcache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"vidingest/internal/ingestspec"
)

const (
	manifestFileName = "manifest.json"
	framesDirName    = "frames"
	lockFileName     = ".lock"
)

// ErrCacheRead marks a manifest that exists but cannot be read or decoded.
var ErrCacheRead = errors.New("cache read error")

// Store persists manifests by cache key. Get reports found=false for a
// missing entry; an unreadable entry returns an error wrapping ErrCacheRead.
type Store interface {
	Get(ctx context.Context, key string) (ingestspec.Manifest, bool, error)
	Put(ctx context.Context, key string, manifest ingestspec.Manifest) error
}

// Layout maps cache keys to paths under Root.
type Layout struct {
	Root string
}

// EntryDir returns the directory holding every artifact for key.
func (l Layout) EntryDir(key string) string {
	return filepath.Join(l.Root, key)
}

// ManifestPath returns the manifest location for key.
func (l Layout) ManifestPath(key string) string {
	return filepath.Join(l.EntryDir(key), manifestFileName)
}

// FramesDir returns the frame output directory for key.
func (l Layout) FramesDir(key string) string {
	return filepath.Join(l.EntryDir(key), framesDirName)
}

// LockPath returns the advisory lock file for key.
func (l Layout) LockPath(key string) string {
	return filepath.Join(l.EntryDir(key), lockFileName)
}

// DiskStore keeps manifests as JSON files under a Layout.
type DiskStore struct {
	Layout
}

// NewDiskStore returns a store rooted at root.
func NewDiskStore(root string) DiskStore {
	return DiskStore{Layout: Layout{Root: root}}
}

// Get implements Store.
func (s DiskStore) Get(_ context.Context, key string) (ingestspec.Manifest, bool, error) {
	payload, err := os.ReadFile(s.ManifestPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ingestspec.Manifest{}, false, nil
		}
		return ingestspec.Manifest{}, false, fmt.Errorf("%w: %w", ErrCacheRead, err)
	}
	manifest, err := ingestspec.Parse(payload)
	if err != nil {
		return ingestspec.Manifest{}, false, fmt.Errorf("%w: %w", ErrCacheRead, err)
	}
	return manifest, true, nil
}

// Put implements Store. The manifest is written to a temp file and renamed
// into place so readers never observe a partial document.
func (s DiskStore) Put(_ context.Context, key string, manifest ingestspec.Manifest) error {
	payload, err := manifest.Encode()
	if err != nil {
		return err
	}
	dir := s.EntryDir(key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure cache dir: %w", err)
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".manifest-%d.tmp", time.Now().UnixNano()))
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write manifest temp: %w", err)
	}
	if err := os.Rename(tmp, s.ManifestPath(key)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename manifest: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store. Manifests round-trip through their JSON
// encoding so behaviour matches DiskStore.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
	puts int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (ingestspec.Manifest, bool, error) {
	s.mu.Lock()
	payload, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return ingestspec.Manifest{}, false, nil
	}
	manifest, err := ingestspec.Parse(payload)
	if err != nil {
		return ingestspec.Manifest{}, false, fmt.Errorf("%w: %w", ErrCacheRead, err)
	}
	return manifest, true, nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, key string, manifest ingestspec.Manifest) error {
	payload, err := manifest.Encode()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = payload
	s.puts++
	return nil
}

// PutRaw stores an arbitrary document for key.
func (s *MemoryStore) PutRaw(key string, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), payload...)
}

// Puts reports how many manifests have been written through Put.
func (s *MemoryStore) Puts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}
