package ingestcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"vidingest/internal/ingestspec"
	"vidingest/internal/logging"
)

const (
	// freeSpaceFloor is the minimum free-space ratio we allow before pruning (e.g., 0.20 => 80% full).
	freeSpaceFloor = 0.20
)

// statfsFunc allows tests to stub filesystem stats.
type statfsFunc func(path string) (total uint64, free uint64, err error)

// Manager reports on and prunes cache entries.
type Manager struct {
	store    DiskStore
	maxBytes int64
	logger   *slog.Logger
	statfs   statfsFunc
}

// Stats describes current cache usage.
type Stats struct {
	Root           string         `json:"root"`
	Entries        int            `json:"entries"`
	TotalBytes     int64          `json:"total_bytes"`
	MaxBytes       int64          `json:"max_bytes"`
	FreeBytes      uint64         `json:"free_bytes"`
	TotalFSBytes   uint64         `json:"total_fs_bytes"`
	FreeRatio      float64        `json:"free_ratio"`
	EntrySummaries []EntrySummary `json:"entry_summaries"`
}

// EntrySummary surfaces the details of one cache entry for the CLI.
type EntrySummary struct {
	Key        string    `json:"key"`
	Directory  string    `json:"directory"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
	SourceName string    `json:"source_name,omitempty"`
	Frames     int       `json:"frames"`
	Segments   int       `json:"segments"`
	HasAudio   bool      `json:"has_audio"`
	Valid      bool      `json:"valid"`
}

// PruneReport lists what a prune pass removed.
type PruneReport struct {
	Removed    []string `json:"removed"`
	FreedBytes int64    `json:"freed_bytes"`
}

// NewManager builds a manager for the cache rooted at root. A non-positive
// maxBytes disables the size budget; the free-space floor still applies.
func NewManager(root string, maxBytes int64, logger *slog.Logger) *Manager {
	return &Manager{
		store:    NewDiskStore(root),
		maxBytes: maxBytes,
		logger:   logging.NewComponentLogger(logger, "ingestcache"),
		statfs:   realStatfs,
	}
}

// Store returns the disk store the manager inspects.
func (m *Manager) Store() DiskStore {
	return m.store
}

// Stats returns current cache usage and filesystem free-space info, newest
// entries first.
func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	entries, totalSize, err := m.scan(ctx)
	if err != nil {
		return Stats{}, err
	}
	s := Stats{
		Root:       m.store.Root,
		Entries:    len(entries),
		TotalBytes: totalSize,
		MaxBytes:   m.maxBytes,
		FreeRatio:  1.0,
	}
	if len(entries) > 0 || dirExists(m.store.Root) {
		totalFS, freeFS, err := m.statfs(m.store.Root)
		if err != nil {
			return Stats{}, fmt.Errorf("ingestcache: statfs: %w", err)
		}
		s.TotalFSBytes = totalFS
		s.FreeBytes = freeFS
		if totalFS > 0 {
			s.FreeRatio = float64(freeFS) / float64(totalFS)
		}
	}
	s.EntrySummaries = make([]EntrySummary, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		s.EntrySummaries = append(s.EntrySummaries, entries[i])
	}
	return s, nil
}

// Prune removes oldest entries until the cache is within its size budget and
// the volume keeps the free-space floor. keepKey, when set, is never removed,
// and neither is any entry whose lock is currently held.
func (m *Manager) Prune(ctx context.Context, keepKey string) (PruneReport, error) {
	report := PruneReport{Removed: []string{}}
	entries, totalSize, err := m.scan(ctx)
	if err != nil {
		return report, err
	}

	for len(entries) > 0 {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		freeOK, err := m.freeSpaceOK()
		if err != nil {
			return report, err
		}
		withinBudget := m.maxBytes <= 0 || totalSize <= m.maxBytes
		if withinBudget && freeOK {
			return report, nil
		}
		oldest := entries[0]
		entries = entries[1:]
		if keepKey != "" && oldest.Key == keepKey {
			if len(entries) == 0 {
				return report, fmt.Errorf("ingestcache: cache over limits and active entry %q cannot be pruned", keepKey)
			}
			continue
		}
		removed, err := m.removeIdle(oldest)
		if err != nil {
			return report, err
		}
		if !removed {
			m.logger.DebugContext(ctx, "skipped busy cache entry",
				logging.String(logging.FieldCacheKey, oldest.Key),
			)
			continue
		}
		m.logger.InfoContext(ctx, "pruned cache entry",
			logging.String(logging.FieldCacheKey, oldest.Key),
			logging.Int64("entry_size_bytes", oldest.SizeBytes),
		)
		report.Removed = append(report.Removed, oldest.Key)
		report.FreedBytes += oldest.SizeBytes
		totalSize -= oldest.SizeBytes
	}
	return report, nil
}

// removeIdle deletes entry unless its lock is held by an ingest that is
// still writing into it.
func (m *Manager) removeIdle(entry EntrySummary) (bool, error) {
	lock := flock.New(m.store.LockPath(entry.Key))
	locked, err := lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("ingestcache: lock %q: %w", entry.Key, err)
	}
	if !locked {
		return false, nil
	}
	defer func() { _ = lock.Unlock() }()
	if err := os.RemoveAll(entry.Directory); err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("ingestcache: remove %q: %w", entry.Directory, err)
	}
	return true, nil
}

// scan lists entries oldest first.
func (m *Manager) scan(ctx context.Context) ([]EntrySummary, int64, error) {
	entries := make([]EntrySummary, 0)
	var total int64
	rootEntries, err := os.ReadDir(m.store.Root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entries, 0, nil
		}
		return nil, 0, fmt.Errorf("ingestcache: list root: %w", err)
	}
	for _, entry := range rootEntries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		key := entry.Name()
		path := m.store.EntryDir(key)
		size, mtime, err := dirSizeAndTime(path)
		if err != nil {
			m.logger.Warn("cache entry skipped; excluded from stats and pruning",
				logging.String("cache_dir", path),
				logging.Error(err),
				logging.String(logging.FieldEventType, "cache_entry_skipped"),
				logging.String(logging.FieldErrorHint, "inspect cache directory permissions or remove the entry"),
			)
			continue
		}
		summary := EntrySummary{Key: key, Directory: path, SizeBytes: size, ModifiedAt: mtime}
		if manifest, found, err := m.store.Get(ctx, key); err == nil && found && manifest.Version == ingestspec.SchemaVersion {
			summary.Valid = true
			summary.SourceName = manifest.Result.SourceName
			summary.Frames = len(manifest.Result.Frames)
			summary.Segments = len(manifest.Result.Segments)
			summary.HasAudio = manifest.Result.Audio != nil
		}
		total += size
		entries = append(entries, summary)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ModifiedAt.Before(entries[j].ModifiedAt)
	})
	return entries, total, nil
}

func (m *Manager) freeSpaceOK() (bool, error) {
	total, free, err := m.statfs(m.store.Root)
	if err != nil {
		return false, fmt.Errorf("ingestcache: statfs: %w", err)
	}
	if total == 0 {
		return true, nil
	}
	return float64(free)/float64(total) >= freeSpaceFloor, nil
}

func dirSizeAndTime(path string) (int64, time.Time, error) {
	var (
		size   int64
		latest time.Time
	)
	err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
		return nil
	})
	if err != nil {
		return 0, time.Time{}, err
	}
	return size, latest, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func realStatfs(path string) (uint64, uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bavail * uint64(stat.Bsize)
	return total, free, nil
}
