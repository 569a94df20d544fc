package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"vidingest/internal/fileutil"
)

// ErrNotFound is returned when no catalog entry matches.
var ErrNotFound = errors.New("file not found in catalog")

const fileColumns = "id, name, kind, path, ext, size_bytes, content_hash, last_cache_key, created_at, updated_at"

// File is one catalogued file. Path is empty for files held in the managed
// files directory.
type File struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Kind         string    `json:"kind"`
	Path         string    `json:"path,omitempty"`
	Ext          string    `json:"ext"`
	SizeBytes    int64     `json:"size_bytes"`
	ContentHash  string    `json:"content_hash,omitempty"`
	LastCacheKey string    `json:"last_cache_key,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database at dbPath.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure catalog dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Register records the file at path, or refreshes the existing entry for it.
func (s *Store) Register(ctx context.Context, path string) (*File, error) {
	abs, err := filepath.Abs(strings.TrimSpace(path))
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", abs)
	}

	now := time.Now().UTC()
	existing, err := s.FindByPath(ctx, abs)
	switch {
	case err == nil:
		if _, err := s.db.ExecContext(ctx,
			`UPDATE files SET size_bytes = ?, updated_at = ? WHERE id = ?`,
			info.Size(), formatTime(now), existing.ID,
		); err != nil {
			return nil, fmt.Errorf("refresh file: %w", err)
		}
		return s.Get(ctx, existing.ID)
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	file := &File{
		ID:        uuid.NewString(),
		Name:      filepath.Base(abs),
		Kind:      fileutil.KindForPath(abs),
		Path:      abs,
		Ext:       fileutil.NormalizeExt(filepath.Ext(abs)),
		SizeBytes: info.Size(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.insert(ctx, file); err != nil {
		return nil, err
	}
	return file, nil
}

// Import copies the file at src into filesDir as {id}{ext} and records it
// without a stored path.
func (s *Store) Import(ctx context.Context, src, filesDir string) (*File, error) {
	src = strings.TrimSpace(src)
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", src, err)
	}
	now := time.Now().UTC()
	file := &File{
		ID:        uuid.NewString(),
		Name:      filepath.Base(src),
		Kind:      fileutil.KindForPath(src),
		Ext:       fileutil.NormalizeExt(filepath.Ext(src)),
		SizeBytes: info.Size(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	digest, err := fileutil.CopyFileVerified(src, ManagedPath(filesDir, file.ID, file.Ext))
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", src, err)
	}
	file.ContentHash = digest
	if err := s.insert(ctx, file); err != nil {
		_ = os.Remove(ManagedPath(filesDir, file.ID, file.Ext))
		return nil, err
	}
	return file, nil
}

// ManagedPath is where an imported file lives inside filesDir.
func ManagedPath(filesDir, id, ext string) string {
	return filepath.Join(filesDir, id+ext)
}

func (s *Store) insert(ctx context.Context, f *File) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO files (`+fileColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Name, f.Kind, nullableString(f.Path), f.Ext, f.SizeBytes,
		nullableString(f.ContentHash), nullableString(f.LastCacheKey),
		formatTime(f.CreatedAt), formatTime(f.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

// Get returns the file with id.
func (s *Store) Get(ctx context.Context, id string) (*File, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+fileColumns+" FROM files WHERE id = ?", strings.TrimSpace(id))
	return scanOne(row)
}

// FindByPath returns the file registered at the absolute path.
func (s *Store) FindByPath(ctx context.Context, path string) (*File, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+fileColumns+" FROM files WHERE path = ?", path)
	return scanOne(row)
}

// List returns every file, newest first.
func (s *Store) List(ctx context.Context) ([]*File, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+fileColumns+" FROM files ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []*File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// RecordIngest stores the content hash and cache key of the latest ingest.
func (s *Store) RecordIngest(ctx context.Context, id, cacheKey string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE files SET content_hash = ?, last_cache_key = ?, updated_at = ? WHERE id = ?`,
		nullableString(cacheKey), nullableString(cacheKey), formatTime(time.Now().UTC()), id,
	)
	if err != nil {
		return fmt.Errorf("record ingest: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOne(row *sql.Row) (*File, error) {
	f, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return f, nil
}

func scanFile(scanner interface{ Scan(dest ...any) error }) (*File, error) {
	var (
		f          File
		path       sql.NullString
		hash       sql.NullString
		cacheKey   sql.NullString
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&f.ID, &f.Name, &f.Kind, &path, &f.Ext, &f.SizeBytes, &hash, &cacheKey, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	f.Path = path.String
	f.ContentHash = hash.String
	f.LastCacheKey = cacheKey.String
	f.CreatedAt = parseTime(createdRaw)
	f.UpdatedAt = parseTime(updatedRaw)
	return &f, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
