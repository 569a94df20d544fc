package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"vidingest/internal/catalog"
	"vidingest/internal/fileutil"
)

var (
	// ErrUnsupportedFileType reports a source that is not a video.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrSourceNotFound reports that neither the stored path nor the files
	// directory fallback is readable.
	ErrSourceNotFound = errors.New("source file not found")
)

// Source identifies the file to ingest. Path may be empty, in which case the
// file is expected at {filesDir}/{ID}{Ext}.
type Source struct {
	ID   string
	Name string
	Kind string
	Path string
	Ext  string
}

// SourceFromFile adapts a catalog entry.
func SourceFromFile(f *catalog.File) Source {
	if f == nil {
		return Source{}
	}
	return Source{ID: f.ID, Name: f.Name, Kind: f.Kind, Path: f.Path, Ext: f.Ext}
}

// IsVideo reports whether the source is video-typed. An empty Kind falls back
// to the extension, then to the name's extension.
func (s Source) IsVideo() bool {
	if kind := strings.TrimSpace(s.Kind); kind != "" {
		return strings.EqualFold(kind, fileutil.KindVideo)
	}
	if s.Ext != "" {
		return fileutil.KindForExt(s.Ext) == fileutil.KindVideo
	}
	return fileutil.KindForPath(s.Name) == fileutil.KindVideo
}

// FallbackPath is where an imported source lives inside filesDir.
func (s Source) FallbackPath(filesDir string) string {
	if strings.TrimSpace(filesDir) == "" || strings.TrimSpace(s.ID) == "" {
		return ""
	}
	return catalog.ManagedPath(filesDir, s.ID, fileutil.NormalizeExt(s.Ext))
}

// Resolve returns the first readable path for the source.
func (s Source) Resolve(filesDir string) (string, error) {
	for _, candidate := range []string{strings.TrimSpace(s.Path), s.FallbackPath(filesDir)} {
		if candidate == "" {
			continue
		}
		if readable(candidate) {
			if abs, err := filepath.Abs(candidate); err == nil {
				return abs, nil
			}
			return candidate, nil
		}
	}
	return "", ErrSourceNotFound
}

func (s Source) label() string {
	if s.Name != "" {
		return s.Name
	}
	if s.Path != "" {
		return filepath.Base(s.Path)
	}
	return s.ID
}

func readable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	return err == nil && info.Mode().IsRegular()
}
