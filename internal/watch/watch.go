// Package watch reports video files that appear in a directory once they stop
// changing.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"vidingest/internal/fileutil"
	"vidingest/internal/logging"
)

// DefaultSettle is how long a file must go without events before it is
// handed off.
const DefaultSettle = 2 * time.Second

// Handler receives each settled video file.
type Handler func(ctx context.Context, path string) error

// Watcher watches one directory (not recursively).
type Watcher struct {
	Dir    string
	Settle time.Duration
	Logger *slog.Logger
	Handle Handler
}

// Run blocks until ctx ends or the underlying watcher fails. Handler errors
// are logged and do not stop the loop.
func (w Watcher) Run(ctx context.Context) error {
	if w.Handle == nil {
		return errors.New("watch: handler is required")
	}
	logger := w.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "watch")
	settle := w.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(w.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.Dir, err)
	}
	logger.Info("watching directory", logging.String("dir", w.Dir), logging.Duration("settle", settle))

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(settle / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			pending[event.Name] = time.Now()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(logger, "watcher error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "some file events may be missed"),
			)
		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < settle {
					continue
				}
				delete(pending, path)
				if !fileutil.IsRegularFile(path) {
					continue
				}
				if err := w.Handle(ctx, path); err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					logging.WarnWithContext(logger, "watched file not ingested", "watch_ingest_failed",
						logging.String("path", path),
						logging.Error(err),
					)
				}
			}
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(event.Name)
	if base == "" || base[0] == '.' {
		return false
	}
	return fileutil.KindForPath(event.Name) == fileutil.KindVideo
}

// Existing lists the video files already present in dir.
func Existing(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() || entry.Name()[0] == '.' {
			continue
		}
		if fileutil.KindForPath(entry.Name()) == fileutil.KindVideo {
			out = append(out, filepath.Join(dir, entry.Name()))
		}
	}
	return out, nil
}
