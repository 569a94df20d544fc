package ingestcache

import (
	"context"
	"errors"
	"log/slog"

	"vidingest/internal/fileutil"
	"vidingest/internal/ingestspec"
	"vidingest/internal/logging"
)

// Cache validates and records ingest manifests.
type Cache struct {
	store  Store
	logger *slog.Logger
	exists func(path string) bool
}

// New returns a Cache backed by store.
func New(store Store, logger *slog.Logger) *Cache {
	return &Cache{
		store:  store,
		logger: logging.NewComponentLogger(logger, "ingestcache"),
		exists: fileutil.IsRegularFile,
	}
}

// Lookup returns the cached result for key when the stored manifest is at the
// current schema version, was produced with opts, and every referenced file
// still exists. Any failure along the way is a miss.
func (c *Cache) Lookup(ctx context.Context, key string, opts ingestspec.Options) (ingestspec.Result, bool) {
	logger := logging.WithContext(ctx, c.logger)

	manifest, found, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheRead) {
			err = errors.Join(ErrCacheRead, err)
		}
		logging.WarnWithContext(logger, "cache manifest unreadable; recomputing",
			"cache_read_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the entry will be rebuilt; remove it with `vidingest cache prune` if this repeats"),
			logging.String(logging.FieldImpact, "ingest runs the full pipeline"),
		)
		return ingestspec.Result{}, false
	}
	if !found {
		c.miss(logger, "no manifest")
		return ingestspec.Result{}, false
	}
	if manifest.Version != ingestspec.SchemaVersion {
		c.miss(logger, "schema version changed")
		return ingestspec.Result{}, false
	}
	if manifest.Options != opts {
		c.miss(logger, "options differ")
		return ingestspec.Result{}, false
	}
	for _, path := range manifest.Result.ReferencedPaths() {
		if !c.exists(path) {
			logger.Debug("cache decision",
				logging.Args(append(logging.DecisionAttrs("cache_lookup", "miss", "referenced file missing"),
					logging.String("path", path))...)...)
			return ingestspec.Result{}, false
		}
	}

	logger.Info("cache hit",
		logging.Args(append(logging.DecisionAttrs("cache_lookup", "hit", "manifest valid"),
			logging.Int("frames", len(manifest.Result.Frames)),
			logging.Int("segments", len(manifest.Result.Segments)))...)...)
	return manifest.Result, true
}

func (c *Cache) miss(logger *slog.Logger, reason string) {
	logger.Debug("cache decision", logging.Args(logging.DecisionAttrs("cache_lookup", "miss", reason)...)...)
}

// Persist records result under key, replacing any earlier manifest.
func (c *Cache) Persist(ctx context.Context, key string, opts ingestspec.Options, result ingestspec.Result) error {
	if err := c.store.Put(ctx, key, ingestspec.NewManifest(opts, result)); err != nil {
		return err
	}
	logging.WithContext(ctx, c.logger).Debug("cache manifest stored",
		logging.Int("frames", len(result.Frames)),
		logging.Bool("audio", result.Audio != nil),
		logging.Bool("transcript", result.Transcript != nil),
	)
	return nil
}
