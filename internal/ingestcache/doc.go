// Package ingestcache owns the content-addressed ingest cache.
//
// Each entry lives under {root}/{cacheKey}/ and holds manifest.json, the
// frames/ directory and audio.wav. Store abstracts manifest persistence so
// Cache can run against DiskStore or the in-memory MemoryStore used by tests.
// Cache.Lookup returns a hit only when the manifest's schema version and
// options match and every file it references still exists; unreadable or
// corrupt manifests are logged as ErrCacheRead and treated as misses.
//
// # Concurrency
//
// Layout.Lock takes an advisory file lock on the entry so separate processes
// sharing a cache root do not compute the same entry twice.
//
// # Size Management
//
// Manager enforces a configurable size budget (cache.max_gib) and a 20%
// free-space floor on the underlying volume, pruning least recently written
// entries first. Use `vidingest cache stats` to inspect usage and
// `vidingest cache prune` to trim manually.
package ingestcache
